package diagnosis

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	ColorGreen  = "C6EFCE"
	ColorYellow = "FFF2CC"
	ColorRed    = "FFC7CE"
	ColorBlue   = "9AD0F5"
)

func severityColor(label string) string {
	switch label {
	case Normal:
		return ColorGreen
	case Preocupante:
		return ColorYellow
	case Critico:
		return ColorRed
	default:
		return ""
	}
}

func faultColor(label string) string {
	switch {
	case strings.Contains(label, "T1"):
		return ColorGreen
	case strings.Contains(label, "T2"):
		return ColorYellow
	case strings.Contains(label, "T3"), strings.Contains(label, "D2"), strings.Contains(label, "DT"):
		return ColorRed
	default:
		return ""
	}
}

func duvalColor(label string) string {
	if color := faultColor(label); color != "" {
		return color
	}
	if strings.Contains(label, "PD") {
		return ColorBlue
	}
	return ""
}

// finalColor matches the severity inside labels like "Preocupante (85%)".
func finalColor(label string) string {
	for _, severity := range []string{Normal, Preocupante, Critico} {
		if strings.HasPrefix(label, severity) {
			return severityColor(severity)
		}
	}
	return ""
}

// painter creates one solid fill style per colour and reuses it.
type painter struct {
	file   *excelize.File
	styles map[string]int
}

func newPainter(file *excelize.File) *painter {
	return &painter{file: file, styles: make(map[string]int)}
}

func (p *painter) fill(sheet, cell, color string) error {
	if color == "" {
		return nil
	}
	style, ok := p.styles[color]
	if !ok {
		var err error
		style, err = p.file.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("create fill style %s: %w", color, err)
		}
		p.styles[color] = style
	}
	if err := p.file.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("style cell %s on %s: %w", cell, sheet, err)
	}
	return nil
}

// colorColumn fills the 1-based column of each data row by its label.
func (p *painter) colorColumn(sheet string, col int, rows [][]any, color func(string) string) error {
	for i, row := range rows {
		if col-1 >= len(row) {
			continue
		}
		label, _ := row[col-1].(string)
		cell, err := excelize.CoordinatesToCellName(col, i+2)
		if err != nil {
			return err
		}
		if err := p.fill(sheet, cell, color(label)); err != nil {
			return err
		}
	}
	return nil
}

// ColumnColor returns the fill used for a label in one of the Resumen
// diagnosis columns, or "" for uncolored columns and labels.
func ColumnColor(column, label string) string {
	switch column {
	case ColumnIEEE, ColumnIEC:
		return severityColor(label)
	case ColumnRatios:
		return faultColor(label)
	case ColumnDuval:
		return duvalColor(label)
	case ColumnFinal:
		return finalColor(label)
	default:
		return ""
	}
}
