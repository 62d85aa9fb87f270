package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

const (
	SheetDatos  = "Datos"
	SheetLatest = "UltimaPorTrafo"

	TableDatos  = "TablaDatos"
	TableLatest = "TablaUltimas"

	// TableStyle is applied to every sheet rendered as an Excel table.
	TableStyle = "TableStyleMedium9"
)

// PlaceholderSheets are created empty so later diagnosis runs find them.
var PlaceholderSheets = []string{"Estados", "Diag_3Ratios", "Diag_IEC", "Diag_Duval"}

// ExcelWriter exports one table as a single-sheet workbook.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, table *reading.Table) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetName(sheet, SheetDatos); err != nil {
		return fmt.Errorf("rename sheet %s: %w", sheet, err)
	}
	if err := WriteTableSheet(file, SheetDatos, TableDatos, table.Header(), tableCells(table)); err != nil {
		return err
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

// WriteMaster writes the consolidated workbook: the full history, the latest
// reading per transformer and the empty diagnosis placeholders.
func WriteMaster(path string, datos, latest *reading.Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), SheetDatos); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := WriteTableSheet(file, SheetDatos, TableDatos, datos.Header(), tableCells(datos)); err != nil {
		return err
	}

	if _, err := file.NewSheet(SheetLatest); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetLatest, err)
	}
	if err := WriteTableSheet(file, SheetLatest, TableLatest, latest.Header(), tableCells(latest)); err != nil {
		return err
	}

	for _, sheet := range PlaceholderSheets {
		if _, err := file.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		header := []string{reading.ColumnPlant, reading.ColumnTransformer, reading.ColumnLocation, placeholderDiagnosis(sheet)}
		if err := WriteTableSheet(file, sheet, "", header, nil); err != nil {
			return err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}

// WriteTableSheet writes a header and rows starting at A1. When tableName is
// set and there is at least one row, the range becomes an Excel table.
func WriteTableSheet(file *excelize.File, sheet, tableName string, header []string, rows [][]any) error {
	headerCells := make([]any, len(header))
	for i, name := range header {
		headerCells[i] = name
	}
	if err := file.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("set excel header on %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("set excel row %s on %s: %w", cell, sheet, err)
		}
	}

	if tableName == "" || len(rows) == 0 || len(header) == 0 {
		return nil
	}

	last, _ := excelize.CoordinatesToCellName(len(header), len(rows)+1)
	showStripes := true
	if err := file.AddTable(sheet, &excelize.Table{
		Range:          "A1:" + last,
		Name:           tableName,
		StyleName:      TableStyle,
		ShowRowStripes: &showStripes,
	}); err != nil {
		return fmt.Errorf("add table %s on %s: %w", tableName, sheet, err)
	}
	return nil
}

// tableCells renders a table for Excel: identity and date columns stay text,
// numeric gas values become numbers.
func tableCells(table *reading.Table) [][]any {
	fixed := len(reading.FixedColumns)
	rows := make([][]any, 0, table.Len())
	for _, row := range table.Rows() {
		cells := make([]any, len(row))
		for i, value := range row {
			if i < fixed {
				cells[i] = value
				continue
			}
			cells[i] = CellValue(value)
		}
		rows = append(rows, cells)
	}
	return rows
}

// CellValue converts numeric text to a float so Excel stores a number.
func CellValue(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}
	number, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(number, 0) || math.IsNaN(number) {
		return value
	}
	return number
}

func placeholderDiagnosis(sheet string) string {
	suffix := sheet
	if i := strings.LastIndex(sheet, "_"); i >= 0 {
		suffix = sheet[i+1:]
	}
	return "Diagnóstico " + suffix
}
