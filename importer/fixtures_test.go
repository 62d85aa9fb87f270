package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// gasHeader is a 15-column header for the AT..BH default block; the first
// three cells are blank like the real template.
var gasHeader = []string{"", "", "", "H2", "CH4", "C2H6", "C2H4", "C2H2", "CO", "CO2", "O2", "N2", "ppm", "%H2", "%CH4"}

func labRow(company, sample, report, h2 string) []any {
	return []any{company, sample, report, h2, "20", "5", "3", "0", "110", "900", "1000", "5000", "38", "12", "30"}
}

var referenceRow = []any{"", "", "", "100", "120", "65", "50", "35", "-", "350", "2500", "-", "720", "", ""}

var zeroRow = []any{"0", "0", "", "0", "0", "0", "0", "0", "0", "0", "0", "0", "0", "", ""}

type sheetFixture struct {
	name  string
	cells map[string]any
	rows  map[int][]any
}

func indexSheet(name string, entries ...[2]string) sheetFixture {
	sheet := sheetFixture{name: name, cells: map[string]any{
		"A1": "Índice de transformadores",
		"B3": "Nombre del equipo",
		"D3": "Ubicación",
	}}
	for i, entry := range entries {
		row := 4 + i
		sheet.cells[cellName(2, row)] = entry[0]
		sheet.cells[cellName(4, row)] = entry[1]
	}
	return sheet
}

func transformerSheet(title, name, location string, rows ...[]any) sheetFixture {
	sheet := sheetFixture{
		name:  title,
		cells: map[string]any{"A9": "Nombre", "G9": name, "H9": location},
		rows:  map[int][]any{15: stringsToAny(gasHeader)},
	}
	for i, row := range rows {
		sheet.rows[16+i] = row
	}
	return sheet
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeWorkbook(t *testing.T, path string, sheets ...sheetFixture) {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := file.SetSheetName(file.GetSheetName(0), sheet.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := file.NewSheet(sheet.name); err != nil {
			t.Fatalf("new sheet %s: %v", sheet.name, err)
		}

		for cell, value := range sheet.cells {
			if err := file.SetCellValue(sheet.name, cell, value); err != nil {
				t.Fatalf("set %s!%s: %v", sheet.name, cell, err)
			}
		}
		for row, values := range sheet.rows {
			for col, value := range values {
				if value == "" {
					continue
				}
				if err := file.SetCellValue(sheet.name, cellName(46+col, row), value); err != nil {
					t.Fatalf("set %s row %d: %v", sheet.name, row, err)
				}
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
}

// plantFolder creates "<plant> - Captura de datos" under base and writes one
// transformer workbook into it.
func plantFolder(t *testing.T, base, plant string, sheets ...sheetFixture) string {
	t.Helper()
	folder := filepath.Join(base, plant+" - Captura de datos")
	writeWorkbook(t, filepath.Join(folder, "Transformadores "+plant+".xlsx"), sheets...)
	return folder
}

// gridFromCells builds a Grid from A1-style references.
func gridFromCells(cells map[string]string) *Grid {
	maxRow := 0
	type point struct{ col, row int }
	points := make(map[point]string, len(cells))
	for name, value := range cells {
		col, row, err := excelize.CellNameToCoordinates(name)
		if err != nil {
			panic(err)
		}
		points[point{col, row}] = value
		if row > maxRow {
			maxRow = row
		}
	}

	rows := make([][]string, maxRow)
	for p, value := range points {
		row := rows[p.row-1]
		for len(row) < p.col {
			row = append(row, "")
		}
		row[p.col-1] = value
		rows[p.row-1] = row
	}
	return NewGrid(rows)
}

// gridFromRows places values starting at column 1, row 1.
func gridFromRows(rows ...[]string) *Grid {
	return NewGrid(rows)
}
