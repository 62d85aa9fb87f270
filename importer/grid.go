package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Grid is an in-memory, 1-based view of one worksheet's cell values.
type Grid struct {
	rows [][]string
}

// NewGrid wraps rows as returned by excelize GetRows.
func NewGrid(rows [][]string) *Grid {
	return &Grid{rows: rows}
}

// Cell returns the value at the 1-based row and column, or "" when outside
// the populated area.
func (g *Grid) Cell(row, col int) string {
	if g == nil || row < 1 || col < 1 || row > len(g.rows) {
		return ""
	}
	cells := g.rows[row-1]
	if col > len(cells) {
		return ""
	}
	return cells[col-1]
}

// CellByName resolves an A1-style reference.
func (g *Grid) CellByName(name string) string {
	col, row, err := excelize.CellNameToCoordinates(name)
	if err != nil {
		return ""
	}
	return g.Cell(row, col)
}

// MaxRow is the last populated row number.
func (g *Grid) MaxRow() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Workbook is the read side of one source workbook.
type Workbook interface {
	SheetNames() []string
	Grid(sheet string) (*Grid, error)
	Close() error
}

// ExcelWorkbook reads sheets through excelize. The file is never saved.
type ExcelWorkbook struct {
	file  *excelize.File
	grids map[string]*Grid
}

func OpenExcelWorkbook(path string) (*ExcelWorkbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	return &ExcelWorkbook{file: file, grids: make(map[string]*Grid)}, nil
}

func (w *ExcelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Grid loads raw cell values so dates arrive as serial numbers instead of
// locale-formatted text.
func (w *ExcelWorkbook) Grid(sheet string) (*Grid, error) {
	if grid, ok := w.grids[sheet]; ok {
		return grid, nil
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheet, err)
	}
	grid := NewGrid(rows)
	w.grids[sheet] = grid
	return grid, nil
}

func (w *ExcelWorkbook) Close() error {
	return w.file.Close()
}
