package importer

import (
	"dgamaster/config"
	"dgamaster/internal/textkey"
)

// IndexEntry is one normalized (name, location) pair listed on a workbook's
// index sheet.
type IndexEntry struct {
	Name     string
	Location string
}

func NewIndexEntry(name, location string) IndexEntry {
	return IndexEntry{Name: textkey.Normalize(name), Location: textkey.Normalize(location)}
}

// IndexSet holds the transformers a workbook declares valid.
type IndexSet map[IndexEntry]struct{}

func (s IndexSet) Contains(name, location string) bool {
	_, ok := s[NewIndexEntry(name, location)]
	return ok
}

// IndexResult describes where the index was found.
type IndexResult struct {
	Sheet     string
	HeaderRow int
	NameCol   int
	LocCol    int
	Entries   IndexSet
}

// FindIndexSheet returns the first sheet whose title carries the index token.
func FindIndexSheet(sheets []string, token string) (string, bool) {
	for _, sheet := range sheets {
		if textkey.Contains(sheet, token) {
			return sheet, true
		}
	}
	return "", false
}

// ReadIndex builds the IndexSet of a workbook. A workbook without an index
// sheet, or whose index has no recognizable header, yields an empty set.
func ReadIndex(workbook Workbook, layout config.LayoutConfig, cfg config.IndexConfig) (IndexResult, error) {
	result := IndexResult{Entries: IndexSet{}}

	sheet, ok := FindIndexSheet(workbook.SheetNames(), cfg.SheetToken)
	if !ok {
		return result, nil
	}
	result.Sheet = sheet

	grid, err := workbook.Grid(sheet)
	if err != nil {
		return result, err
	}

	headerRow, nameCol, locCol := findIndexHeader(grid, layout, cfg)
	if headerRow == 0 {
		return result, nil
	}
	result.HeaderRow, result.NameCol, result.LocCol = headerRow, nameCol, locCol

	empty := 0
	for row := headerRow + 1; row <= headerRow+cfg.MaxRows; row++ {
		name := textkey.Display(grid.Cell(row, nameCol))
		location := textkey.Display(grid.Cell(row, locCol))
		if name == "" && location == "" {
			empty++
			if empty >= cfg.EmptyRowTolerance {
				break
			}
			continue
		}
		empty = 0

		if cfg.ExampleToken != "" && textkey.Contains(name, cfg.ExampleToken) {
			continue
		}
		result.Entries[NewIndexEntry(name, location)] = struct{}{}
	}

	return result, nil
}

// findIndexHeader records the first cell matching each header token. The
// header row is the row where the second of the two tokens was found.
func findIndexHeader(grid *Grid, layout config.LayoutConfig, cfg config.IndexConfig) (int, int, int) {
	headerRow, nameCol, locCol := 0, 0, 0
	for row := 1; row <= layout.ScanRows; row++ {
		for col := 1; col <= layout.ScanCols; col++ {
			value := grid.Cell(row, col)
			if value == "" {
				continue
			}
			if locCol == 0 && textkey.Contains(value, cfg.LocationToken) {
				locCol = col
				headerRow = row
			}
			if nameCol == 0 && textkey.Contains(value, cfg.NameToken) {
				nameCol = col
				headerRow = row
			}
		}
		if nameCol != 0 && locCol != 0 {
			return headerRow, nameCol, locCol
		}
	}
	return 0, 0, 0
}
