package importer

import (
	"dgamaster/config"
	"dgamaster/internal/textkey"
)

// Identity is the display name and location a transformer sheet declares.
type Identity struct {
	Name     string
	Location string
}

func (i Identity) Complete() bool {
	return i.Name != "" && i.Location != ""
}

// ReadIdentity tries the template cells first and falls back to a label
// search over the scan bounds.
func ReadIdentity(grid *Grid, layout config.LayoutConfig) Identity {
	name := firstCell(grid, layout.NameCells)
	if name == "" {
		name = findLabelValue(grid, layout.NameLabel, layout.ScanRows, layout.ScanCols)
	}

	location := firstCell(grid, layout.LocationCells)
	if location == "" {
		location = findLabelValue(grid, layout.LocationLabel, layout.ScanRows, layout.ScanCols)
	}

	return Identity{Name: name, Location: location}
}

func firstCell(grid *Grid, cells []string) string {
	for _, cell := range cells {
		if value := textkey.Display(grid.CellByName(cell)); value != "" {
			return value
		}
	}
	return ""
}

// findLabelValue returns the non-empty value right of the first cell
// containing label.
func findLabelValue(grid *Grid, label string, bottom, right int) string {
	for row := 1; row <= bottom; row++ {
		for col := 1; col <= right; col++ {
			if !textkey.Contains(grid.Cell(row, col), label) {
				continue
			}
			if col+1 > right {
				continue
			}
			if value := textkey.Display(grid.Cell(row, col+1)); value != "" {
				return value
			}
		}
	}
	return ""
}
