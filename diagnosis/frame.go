package diagnosis

import (
	"math"
	"strconv"
	"strings"

	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

// ColumnTDGC is the total dissolved combustible gas column after renaming.
const ColumnTDGC = "TDGC"

var tdgcAliases = []string{"ppm", "TDCG"}

var keyColumns = []string{reading.ColumnPlant, reading.ColumnTransformer, reading.ColumnLocation}

// Frame is one worksheet read as a header and text rows.
type Frame struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

func newFrame(header []string, rows [][]string) *Frame {
	f := &Frame{Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, name := range header {
		if _, ok := f.index[name]; !ok {
			f.index[name] = i
		}
	}
	return f
}

// readFrame loads a sheet, trimming header names and padding short rows.
// The second return value is false when the sheet does not exist.
func readFrame(file *excelize.File, sheet string) (*Frame, bool, error) {
	if idx, err := file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, false, nil
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, true, err
	}
	if len(rows) == 0 {
		return newFrame(nil, nil), true, nil
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, len(header))
		copy(padded, row)
		data = append(data, padded)
	}
	return newFrame(header, data), true, nil
}

// renameTDGC maps the first known alias of the total gas column to TDGC.
func (f *Frame) renameTDGC() {
	if f.Has(ColumnTDGC) {
		return
	}
	for _, alias := range tdgcAliases {
		i, ok := f.index[alias]
		if !ok {
			continue
		}
		f.Header[i] = ColumnTDGC
		delete(f.index, alias)
		f.index[ColumnTDGC] = i
		return
	}
}

func (f *Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

// Value returns the text of column in row, or "" when the column is absent.
func (f *Frame) Value(row []string, column string) string {
	i, ok := f.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Number returns the numeric value of column in row.
func (f *Frame) Number(row []string, column string) float64 {
	return Number(f.Value(row, column))
}

func (f *Frame) key(row []string) reading.Key {
	return reading.Key{
		Plant:       f.Value(row, reading.ColumnPlant),
		Transformer: f.Value(row, reading.ColumnTransformer),
		Location:    f.Value(row, reading.ColumnLocation),
	}
}

func (f *Frame) requireColumns(stage string, columns []string) error {
	for _, column := range columns {
		if !f.Has(column) {
			return &MissingColumnError{Stage: stage, Column: column}
		}
	}
	return nil
}

// Number coerces a cell to a float. A comma decimal separator is accepted;
// anything unparsable counts as 0.
func Number(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		value, err = strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
	}
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func round2(value float64) float64 {
	if math.IsInf(value, 0) {
		return value
	}
	return math.Round(value*100) / 100
}
