package diagnosis

import (
	"fmt"
	"sort"

	"dgamaster/internal/textkey"
	"dgamaster/output"
	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

// Confidence values of the final label.
const (
	ConfidenceCertain       = 100
	ConfidenceProbable      = 85
	ConfidenceIndeterminate = 70

	FinalIndeterminate = "Indeterminado"
)

// SummaryRow merges the stage results of one transformer.
type SummaryRow struct {
	Key        reading.Key
	SampleDate string
	IEEE       string
	R1, R2, R3 string
	Ratios     string
	IEC        string
	Duval      string
	Final      string
	Confidence int
}

var summaryHeader = []string{
	reading.ColumnPlant,
	reading.ColumnTransformer,
	reading.ColumnLocation,
	reading.ColumnSampleDate,
	ColumnIEEE,
	ColumnR1,
	ColumnR2,
	ColumnR3,
	ColumnRatios,
	ColumnIEC,
	ColumnDuval,
	ColumnFinal,
	ColumnConfidence,
}

// FinalLabel derives the final label and its confidence from the IEEE state.
func FinalLabel(ieee string) (string, int) {
	switch {
	case textkey.Contains(ieee, "normal"):
		return "Normal (100%)", ConfidenceCertain
	case textkey.Contains(ieee, "critico"):
		return "Crítico (100%)", ConfidenceCertain
	case textkey.Contains(ieee, "preoc"):
		return "Preocupante (85%)", ConfidenceProbable
	default:
		return FinalIndeterminate, ConfidenceIndeterminate
	}
}

// buildSummary outer-joins the stage sheets currently in the workbook by
// transformer key. Missing sheets contribute nothing and are returned by name.
func buildSummary(file *excelize.File) ([]SummaryRow, []string, error) {
	merged := make(map[reading.Key]*SummaryRow)
	var missing []string

	sources := []struct {
		sheet string
		apply func(f *Frame, row []string, out *SummaryRow)
	}{
		{SheetEstados, func(f *Frame, row []string, out *SummaryRow) {
			out.IEEE = f.Value(row, ColumnIEEE)
		}},
		{SheetRatios, func(f *Frame, row []string, out *SummaryRow) {
			out.R1 = f.Value(row, ColumnR1)
			out.R2 = f.Value(row, ColumnR2)
			out.R3 = f.Value(row, ColumnR3)
			out.Ratios = f.Value(row, ColumnRatios)
		}},
		{SheetIEC, func(f *Frame, row []string, out *SummaryRow) {
			out.IEC = f.Value(row, ColumnIEC)
		}},
		{SheetDuval, func(f *Frame, row []string, out *SummaryRow) {
			out.Duval = f.Value(row, ColumnDuval)
		}},
	}

	for _, source := range sources {
		frame, ok, err := readFrame(file, source.sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %s: %w", source.sheet, err)
		}
		if !ok {
			missing = append(missing, source.sheet)
			continue
		}
		seen := make(map[reading.Key]bool)
		for _, row := range frame.Rows {
			key := frame.key(row)
			if key == (reading.Key{}) || seen[key] {
				continue
			}
			seen[key] = true
			out, exists := merged[key]
			if !exists {
				out = &SummaryRow{Key: key}
				merged[key] = out
			}
			if out.SampleDate == "" {
				out.SampleDate = frame.Value(row, reading.ColumnSampleDate)
			}
			source.apply(frame, row, out)
		}
	}

	keys := make([]reading.Key, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	rows := make([]SummaryRow, 0, len(keys))
	for _, key := range keys {
		row := merged[key]
		if textkey.Contains(row.IEEE, "normal") {
			row.Ratios = Normal
			row.IEC = Normal
			row.Duval = Normal
		}
		row.Final, row.Confidence = FinalLabel(row.IEEE)
		rows = append(rows, *row)
	}
	return rows, missing, nil
}

func (r SummaryRow) cells() []any {
	return []any{
		r.Key.Plant,
		r.Key.Transformer,
		r.Key.Location,
		r.SampleDate,
		r.IEEE,
		output.CellValue(r.R1),
		output.CellValue(r.R2),
		output.CellValue(r.R3),
		r.Ratios,
		r.IEC,
		r.Duval,
		r.Final,
		r.Confidence,
	}
}
