package diagnosis

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"dgamaster/output"
	"dgamaster/reading"

	"github.com/xuri/excelize/v2"
)

// Gas is one measured value of the latest reading.
type Gas struct {
	Name  string
	Value string
}

// Snapshot is the diagnosed content of a master workbook.
type Snapshot struct {
	Summary []SummaryRow
	// Gases holds the latest reading per transformer, in UltimaPorTrafo
	// column order.
	Gases map[reading.Key][]Gas
}

// Find returns the summary row of one transformer.
func (s *Snapshot) Find(key reading.Key) (SummaryRow, bool) {
	for _, row := range s.Summary {
		if row.Key == key {
			return row, true
		}
	}
	return SummaryRow{}, false
}

// Load reads the summary and latest readings written by Run.
func Load(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingResourceError{Path: path}
		}
		return nil, fmt.Errorf("stat workbook %s: %w", path, err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	summary, ok, err := readFrame(file, SheetSummary)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetSummary, err)
	}
	if !ok {
		return nil, &MissingResourceError{Path: path, Sheet: SheetSummary}
	}

	snapshot := &Snapshot{Gases: make(map[reading.Key][]Gas)}
	for _, row := range summary.Rows {
		confidence, _ := strconv.Atoi(summary.Value(row, ColumnConfidence))
		snapshot.Summary = append(snapshot.Summary, SummaryRow{
			Key:        summary.key(row),
			SampleDate: summary.Value(row, reading.ColumnSampleDate),
			IEEE:       summary.Value(row, ColumnIEEE),
			R1:         summary.Value(row, ColumnR1),
			R2:         summary.Value(row, ColumnR2),
			R3:         summary.Value(row, ColumnR3),
			Ratios:     summary.Value(row, ColumnRatios),
			IEC:        summary.Value(row, ColumnIEC),
			Duval:      summary.Value(row, ColumnDuval),
			Final:      summary.Value(row, ColumnFinal),
			Confidence: confidence,
		})
	}

	latest, ok, err := readFrame(file, output.SheetLatest)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", output.SheetLatest, err)
	}
	if !ok {
		return snapshot, nil
	}
	fixed := len(reading.FixedColumns)
	for _, row := range latest.Rows {
		var gases []Gas
		for i := fixed; i < len(latest.Header); i++ {
			gases = append(gases, Gas{Name: latest.Header[i], Value: row[i]})
		}
		snapshot.Gases[latest.key(row)] = gases
	}
	return snapshot, nil
}
