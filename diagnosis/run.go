package diagnosis

import (
	"errors"
	"fmt"
	"os"

	"dgamaster/output"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StageReport is the outcome of one stage. Err is set when the stage was
// skipped and its sheet left as it was.
type StageReport struct {
	Name  string
	Sheet string
	Rows  int
	Err   error
}

type Report struct {
	Path          string
	InputRows     int
	Stages        []StageReport
	SummaryRows   int
	MissingSheets []string
}

// Failed counts the stages that did not write their sheet.
func (r *Report) Failed() int {
	failed := 0
	for _, stage := range r.Stages {
		if stage.Err != nil {
			failed++
		}
	}
	return failed
}

// Run classifies the latest reading per transformer in the workbook at path,
// rewrites each stage sheet and the summary, and saves the workbook in place.
// A missing workbook or input sheet stops the run. Stage failures are joined
// into the returned error after the workbook has been saved.
func Run(path string, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

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

	frame, ok, err := readFrame(file, output.SheetLatest)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", output.SheetLatest, err)
	}
	if !ok {
		return nil, &MissingResourceError{Path: path, Sheet: output.SheetLatest}
	}
	if err := frame.requireColumns("input", keyColumns); err != nil {
		return nil, err
	}
	frame.renameTDGC()

	report := &Report{Path: path, InputRows: len(frame.Rows)}
	paint := newPainter(file)
	var stageErrs []error

	for _, stage := range Stages() {
		rows, err := stage.Evaluate(frame)
		if err != nil {
			logger.Warn("diagnosis stage skipped", zap.String("stage", stage.Name), zap.String("sheet", stage.Sheet), zap.Error(err))
			report.Stages = append(report.Stages, StageReport{Name: stage.Name, Sheet: stage.Sheet, Err: err})
			stageErrs = append(stageErrs, err)
			continue
		}

		if err := writeSheet(file, stage.Sheet, stage.Table, stage.Header(), rows); err != nil {
			return nil, err
		}
		if err := paint.colorColumn(stage.Sheet, len(stage.Header()), rows, stage.color); err != nil {
			return nil, err
		}
		logger.Info("diagnosis stage written", zap.String("stage", stage.Name), zap.String("sheet", stage.Sheet), zap.Int("rows", len(rows)))
		report.Stages = append(report.Stages, StageReport{Name: stage.Name, Sheet: stage.Sheet, Rows: len(rows)})
	}

	summary, missing, err := buildSummary(file)
	if err != nil {
		return nil, err
	}
	for _, sheet := range missing {
		logger.Warn("summary source sheet missing; its columns stay empty", zap.String("sheet", sheet))
	}
	report.MissingSheets = missing
	report.SummaryRows = len(summary)

	cells := make([][]any, 0, len(summary))
	for _, row := range summary {
		cells = append(cells, row.cells())
	}
	if err := writeSheet(file, SheetSummary, TableSummary, summaryHeader, cells); err != nil {
		return nil, err
	}
	finalCol := len(summaryHeader) - 1
	if err := paint.colorColumn(SheetSummary, finalCol, cells, finalColor); err != nil {
		return nil, err
	}

	if err := file.Save(); err != nil {
		return nil, fmt.Errorf("save workbook %s: %w", path, err)
	}
	return report, errors.Join(stageErrs...)
}

// writeSheet replaces a sheet with a fresh header and rows. Tables on the old
// sheet are removed first so their names can be reused.
func writeSheet(file *excelize.File, sheet, table string, header []string, rows [][]any) error {
	index, err := file.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("look up sheet %s: %w", sheet, err)
	}
	if index >= 0 {
		tables, err := file.GetTables(sheet)
		if err != nil {
			return fmt.Errorf("list tables on %s: %w", sheet, err)
		}
		for _, existing := range tables {
			if err := file.DeleteTable(existing.Name); err != nil {
				return fmt.Errorf("delete table %s: %w", existing.Name, err)
			}
		}
		if err := file.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("delete sheet %s: %w", sheet, err)
		}
	}
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return output.WriteTableSheet(file, sheet, table, header, rows)
}
