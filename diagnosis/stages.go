package diagnosis

import (
	"math"

	"dgamaster/reading"
)

// Sheet and table names written by the stages.
const (
	SheetEstados = "Estados"
	SheetRatios  = "Diag_3Ratios"
	SheetIEC     = "Diag_IEC"
	SheetDuval   = "Diag_Duval"
	SheetSummary = "Resumen"

	TableRatios  = "Tabla3Ratios"
	TableDuval   = "Tabla_Duval"
	TableSummary = "TablaResumen"
)

// Diagnosis column names.
const (
	ColumnIEEE       = "Diagnóstico IEEE"
	ColumnRatios     = "Diagnóstico 3 Ratios"
	ColumnIEC        = "Diagnóstico IEC"
	ColumnDuval      = "Diagnóstico Duval"
	ColumnFinal      = "Diagnóstico Final"
	ColumnConfidence = "Fiabilidad"

	ColumnR1 = "R1 (C2H2/C2H4)"
	ColumnR2 = "R2 (CH4/H2)"
	ColumnR3 = "R3 (C2H4/C2H6)"

	ColumnPctCH4  = "%CH4"
	ColumnPctC2H4 = "%C2H4"
	ColumnPctC2H2 = "%C2H2"
)

// Stage is one classifier over the latest reading per transformer. Its output
// rows carry the transformer key, the sample date, then Columns.
type Stage struct {
	Name     string
	Sheet    string
	Table    string
	Columns  []string
	Required []string
	evaluate func(f *Frame, row []string) []any
	color    func(label string) string
}

// Stages returns the classifiers in the order they are written.
func Stages() []Stage {
	return []Stage{
		{
			Name:    "ieee",
			Sheet:   SheetEstados,
			Columns: []string{ColumnIEEE},
			evaluate: func(f *Frame, row []string) []any {
				return []any{worstSeverity(f, row, IEEELimits)}
			},
			color: severityColor,
		},
		{
			Name:     "ratios",
			Sheet:    SheetRatios,
			Table:    TableRatios,
			Columns:  []string{ColumnR1, ColumnR2, ColumnR3, ColumnRatios},
			Required: []string{"CH4", "C2H4", "C2H6", "C2H2", "H2"},
			evaluate: evaluateRatios,
			color:    faultColor,
		},
		{
			Name:    "iec",
			Sheet:   SheetIEC,
			Columns: []string{ColumnIEC},
			evaluate: func(f *Frame, row []string) []any {
				return []any{worstSeverity(f, row, IECLimits)}
			},
			color: severityColor,
		},
		{
			Name:     "duval",
			Sheet:    SheetDuval,
			Table:    TableDuval,
			Columns:  []string{ColumnPctCH4, ColumnPctC2H4, ColumnPctC2H2, ColumnDuval},
			Required: []string{"CH4", "C2H4", "C2H2"},
			evaluate: evaluateDuval,
			color:    duvalColor,
		},
	}
}

// Header is the full output header of the stage sheet.
func (s Stage) Header() []string {
	header := append([]string(nil), keyColumns...)
	header = append(header, reading.ColumnSampleDate)
	return append(header, s.Columns...)
}

// Evaluate classifies every row of the frame.
func (s Stage) Evaluate(f *Frame) ([][]any, error) {
	if err := f.requireColumns(s.Name, s.Required); err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(f.Rows))
	for _, row := range f.Rows {
		cells := []any{
			f.Value(row, reading.ColumnPlant),
			f.Value(row, reading.ColumnTransformer),
			f.Value(row, reading.ColumnLocation),
			f.Value(row, reading.ColumnSampleDate),
		}
		rows = append(rows, append(cells, s.evaluate(f, row)...))
	}
	return rows, nil
}

func evaluateRatios(f *Frame, row []string) []any {
	ratios := NewRatios(
		f.Number(row, "CH4"),
		f.Number(row, "C2H4"),
		f.Number(row, "C2H6"),
		f.Number(row, "C2H2"),
		f.Number(row, "H2"),
	)
	rounded := ratios.Rounded()
	return []any{ratioCell(rounded.R1), ratioCell(rounded.R2), ratioCell(rounded.R3), ratios.Classify()}
}

func evaluateDuval(f *Frame, row []string) []any {
	point := NewDuvalPoint(f.Number(row, "CH4"), f.Number(row, "C2H4"), f.Number(row, "C2H2"))
	rounded := point.Rounded()
	return []any{rounded.CH4, rounded.C2H4, rounded.C2H2, point.Zone()}
}

// ratioCell keeps infinite ratios as text; excelize cannot store them as
// numbers.
func ratioCell(value float64) any {
	if math.IsInf(value, 1) {
		return "inf"
	}
	return value
}
