package diagnosis

// Severity labels shared by the limit-based stages.
const (
	Normal      = "Normal"
	Preocupante = "Preocupante"
	Critico     = "Crítico"
)

// GasLimit is the upper bound for Normal and for Preocupante. Values above
// Caution are Crítico.
type GasLimit struct {
	Gas     string
	Normal  float64
	Caution float64
}

// IEEELimits follow IEEE C57.104.
var IEEELimits = []GasLimit{
	{Gas: "CH4", Normal: 100, Caution: 1000},
	{Gas: "C2H4", Normal: 50, Caution: 500},
	{Gas: "C2H2", Normal: 5, Caution: 35},
	{Gas: ColumnTDGC, Normal: 720, Caution: 1920},
}

// IECLimits follow IEC 60599.
var IECLimits = []GasLimit{
	{Gas: "H2", Normal: 100, Caution: 700},
	{Gas: "CH4", Normal: 120, Caution: 1000},
	{Gas: "C2H6", Normal: 65, Caution: 1000},
	{Gas: "C2H4", Normal: 50, Caution: 1000},
	{Gas: "C2H2", Normal: 3, Caution: 50},
}

func (l GasLimit) Classify(value float64) string {
	switch {
	case value <= l.Normal:
		return Normal
	case value <= l.Caution:
		return Preocupante
	default:
		return Critico
	}
}

// worstSeverity classifies every limited gas present in the frame and returns
// the most severe label. Gases missing from the frame are ignored.
func worstSeverity(f *Frame, row []string, limits []GasLimit) string {
	worst := Normal
	for _, limit := range limits {
		if !f.Has(limit.Gas) {
			continue
		}
		switch limit.Classify(f.Number(row, limit.Gas)) {
		case Critico:
			return Critico
		case Preocupante:
			worst = Preocupante
		}
	}
	return worst
}
