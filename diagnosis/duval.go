package diagnosis

// Labels of Duval triangle 1.
const (
	DuvalNoData        = "Sin datos"
	DuvalIndeterminate = "Indeterminado"
	DuvalPD            = "PD (Descargas Parciales)"
	DuvalD1            = "D1 (Descarga Baja Energía)"
	DuvalD2            = "D2 (Arco)"
	DuvalT1            = "T1 (<300°C)"
	DuvalT2            = "T2 (300–700°C)"
	DuvalT3            = "T3 (>700°C)"
	DuvalDT            = "DT (Discharge + Thermal)"
)

// DuvalPoint is a position in the triangle as percentages of the CH4, C2H4
// and C2H2 total.
type DuvalPoint struct {
	CH4, C2H4, C2H2 float64
	// Empty is set when the three gases sum to zero.
	Empty bool
}

func NewDuvalPoint(ch4, c2h4, c2h2 float64) DuvalPoint {
	total := ch4 + c2h4 + c2h2
	if total == 0 {
		return DuvalPoint{Empty: true}
	}
	return DuvalPoint{
		CH4:  ch4 / total * 100,
		C2H4: c2h4 / total * 100,
		C2H2: c2h2 / total * 100,
	}
}

// Zone checks the zones in order; the first match wins.
func (p DuvalPoint) Zone() string {
	switch {
	case p.Empty:
		return DuvalNoData
	case p.C2H2 < 4 && p.C2H4 < 10 && p.CH4 > 90:
		return DuvalPD
	case p.C2H2 >= 23 && p.C2H2 <= 50 && p.C2H4 >= 13 && p.C2H4 <= 23:
		return DuvalD1
	case p.C2H2 > 50 && p.C2H4 < 20:
		return DuvalD2
	case p.C2H4 < 20 && p.C2H2 < 4 && p.CH4 > 80:
		return DuvalT1
	case p.C2H4 >= 20 && p.C2H4 <= 50 && p.C2H2 < 4 && p.CH4 >= 30 && p.CH4 <= 80:
		return DuvalT2
	case p.C2H4 > 50 && p.C2H2 < 4 && p.CH4 < 20:
		return DuvalT3
	case p.C2H2 > 20 && p.C2H2 < 50 && p.C2H4 > 20 && p.C2H4 < 40:
		return DuvalDT
	default:
		return DuvalIndeterminate
	}
}

func (p DuvalPoint) Rounded() DuvalPoint {
	return DuvalPoint{CH4: round2(p.CH4), C2H4: round2(p.C2H4), C2H2: round2(p.C2H2), Empty: p.Empty}
}
