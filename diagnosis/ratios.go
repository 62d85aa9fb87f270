package diagnosis

import "math"

// Labels of the three-ratio method.
const (
	RatiosD2 = "D2 (Arcing)"
	RatiosDT = "DT (Discharge + Thermal)"
	RatiosT3 = "T3 (>700°C)"
	RatiosT2 = "T2 (300–700°C)"
	RatiosT1 = "T1 (<300°C)"
)

// Ratios holds R1 = C2H2/C2H4, R2 = CH4/H2 and R3 = C2H4/C2H6.
type Ratios struct {
	R1, R2, R3 float64
}

// NewRatios computes the three ratios with safeDiv.
func NewRatios(ch4, c2h4, c2h6, c2h2, h2 float64) Ratios {
	return Ratios{
		R1: safeDiv(c2h2, c2h4),
		R2: safeDiv(ch4, h2),
		R3: safeDiv(c2h4, c2h6),
	}
}

// Classify applies the rules in order; the first match wins.
func (r Ratios) Classify() string {
	switch {
	case r.R1 > 3 && r.R3 > 3:
		return RatiosD2
	case r.R1 > 1 && r.R3 > 1:
		return RatiosDT
	case r.R3 > 1 && r.R2 < 1:
		return RatiosT3
	case r.R3 > 0.5 && r.R3 <= 1:
		return RatiosT2
	default:
		return RatiosT1
	}
}

// Rounded returns the ratios rounded to two decimals.
func (r Ratios) Rounded() Ratios {
	return Ratios{R1: round2(r.R1), R2: round2(r.R2), R3: round2(r.R3)}
}

// safeDiv returns a/b; a zero divisor gives +Inf for positive a and 0
// otherwise.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		if a > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return a / b
}
