package model

// CriticalRUL is the cycle count below which a trend is treated as rapid decay.
const CriticalRUL = 30

// Trend classifies an RUL history.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendStable
	TrendDecaying
)

func (t Trend) String() string {
	switch t {
	case TrendStable:
		return "Stable"
	case TrendDecaying:
		return "Rapid Decay"
	default:
		return "Unknown"
	}
}

// LatestRUL returns the most recent sample of a chronological (oldest-first)
// RUL history.
func LatestRUL(history []float64) (float64, bool) {
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1], true
}

// RULTrend reports TrendDecaying when the most recent sample is below
// CriticalRUL, TrendStable otherwise, and TrendUnknown for an empty history.
func RULTrend(history []float64) Trend {
	latest, ok := LatestRUL(history)
	if !ok {
		return TrendUnknown
	}
	if latest < CriticalRUL {
		return TrendDecaying
	}
	return TrendStable
}

// RULSlope returns the average change per sample across history (negative
// means RUL is falling). Histories shorter than two samples have slope 0.
func RULSlope(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	return (history[len(history)-1] - history[0]) / float64(len(history)-1)
}
