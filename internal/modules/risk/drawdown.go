package risk

import "math"

// DrawdownPoint is one observation of the drawdown series.
type DrawdownPoint struct {
	Index    int
	Drawdown float64
}

// DrawdownResult implements spec.md section 4.9 step 7.
type DrawdownResult struct {
	Series              []DrawdownPoint
	MaxDrawdown         float64
	MaxDrawdownIndex    int
	TimeToRecovery      *int // nil if not recovered within the window
}

// Drawdown computes the wealth index, running maximum, drawdown series, and
// time-to-recovery from the trough. Time-to-recovery is the number of
// periods between the drawdown trough and the first subsequent period at
// which wealth returns to its prior running maximum; nil if that never
// happens within the series.
func Drawdown(returns []float64, def ReturnDefinition) (DrawdownResult, error) {
	if len(returns) == 0 {
		return DrawdownResult{}, newInputError("returns must have at least one observation", map[string]any{"rows": 0})
	}

	wealth := make([]float64, len(returns))
	switch def {
	case ReturnLog:
		cum := 0.0
		for i, r := range returns {
			cum += r
			wealth[i] = math.Exp(cum)
		}
	default:
		cum := 1.0
		for i, r := range returns {
			cum *= 1 + r
			wealth[i] = cum
		}
	}

	runningMax := make([]float64, len(wealth))
	maxSoFar := wealth[0]
	for i, w := range wealth {
		if w > maxSoFar {
			maxSoFar = w
		}
		runningMax[i] = maxSoFar
	}

	series := make([]DrawdownPoint, len(wealth))
	minDD := 0.0
	minIdx := 0
	for i := range wealth {
		dd := wealth[i]/runningMax[i] - 1
		series[i] = DrawdownPoint{Index: i, Drawdown: dd}
		if dd < minDD {
			minDD = dd
			minIdx = i
		}
	}

	var recovery *int
	peakAtTrough := runningMax[minIdx]
	for t := minIdx + 1; t < len(wealth); t++ {
		if wealth[t] >= peakAtTrough {
			r := t - minIdx
			recovery = &r
			break
		}
	}

	return DrawdownResult{
		Series:           series,
		MaxDrawdown:      minDD,
		MaxDrawdownIndex: minIdx,
		TimeToRecovery:   recovery,
	}, nil
}
