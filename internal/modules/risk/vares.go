package risk

import (
	"math"
	"sort"
)

// VarEsResult is one confidence level's VaR/ES pair plus the sample-size
// warning, if any.
type VarEsResult struct {
	ConfidenceLevel float64
	Var             float64
	Es              float64
}

// HistoricalVarEs implements spec.md section 4.9 step 9. Loss convention:
// loss = -return. VaR is the empirical quantile of losses using linear
// interpolation between order statistics (the Open Question resolution
// recorded in SPEC_FULL.md section 9(a)); ES is the mean of losses at or
// above VaR. Invariant enforced by construction: ES >= VaR.
func HistoricalVarEs(returns []float64, confidenceLevels []float64) ([]VarEsResult, []Warning, error) {
	if len(returns) < 2 {
		return nil, nil, newInputError("returns must have at least two observations", map[string]any{"rows": len(returns)})
	}
	for _, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, nil, newInputError("returns contain non-finite values", nil)
		}
	}

	levels := normalizeConfidenceLevels(confidenceLevels)
	if len(levels) == 0 {
		return nil, nil, newInputError("confidence_levels must be non-empty", nil)
	}

	losses := make([]float64, len(returns))
	for i, r := range returns {
		losses[i] = -r
	}
	sorted := append([]float64(nil), losses...)
	sort.Float64s(sorted)

	var warnings []Warning
	results := make([]VarEsResult, 0, len(levels))
	for _, level := range levels {
		required := requiredSampleSize(level)
		if len(sorted) < required {
			warnings = append(warnings, Warning{
				Code:    "VAR_ES_SMALL_SAMPLE",
				Message: "sample size is smaller than the minimum recommended for tail estimates",
				Context: map[string]any{"confidence_level": level, "sample_size": len(sorted), "required_sample_size": required},
			})
		}

		varValue := linearInterpolatedQuantile(sorted, level)

		sum, count := 0.0, 0
		for _, l := range sorted {
			if l >= varValue {
				sum += l
				count++
			}
		}
		if count == 0 {
			return nil, nil, newInputError("tail sample is empty for VaR/ES computation", map[string]any{"confidence_level": level, "var": varValue})
		}
		esValue := sum / float64(count)

		results = append(results, VarEsResult{ConfidenceLevel: level, Var: varValue, Es: esValue})
	}

	return results, warnings, nil
}

func normalizeConfidenceLevels(levels []float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, l := range levels {
		if l <= 0 || l >= 1 {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Float64s(out)
	return out
}

func requiredSampleSize(confidenceLevel float64) int {
	const eps = 1e-12
	return int(math.Ceil(1.0/(1.0-confidenceLevel) - eps))
}

// linearInterpolatedQuantile computes the p-quantile of an already-sorted
// slice using linear interpolation between order statistics, matching
// numpy's default ("linear") interpolation method.
func linearInterpolatedQuantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
