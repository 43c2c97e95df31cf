package risk

import (
	"fmt"
	"math"
	"time"
)

// PriceBundle is an aligned set of price series: one row per date (strictly
// ascending), one column per asset (assetIDs is the canonical ordering).
type PriceBundle struct {
	Dates    []time.Time
	AssetIDs []string
	Prices   [][]float64 // Prices[t][i] is AssetIDs[i]'s price on Dates[t]
}

// ReturnSeries is the output of BuildReturns: one row per return date (one
// shorter than the input price series), same asset ordering.
type ReturnSeries struct {
	Dates    []time.Time
	AssetIDs []string
	Returns  [][]float64
}

// BuildReturns implements spec.md section 4.9 step 2: compute simple or log
// returns from an aligned price bundle and apply the missing-data policy.
// Returns strictly after asOf are rejected as look-ahead.
func BuildReturns(bundle PriceBundle, asOf time.Time, def ReturnDefinition, policy MissingDataPolicy) (ReturnSeries, []Warning, error) {
	if len(bundle.Dates) == 0 {
		return ReturnSeries{}, nil, newInputError("price bundle has no observations", nil)
	}
	for _, d := range bundle.Dates {
		if d.After(asOf) {
			return ReturnSeries{}, nil, newInputError("price bundle contains observations after as_of", map[string]any{"as_of": asOf, "date": d})
		}
	}

	prices := bundle.Prices
	var warnings []Warning

	if policy == MissingForwardFill {
		missing := countMissing(prices)
		if missing > 0 {
			warnings = append(warnings, Warning{
				Code:    "MISSING_DATA_FORWARD_FILL",
				Message: "forward-filled missing prices before returns; results may be biased",
				Context: map[string]any{"missing_count": missing},
			})
		}
		prices = forwardFill(prices)
	}

	if def == ReturnLog {
		for _, row := range prices {
			for _, v := range row {
				if !math.IsNaN(v) && v <= 0 {
					return ReturnSeries{}, nil, newInputError("log returns require strictly positive prices", nil)
				}
			}
		}
	}

	n := len(prices)
	m := len(bundle.AssetIDs)
	returns := make([][]float64, n-1)
	for t := 1; t < n; t++ {
		row := make([]float64, m)
		for i := 0; i < m; i++ {
			row[i] = computeReturn(prices[t-1][i], prices[t][i], def)
		}
		returns[t-1] = row
	}
	dates := append([]time.Time(nil), bundle.Dates[1:]...)

	for _, row := range returns {
		for _, v := range row {
			if math.IsInf(v, 0) {
				return ReturnSeries{}, nil, newInputError("returns contain infinite values", map[string]any{"return_definition": def})
			}
		}
	}

	switch policy {
	case MissingError, MissingForwardFill:
		if n := countMissing(returns); n > 0 {
			return ReturnSeries{}, nil, newInputError("returns contain missing values", map[string]any{"policy": string(policy)})
		}
	case MissingDropDates:
		dates, returns = dropMissingRows(dates, returns)
	case MissingPartial:
		if n := countMissing(returns); n > 0 {
			warnings = append(warnings, Warning{
				Code:    "MISSING_DATA_PARTIAL",
				Message: "partial missing data retained in returns; downstream metrics should align on intersections",
				Context: map[string]any{"missing_count": n},
			})
		}
	default:
		return ReturnSeries{}, nil, fmt.Errorf("risk: unsupported missing_data_policy %q", policy)
	}

	return ReturnSeries{Dates: dates, AssetIDs: bundle.AssetIDs, Returns: returns}, warnings, nil
}

func computeReturn(prev, cur float64, def ReturnDefinition) float64 {
	if math.IsNaN(prev) || math.IsNaN(cur) {
		return math.NaN()
	}
	switch def {
	case ReturnLog:
		return math.Log(cur / prev)
	default:
		return cur/prev - 1
	}
}

func countMissing(matrix [][]float64) int {
	count := 0
	for _, row := range matrix {
		for _, v := range row {
			if math.IsNaN(v) {
				count++
			}
		}
	}
	return count
}

func forwardFill(prices [][]float64) [][]float64 {
	if len(prices) == 0 {
		return prices
	}
	m := len(prices[0])
	out := make([][]float64, len(prices))
	last := make([]float64, m)
	for i := range last {
		last[i] = math.NaN()
	}
	for t, row := range prices {
		newRow := make([]float64, m)
		for i, v := range row {
			if math.IsNaN(v) {
				newRow[i] = last[i]
			} else {
				newRow[i] = v
				last[i] = v
			}
		}
		out[t] = newRow
	}
	return out
}

func dropMissingRows(dates []time.Time, returns [][]float64) ([]time.Time, [][]float64) {
	var outDates []time.Time
	var outReturns [][]float64
	for i, row := range returns {
		hasMissing := false
		for _, v := range row {
			if math.IsNaN(v) {
				hasMissing = true
				break
			}
		}
		if !hasMissing {
			outDates = append(outDates, dates[i])
			outReturns = append(outReturns, row)
		}
	}
	return outDates, outReturns
}

// StaticWeightPortfolioReturns implements spec.md section 4.9 step 3's
// STATIC_WEIGHTS_X_ASSET_RETURNS input mode: a fixed-weight linear
// combination of asset returns. The caller must add the "approximation
// ignores intra-window rebalancing" warning; this function only computes.
func StaticWeightPortfolioReturns(series ReturnSeries, weights map[string]float64) ([]float64, error) {
	weightVec := make([]float64, len(series.AssetIDs))
	for i, id := range series.AssetIDs {
		w, ok := weights[id]
		if !ok {
			return nil, newInputError("missing weight for asset", map[string]any{"market_data_id": id})
		}
		weightVec[i] = w
	}

	out := make([]float64, len(series.Returns))
	for t, row := range series.Returns {
		sum := 0.0
		for i, w := range weightVec {
			sum += w * row[i]
		}
		out[t] = sum
	}
	return out, nil
}
