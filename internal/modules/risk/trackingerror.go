package risk

import (
	"math"

	"github.com/aristath/quantlab-go/pkg/formulas"
)

// TrackingError implements spec.md section 4.9 step 8: annualized standard
// deviation of (portfolio_return - benchmark_return) over aligned series.
// Alignment and the missing-data policy are the caller's responsibility
// (via BuildReturns); this function operates on already-aligned series of
// equal length.
func TrackingError(portfolio, benchmark []float64, annualizationFactor float64) (float64, error) {
	if len(portfolio) != len(benchmark) {
		return 0, newInputError("portfolio and benchmark returns must be aligned to equal length", map[string]any{
			"portfolio_rows": len(portfolio), "benchmark_rows": len(benchmark),
		})
	}
	if len(portfolio) < 2 {
		return 0, newInputError("returns must have at least two observations", map[string]any{"rows": len(portfolio)})
	}

	active := make([]float64, len(portfolio))
	for i := range portfolio {
		if math.IsNaN(portfolio[i]) || math.IsNaN(benchmark[i]) {
			return 0, newInputError("returns contain missing values", nil)
		}
		active[i] = portfolio[i] - benchmark[i]
	}

	return formulas.StdDev(active) * math.Sqrt(annualizationFactor), nil
}
