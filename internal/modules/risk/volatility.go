package risk

import (
	"math"

	"github.com/aristath/quantlab-go/pkg/formulas"
)

// Volatility implements spec.md section 4.9 step 4: sample standard
// deviation scaled by sqrt(annualization_factor).
func Volatility(returns []float64, annualizationFactor float64) (float64, error) {
	if len(returns) < 2 {
		return 0, newInputError("returns must have at least two observations", map[string]any{"rows": len(returns)})
	}
	return formulas.StdDev(returns) * math.Sqrt(annualizationFactor), nil
}
