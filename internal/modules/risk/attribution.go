package risk

import "math"

const attributionConvention = "component = weight * (covariance @ weight)"

// VarianceAttributionResult implements spec.md section 4.9 step 11:
// sigma^2 = w^T Sigma w, decomposed into per-asset component contributions
// that sum to sigma^2 within tolerance.
type VarianceAttributionResult struct {
	AssetIDs           []string
	Contributions      []float64
	PortfolioVariance  float64
	Convention         string
}

// VarianceAttribution computes component contributions for a static weight
// vector against a covariance matrix produced by SampleCovariance. weights
// must be keyed by the same asset IDs as cov.AssetIDs.
func VarianceAttribution(cov CovarianceResult, weights map[string]float64) (VarianceAttributionResult, error) {
	m := len(cov.AssetIDs)
	if m == 0 {
		return VarianceAttributionResult{}, newInputError("covariance must be non-empty", nil)
	}

	w := make([]float64, m)
	for i, id := range cov.AssetIDs {
		v, ok := weights[id]
		if !ok {
			return VarianceAttributionResult{}, newInputError("weights index must match covariance labels", map[string]any{"missing_asset": id})
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return VarianceAttributionResult{}, newInputError("weights must be finite", map[string]any{"asset": id})
		}
		w[i] = v
	}

	marginal := make([]float64, m)
	for i := 0; i < m; i++ {
		sum := 0.0
		for j := 0; j < m; j++ {
			sum += cov.Covariance.At(i, j) * w[j]
		}
		marginal[i] = sum
	}

	contributions := make([]float64, m)
	portfolioVariance := 0.0
	for i := 0; i < m; i++ {
		contributions[i] = w[i] * marginal[i]
		portfolioVariance += contributions[i]
	}

	return VarianceAttributionResult{
		AssetIDs:          append([]string(nil), cov.AssetIDs...),
		Contributions:     contributions,
		PortfolioVariance: portfolioVariance,
		Convention:        attributionConvention,
	}, nil
}
