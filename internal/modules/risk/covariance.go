package risk

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/quantlab-go/pkg/formulas"
)

const symmetryTolerance = 1e-9

// CovarianceDiagnostics reports the sample-covariance estimator's inputs
// and the symmetry check spec.md section 4.9 step 5 requires.
type CovarianceDiagnostics struct {
	SampleSize       int
	SymmetryMaxError float64
	IsSymmetric      bool
	Estimator        CovarianceEstimator
}

// CovarianceResult is the sample covariance and derived correlation matrix
// for a set of asset return series, both indexed by AssetIDs in order.
type CovarianceResult struct {
	AssetIDs    []string
	Covariance  *mat.SymDense
	Correlation *mat.SymDense
	Diagnostics CovarianceDiagnostics
}

// SampleCovariance implements spec.md section 4.9 steps 5-6: unbiased (n-1)
// sample covariance, an annualization scale, and a safe (zero-variance-safe)
// correlation matrix, with symmetry diagnostics.
func SampleCovariance(series ReturnSeries, annualizationFactor float64) (CovarianceResult, error) {
	n := len(series.Returns)
	m := len(series.AssetIDs)
	if n <= 1 {
		return CovarianceResult{}, newInputError("returns must have at least two observations", map[string]any{"rows": n})
	}
	if m == 0 {
		return CovarianceResult{}, newInputError("returns must have at least one asset", nil)
	}

	columns := make([][]float64, m)
	for i := 0; i < m; i++ {
		columns[i] = make([]float64, n)
		for t := 0; t < n; t++ {
			v := series.Returns[t][i]
			if math.IsNaN(v) {
				return CovarianceResult{}, newInputError("returns contain missing values", nil)
			}
			columns[i][t] = v
		}
	}

	cov := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			cov.SetSym(i, j, formulas.Covariance(columns[i], columns[j])*annualizationFactor)
		}
	}

	symmetryMaxError := symmetryError(cov, m)

	correlation := safeCorrelation(cov, m)

	return CovarianceResult{
		AssetIDs:   append([]string(nil), series.AssetIDs...),
		Covariance: cov,
		Correlation: correlation,
		Diagnostics: CovarianceDiagnostics{
			SampleSize:       n,
			SymmetryMaxError: symmetryMaxError,
			IsSymmetric:      symmetryMaxError <= symmetryTolerance,
			Estimator:        SampleCovarianceEstimator,
		},
	}, nil
}

func symmetryError(cov *mat.SymDense, m int) float64 {
	maxErr := 0.0
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			diff := math.Abs(cov.At(i, j) - cov.At(j, i))
			if diff > maxErr {
				maxErr = diff
			}
		}
	}
	return maxErr
}

// safeCorrelation divides by the outer product of standard deviations,
// leaving zero-variance rows/columns as 0 off-diagonal and 1 on the
// diagonal rather than propagating NaN.
func safeCorrelation(cov *mat.SymDense, m int) *mat.SymDense {
	stddev := make([]float64, m)
	for i := 0; i < m; i++ {
		stddev[i] = math.Sqrt(math.Max(cov.At(i, i), 0))
	}
	corr := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			if i == j {
				corr.SetSym(i, j, 1)
				continue
			}
			denom := stddev[i] * stddev[j]
			if denom == 0 {
				corr.SetSym(i, j, 0)
				continue
			}
			corr.SetSym(i, j, cov.At(i, j)/denom)
		}
	}
	return corr
}
