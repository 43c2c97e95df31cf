// Package formulas wraps the gonum/stat routines the risk engine's own
// idiom reaches for repeatedly, so a single sample-window shape is used
// consistently across volatility, tracking error, and covariance.
package formulas

import "gonum.org/v1/gonum/stat"

// StdDev returns the sample standard deviation (n-1) of an unweighted
// series, 0 for an empty series.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Covariance returns the unweighted sample covariance (n-1) between two
// equal-length series, 0 if the lengths mismatch or either is empty.
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}
