package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFixture() ReturnSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 5)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return ReturnSeries{
		Dates:    dates,
		AssetIDs: []string{"AAA", "BBB"},
		Returns: [][]float64{
			{0.01, 0.02},
			{-0.02, -0.01},
			{0.015, 0.005},
			{-0.005, 0.0},
			{0.02, 0.03},
		},
	}
}

func TestSampleCovarianceIsSymmetric(t *testing.T) {
	result, err := SampleCovariance(seriesFixture(), 252)
	require.NoError(t, err)
	assert.True(t, result.Diagnostics.IsSymmetric)
	assert.LessOrEqual(t, result.Diagnostics.SymmetryMaxError, 1e-9)
	assert.Equal(t, 5, result.Diagnostics.SampleSize)
}

func TestSafeCorrelationDiagonalIsOne(t *testing.T) {
	result, err := SampleCovariance(seriesFixture(), 252)
	require.NoError(t, err)
	for i := range result.AssetIDs {
		assert.InDelta(t, 1.0, result.Correlation.At(i, i), 1e-9)
	}
}

func TestSampleCovarianceRejectsTooFewObservations(t *testing.T) {
	series := ReturnSeries{
		AssetIDs: []string{"AAA"},
		Returns:  [][]float64{{0.01}},
	}
	_, err := SampleCovariance(series, 252)
	require.Error(t, err)
}

func TestVarianceAttributionContributionsSumToPortfolioVariance(t *testing.T) {
	cov, err := SampleCovariance(seriesFixture(), 252)
	require.NoError(t, err)

	weights := map[string]float64{"AAA": 0.6, "BBB": 0.4}
	attr, err := VarianceAttribution(cov, weights)
	require.NoError(t, err)

	sum := 0.0
	for _, c := range attr.Contributions {
		sum += c
	}
	assert.InDelta(t, attr.PortfolioVariance, sum, 1e-9)
}
