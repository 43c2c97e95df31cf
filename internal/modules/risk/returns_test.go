package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceBundleFixture() PriceBundle {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 4)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return PriceBundle{
		Dates:    dates,
		AssetIDs: []string{"AAA"},
		Prices: [][]float64{
			{100},
			{110},
			{99},
			{108.9},
		},
	}
}

func TestBuildReturnsSimple(t *testing.T) {
	bundle := priceBundleFixture()
	asOf := bundle.Dates[len(bundle.Dates)-1]
	series, _, err := BuildReturns(bundle, asOf, ReturnSimple, MissingError)
	require.NoError(t, err)
	require.Len(t, series.Returns, 3)
	assert.InDelta(t, 0.10, series.Returns[0][0], 1e-9)
	assert.InDelta(t, -0.10, series.Returns[1][0], 1e-9)
	assert.InDelta(t, 0.10, series.Returns[2][0], 1e-9)
}

func TestBuildReturnsRejectsLookAhead(t *testing.T) {
	bundle := priceBundleFixture()
	asOf := bundle.Dates[len(bundle.Dates)-2]
	_, _, err := BuildReturns(bundle, asOf, ReturnSimple, MissingError)
	require.Error(t, err)
}

func TestBuildReturnsLogRejectsNonpositivePrices(t *testing.T) {
	bundle := priceBundleFixture()
	bundle.Prices[2][0] = -1
	asOf := bundle.Dates[len(bundle.Dates)-1]
	_, _, err := BuildReturns(bundle, asOf, ReturnLog, MissingError)
	require.Error(t, err)
}

func TestStaticWeightPortfolioReturnsWeightsAssetReturns(t *testing.T) {
	series := ReturnSeries{
		AssetIDs: []string{"AAA", "BBB"},
		Returns: [][]float64{
			{0.02, 0.04},
			{-0.01, 0.01},
		},
	}
	out, err := StaticWeightPortfolioReturns(series, map[string]float64{"AAA": 0.5, "BBB": 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.03, out[0], 1e-9)
	assert.InDelta(t, 0.0, out[1], 1e-9)
}

func TestStaticWeightPortfolioReturnsErrorsOnMissingWeight(t *testing.T) {
	series := ReturnSeries{
		AssetIDs: []string{"AAA", "BBB"},
		Returns:  [][]float64{{0.01, 0.02}},
	}
	_, err := StaticWeightPortfolioReturns(series, map[string]float64{"AAA": 1.0})
	require.Error(t, err)
}
