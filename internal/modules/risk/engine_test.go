package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRunStaticWeightsProducesReportWithAttribution(t *testing.T) {
	bundle := PriceBundle{
		Dates: []time.Time{
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		},
		AssetIDs: []string{"AAA", "BBB"},
		Prices: [][]float64{
			{100, 50},
			{101, 49},
			{99, 51},
			{102, 50.5},
			{103, 50},
			{101, 51},
		},
	}

	lookback := len(bundle.Dates)
	req := Request{
		AsOf:                bundle.Dates[len(bundle.Dates)-1],
		Window:              Window{LookbackTradingDays: &lookback},
		ReturnDefinition:    ReturnSimple,
		AnnualizationFactor: 252,
		ConfidenceLevels:    []float64{0.95},
		InputMode:           InputStaticWeightsXAssetReturns,
		MissingDataPolicy:   MissingError,
		CovarianceEstimator: SampleCovarianceEstimator,
		Weights:             map[string]float64{"AAA": 0.6, "BBB": 0.4},
	}

	engine := &Engine{}
	report, err := engine.Run(context.Background(), req, Input{Bundle: bundle, PortfolioMarketDataIDs: []string{"AAA", "BBB"}})
	require.NoError(t, err)

	require.NotNil(t, report.Metrics.PortfolioVolAnnualized)
	require.NotNil(t, report.Metrics.MaxDrawdown)
	assert.LessOrEqual(t, *report.Metrics.MaxDrawdown, 0.0)
	require.Contains(t, report.Metrics.Var, 0.95)
	require.Contains(t, report.Metrics.Es, 0.95)
	assert.GreaterOrEqual(t, report.Metrics.Es[0.95], report.Metrics.Var[0.95])

	require.NotEmpty(t, report.Attribution.VarianceContributions)
	sum := 0.0
	for _, c := range report.Attribution.VarianceContributions {
		sum += c.Component
	}
	assert.InDelta(t, report.Attribution.PortfolioVariance, sum, 1e-9)

	var sawApproxWarning bool
	for _, w := range report.Warnings {
		if w.Code == "STATIC_WEIGHTS_APPROXIMATION" {
			sawApproxWarning = true
		}
	}
	assert.True(t, sawApproxWarning)

	assert.NotEmpty(t, report.InputLineage.RequestHash)
}

func TestEngineRunPortfolioReturnsModeRequiresSeries(t *testing.T) {
	bundle := priceBundleFixture()
	lookback := len(bundle.Dates)
	req := Request{
		AsOf:                bundle.Dates[len(bundle.Dates)-1],
		Window:              Window{LookbackTradingDays: &lookback},
		ReturnDefinition:    ReturnSimple,
		AnnualizationFactor: 252,
		ConfidenceLevels:    []float64{0.95},
		InputMode:           InputPortfolioReturns,
		MissingDataPolicy:   MissingError,
	}
	engine := &Engine{}
	_, err := engine.Run(context.Background(), req, Input{Bundle: bundle})
	require.Error(t, err)
}

func TestEngineRunRejectsPortfolioAssetMissingFromBundle(t *testing.T) {
	bundle := priceBundleFixture()
	lookback := len(bundle.Dates)
	req := Request{
		AsOf:                bundle.Dates[len(bundle.Dates)-1],
		Window:              Window{LookbackTradingDays: &lookback},
		ReturnDefinition:    ReturnSimple,
		AnnualizationFactor: 252,
		ConfidenceLevels:    []float64{0.95},
		InputMode:           InputPortfolioReturns,
		MissingDataPolicy:   MissingError,
	}
	engine := &Engine{}
	_, err := engine.Run(context.Background(), req, Input{
		Bundle:                 bundle,
		PortfolioReturns:       []float64{0.01, -0.02, 0.015},
		PortfolioMarketDataIDs: []string{"AAA", "ZZZ"},
	})
	require.Error(t, err)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestEngineRunRejectsInconsistentWindow(t *testing.T) {
	bundle := priceBundleFixture()
	req := Request{
		AsOf:                bundle.Dates[len(bundle.Dates)-1],
		ReturnDefinition:    ReturnSimple,
		AnnualizationFactor: 252,
		ConfidenceLevels:    []float64{0.95},
		InputMode:           InputPortfolioReturns,
		MissingDataPolicy:   MissingError,
	}
	engine := &Engine{}
	_, err := engine.Run(context.Background(), req, Input{Bundle: bundle, PortfolioReturns: []float64{0.01, -0.02, 0.015}})
	require.Error(t, err)
}
