package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportEnvelopeCanonicalJSONRoundTrips(t *testing.T) {
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
	rep, err := engine.Run(context.Background(), req, Input{Bundle: bundle, PortfolioReturns: []float64{0.01, -0.02, 0.015}})
	require.NoError(t, err)

	envelope := rep.Envelope()
	raw, err := envelope.CanonicalJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	hash, err := envelope.ContentHash()
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}
