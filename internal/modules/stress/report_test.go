package stress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/instruments"
)

func TestReportEnvelopeCanonicalJSONRoundTrips(t *testing.T) {
	aaplID := mustInstrumentID(t, "EQ.AAPL")
	aaplMdID := mustMarketDataID(t, "AAPL")
	aapl, err := instruments.NewInstrument(1, aaplID, instruments.TypeEquity, &aaplMdID, nil, instruments.EquitySpec{Tradable: true}, nil)
	require.NoError(t, err)
	pos, err := instruments.NewPosition(aaplID, 10)
	require.NoError(t, err)

	scenario := Scenario{
		ScenarioID:      "S1",
		Name:            "selloff",
		Type:            TypeParametricShock,
		ShockConvention: MultReturn,
		ShockVector:     map[string]float64{"AAPL": -0.1},
	}
	scenarioSet := ScenarioSet{
		AsOf:               time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
		MissingShockPolicy: MissingShockZeroWithWarning,
		Scenarios:          []Scenario{scenario},
	}

	engine := &Engine{}
	rep, err := engine.Run(context.Background(), scenarioSet, Input{
		Positions:       []instruments.Position{pos},
		InstrumentsByID: map[schema.InstrumentId]instruments.Instrument{aaplID: aapl},
		BasePrices:      map[string]float64{"AAPL": 200},
		Nav:             2000,
	})
	require.NoError(t, err)

	envelope := rep.Envelope()
	raw, err := envelope.CanonicalJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}
