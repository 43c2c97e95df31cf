package instruments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

func mustInstrumentID(t *testing.T, s string) schema.InstrumentId {
	t.Helper()
	id, err := schema.NewInstrumentId(s)
	require.NoError(t, err)
	return id
}

func TestNewPortfolioRejectsDuplicatePositions(t *testing.T) {
	id := mustInstrumentID(t, "EQ.AAPL")
	p1, err := NewPosition(id, 10)
	require.NoError(t, err)
	p2, err := NewPosition(id, 5)
	require.NoError(t, err)

	_, err = NewPortfolio(1, time.Now().UTC(), []Position{p1, p2}, nil, nil)
	assert.Error(t, err)
}

func TestNewPositionRejectsNegativeQuantity(t *testing.T) {
	id := mustInstrumentID(t, "EQ.AAPL")
	_, err := NewPosition(id, -1)
	assert.Error(t, err)
}

func TestPortfolioCanonicalOrderingIsInputOrderIndependent(t *testing.T) {
	aapl := mustInstrumentID(t, "EQ.AAPL")
	msft := mustInstrumentID(t, "EQ.MSFT")
	posAAPL, _ := NewPosition(aapl, 10)
	posMSFT, _ := NewPosition(msft, 5)
	asOf := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	cashA := map[schema.Currency]float64{"usd": 100, "eur": 50}
	pA, err := NewPortfolio(1, asOf, []Position{posAAPL, posMSFT}, cashA, nil)
	require.NoError(t, err)

	cashB := map[schema.Currency]float64{"eur": 50, "usd": 100}
	pB, err := NewPortfolio(1, asOf, []Position{posMSFT, posAAPL}, cashB, nil)
	require.NoError(t, err)

	hashA, err := pA.SnapshotHash()
	require.NoError(t, err)
	hashB, err := pB.SnapshotHash()
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
}

func TestNewInstrumentRequiresMarketDataIDForTradableEquity(t *testing.T) {
	id := mustInstrumentID(t, "EQ.AAPL")
	_, err := NewInstrument(1, id, TypeEquity, nil, nil, EquitySpec{Tradable: true}, nil)
	assert.Error(t, err)
}

func TestNewInstrumentRequiresCurrencyForCash(t *testing.T) {
	id := mustInstrumentID(t, "CASH.USD")
	_, err := NewInstrument(1, id, TypeCash, nil, nil, CashSpec{}, nil)
	assert.Error(t, err)
}

func TestNewInstrumentRejectsMismatchedKind(t *testing.T) {
	id := mustInstrumentID(t, "EQ.AAPL")
	mdid, err := schema.NewMarketDataId("AAPL.XNAS")
	require.NoError(t, err)
	_, err = NewInstrument(1, id, TypeCash, &mdid, nil, EquitySpec{Tradable: true}, nil)
	assert.Error(t, err)
}

func TestNewInstrumentFutureRequiresPositiveMultiplierAndExpiry(t *testing.T) {
	id := mustInstrumentID(t, "FUT.ES")
	mdid, err := schema.NewMarketDataId("ES.CME")
	require.NoError(t, err)
	_, err = NewInstrument(1, id, TypeFuture, &mdid, nil, FutureSpec{Multiplier: 0}, nil)
	assert.Error(t, err)

	_, err = NewInstrument(1, id, TypeFuture, &mdid, nil, FutureSpec{Multiplier: 50, Expiry: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)}, nil)
	assert.NoError(t, err)
}
