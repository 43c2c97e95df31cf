package pricing

import (
	"math"
	"time"
)

// FxEurUsdAssetID is the canonical FX series: USD per EUR.
const FxEurUsdAssetID = "FX.EURUSD"

// SupportedCurrencies is the MVP guardrail: Policy B only resolves EUR/USD.
var SupportedCurrencies = map[string]bool{"EUR": true, "USD": true}

// FxResolution is the full audit trail of one effective-rate computation.
type FxResolution struct {
	Rate          float64
	AssetIDUsed   string // empty if native == base (no FX needed)
	Inverted      bool
}

// FxRateResolver implements Policy B (MVP): the single canonical series
// FX.EURUSD = USD per EUR, with explicit inversion, no triangulation.
type FxRateResolver struct {
	MarketData MarketDataView
}

// EffectiveRate resolves the rate to convert a native-currency amount into
// base currency at asOf.
func (f *FxRateResolver) EffectiveRate(native, base string, asOf time.Time) (FxResolution, error) {
	if !SupportedCurrencies[native] {
		return FxResolution{}, UnsupportedCurrencyError(native)
	}
	if !SupportedCurrencies[base] {
		return FxResolution{}, UnsupportedCurrencyError(base)
	}

	if native == base {
		return FxResolution{Rate: 1}, nil
	}

	if !f.MarketData.HasValue(FxEurUsdAssetID, "close", asOf) {
		return FxResolution{}, MissingFxRateError(FxEurUsdAssetID, asOf.Format("2006-01-02"))
	}
	eurusd, err := f.MarketData.GetValue(FxEurUsdAssetID, "close", asOf)
	if err != nil {
		return FxResolution{}, MissingFxRateError(FxEurUsdAssetID, asOf.Format("2006-01-02"))
	}
	if math.IsNaN(eurusd) || math.IsInf(eurusd, 0) || eurusd <= 0 {
		return FxResolution{}, InvalidFxRateError(FxEurUsdAssetID, asOf.Format("2006-01-02"))
	}

	if native == "EUR" && base == "USD" {
		return FxResolution{Rate: eurusd, AssetIDUsed: FxEurUsdAssetID}, nil
	}
	// native == "USD" && base == "EUR"
	return FxResolution{Rate: 1 / eurusd, AssetIDUsed: FxEurUsdAssetID, Inverted: true}, nil
}
