package risk

import (
	"sort"

	"github.com/aristath/quantlab-go/internal/modules/pricing/valuation"
)

// AssetExposure is one asset's weight in the exposure decomposition.
type AssetExposure struct {
	AssetID string
	Weight  float64
}

// CurrencyExposure is one currency's weight in the currency decomposition.
type CurrencyExposure struct {
	Currency string
	Weight   float64
}

// AssetExposuresFromValuation implements spec.md section 4.9 step 10:
// weights by market_data_id, normalized to 1 when total notional is
// positive, otherwise reported as raw notionals with a warning. Positions
// lacking a market_data_id (e.g. cash) are excluded with a warning.
func AssetExposuresFromValuation(pv valuation.PortfolioValuation) ([]AssetExposure, []Warning) {
	notionalByAsset := make(map[string]float64)
	var warnings []Warning
	for _, pos := range pv.Positions {
		if pos.AssetIDUsed == "" {
			warnings = append(warnings, Warning{
				Code:    "EXPOSURE_MISSING_MARKET_DATA_ID",
				Message: "position valuation missing market_data_id; excluded from asset exposure",
				Context: map[string]any{"instrument_id": pos.InstrumentID},
			})
			continue
		}
		notionalByAsset[pos.AssetIDUsed] += pos.NotionalBase
	}
	return normalizeAssetExposures(notionalByAsset, &warnings), warnings
}

func normalizeAssetExposures(notionalByAsset map[string]float64, warnings *[]Warning) []AssetExposure {
	total := 0.0
	for _, n := range notionalByAsset {
		total += n
	}

	exposures := make([]AssetExposure, 0, len(notionalByAsset))
	if total > 0 {
		for assetID, n := range notionalByAsset {
			exposures = append(exposures, AssetExposure{AssetID: assetID, Weight: n / total})
		}
	} else {
		for assetID, n := range notionalByAsset {
			exposures = append(exposures, AssetExposure{AssetID: assetID, Weight: n})
		}
		if len(notionalByAsset) > 0 {
			*warnings = append(*warnings, Warning{
				Code:    "EXPOSURE_NOT_NORMALIZED",
				Message: "asset exposures could not be normalized; weights represent raw notionals",
				Context: map[string]any{"total_notional": total},
			})
		}
	}
	sort.Slice(exposures, func(i, j int) bool { return exposures[i].AssetID < exposures[j].AssetID })
	return exposures
}

// CurrencyExposuresFromValuation implements spec.md section 4.9 step 10's
// currency decomposition: no cross-currency aggregation beyond what the
// valuation's breakdown_by_currency already provides.
func CurrencyExposuresFromValuation(pv valuation.PortfolioValuation) ([]CurrencyExposure, []Warning) {
	notionalByCcy := make(map[string]float64, len(pv.BreakdownByCcy))
	for ccy, bd := range pv.BreakdownByCcy {
		notionalByCcy[ccy] += bd.NotionalBase
	}

	total := 0.0
	for _, n := range notionalByCcy {
		total += n
	}

	var warnings []Warning
	exposures := make([]CurrencyExposure, 0, len(notionalByCcy))
	if total > 0 {
		for ccy, n := range notionalByCcy {
			exposures = append(exposures, CurrencyExposure{Currency: ccy, Weight: n / total})
		}
	} else {
		for ccy, n := range notionalByCcy {
			exposures = append(exposures, CurrencyExposure{Currency: ccy, Weight: n})
		}
		if len(notionalByCcy) > 0 {
			warnings = append(warnings, Warning{
				Code:    "EXPOSURE_NOT_NORMALIZED",
				Message: "currency exposures could not be normalized; weights represent raw notionals",
				Context: map[string]any{"total_notional": total},
			})
		}
	}
	sort.Slice(exposures, func(i, j int) bool { return exposures[i].Currency < exposures[j].Currency })
	return exposures, warnings
}
