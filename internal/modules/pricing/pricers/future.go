package pricers

import (
	"math"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/pricing"
)

// FuturePricer prices linear-MTM-only future positions:
// notional_native = quantity * unit_price * multiplier. No margining or
// roll modeling (explicit non-goal per spec.md section 1).
type FuturePricer struct{}

func (FuturePricer) Kind() string { return "future" }

// Price implements Pricer. params must carry "multiplier" (float64).
func (FuturePricer) Price(marketData pricing.MarketDataView, assetID, currency string, quantity float64, asOf time.Time, params map[string]any) (PriceResult, error) {
	multiplierAny, ok := params["multiplier"]
	if !ok {
		return PriceResult{}, pricing.NonFiniteInputError("multiplier", assetID)
	}
	multiplier, ok := multiplierAny.(float64)
	if !ok || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return PriceResult{}, pricing.NonFiniteInputError("multiplier", assetID)
	}

	point, err := marketData.GetPoint(assetID, "close", asOf)
	if err != nil {
		return PriceResult{}, pricing.MissingPriceError(assetID, "close", asOf.Format("2006-01-02"), "")
	}
	if math.IsNaN(point.Value) || math.IsInf(point.Value, 0) {
		return PriceResult{}, pricing.NonFiniteInputError("close", assetID)
	}

	return PriceResult{
		NotionalNative: quantity * point.Value * multiplier,
		AssetIDUsed:    assetID,
		FieldUsed:      "close",
		UnitPrice:      point.Value,
		Warnings:       point.Meta,
	}, nil
}
