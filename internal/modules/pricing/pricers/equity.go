package pricers

import (
	"math"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/pricing"
)

// EquityPricer prices equity and tradable-index positions:
// unit_price = MarketDataView.GetValue(market_data_id, "close", as_of).
type EquityPricer struct {
	kind string
}

// NewEquityPricer returns a pricer registered under kind ("equity" or
// "index"); both share identical pricing logic.
func NewEquityPricer(kind string) EquityPricer { return EquityPricer{kind: kind} }

func (p EquityPricer) Kind() string { return p.kind }

// Price implements Pricer.
func (p EquityPricer) Price(marketData pricing.MarketDataView, assetID, currency string, quantity float64, asOf time.Time, _ map[string]any) (PriceResult, error) {
	if assetID == "" {
		return PriceResult{}, pricing.MissingPriceError(assetID, "close", asOf.Format("2006-01-02"), "")
	}
	if currency == "" {
		return PriceResult{}, pricing.NonFiniteInputError("currency", assetID)
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return PriceResult{}, pricing.NonFiniteInputError("quantity", assetID)
	}

	point, err := marketData.GetPoint(assetID, "close", asOf)
	if err != nil {
		return PriceResult{}, pricing.MissingPriceError(assetID, "close", asOf.Format("2006-01-02"), "")
	}
	if math.IsNaN(point.Value) || math.IsInf(point.Value, 0) {
		return PriceResult{}, pricing.NonFiniteInputError("close", assetID)
	}

	return PriceResult{
		NotionalNative: quantity * point.Value,
		AssetIDUsed:    assetID,
		FieldUsed:      "close",
		UnitPrice:      point.Value,
		Warnings:       point.Meta,
	}, nil
}
