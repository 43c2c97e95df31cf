package pricers

import (
	"time"

	"github.com/aristath/quantlab-go/internal/modules/pricing"
)

// CashPricer prices cash positions: unit_price = 1, no market-data lookup.
type CashPricer struct{}

func (CashPricer) Kind() string { return "cash" }

// Price implements Pricer.
func (CashPricer) Price(_ pricing.MarketDataView, _ string, _ string, quantity float64, _ time.Time, _ map[string]any) (PriceResult, error) {
	return PriceResult{NotionalNative: quantity, UnitPrice: 1}, nil
}
