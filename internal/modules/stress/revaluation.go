package stress

import (
	"github.com/aristath/quantlab-go/internal/modules/instruments"
)

func lookupPrice(prices map[string]float64, marketDataID, label string) (float64, error) {
	price, ok := prices[marketDataID]
	if !ok {
		return 0, newInputError("price missing for revaluation", map[string]any{
			"market_data_id": marketDataID,
			"price_set":      label,
		})
	}
	return requireFinite(price, label)
}

// LinearPositionPnl computes position-level P&L for the MVP's linear
// instruments (equity, index, future) under shocked prices; cash always
// returns zero in its own currency. Grounded on
// original_source's revaluation/linear.py.
func LinearPositionPnl(position instruments.Position, instrument instruments.Instrument, basePrices, shockedPrices map[string]float64) (float64, error) {
	if instrument.Type() == instruments.TypeCash {
		return 0.0, nil
	}

	marketDataID := instrument.MarketDataID()
	if marketDataID == nil {
		return 0, newInputError("market_data_id required for revaluation", map[string]any{
			"instrument_id": string(instrument.ID()),
		})
	}
	assetID := string(*marketDataID)

	basePrice, err := lookupPrice(basePrices, assetID, "base_prices")
	if err != nil {
		return 0, err
	}
	shockedPrice, err := lookupPrice(shockedPrices, assetID, "shocked_prices")
	if err != nil {
		return 0, err
	}
	deltaPrice := shockedPrice - basePrice
	quantity, err := requireFinite(position.Quantity, "quantity")
	if err != nil {
		return 0, err
	}

	switch instrument.Type() {
	case instruments.TypeEquity, instruments.TypeIndex:
		return quantity * deltaPrice, nil
	case instruments.TypeFuture:
		spec, ok := instrument.Spec().(instruments.FutureSpec)
		if !ok {
			return 0, newInputError("future instrument missing FutureSpec", map[string]any{
				"instrument_id": string(instrument.ID()),
			})
		}
		multiplier, err := requireFinite(spec.Multiplier, "multiplier")
		if err != nil {
			return 0, err
		}
		return quantity * multiplier * deltaPrice, nil
	default:
		return 0, newInputError("unsupported instrument type for linear revaluation", map[string]any{
			"instrument_id":   string(instrument.ID()),
			"instrument_type": string(instrument.Type()),
		})
	}
}
