package stress

import "math"

func requireFinite(value float64, label string) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, newInputError(label+" must be finite", map[string]any{"value": value})
	}
	return value, nil
}

// ApplyShockToPrice applies a single shock to a price under the given
// convention. MULT_RETURN computes P' = P*(1+shock); MULT_FACTOR computes
// P' = P*shock directly. allowNegative permits instruments without a
// positivity constraint (none in the MVP instrument set, but kept for
// parity with the wider stress model).
func ApplyShockToPrice(price, shock float64, convention ShockConvention, allowNegative bool) (float64, error) {
	if _, err := requireFinite(price, "price"); err != nil {
		return 0, err
	}
	if _, err := requireFinite(shock, "shock"); err != nil {
		return 0, err
	}
	if !allowNegative && price < 0 {
		return 0, newInputError("price must be non-negative", map[string]any{"price": price})
	}

	var shocked float64
	switch convention {
	case MultReturn:
		shocked = price * (1.0 + shock)
	case MultFactor:
		shocked = price * shock
	default:
		return 0, newInputError("unknown shock convention", map[string]any{"shock_convention": string(convention)})
	}

	if _, err := requireFinite(shocked, "shocked_price"); err != nil {
		return 0, err
	}
	if !allowNegative && shocked < 0 {
		return 0, newInputError("shocked_price must be non-negative", map[string]any{
			"price": price, "shock": shock, "shocked_price": shocked,
		})
	}
	return shocked, nil
}

// ApplyShocksToPrices applies a scenario's shock vector to a base-price map,
// honoring policy for assets the vector doesn't mention. With
// ZERO_WITH_WARNING, assets present in basePrices but absent from
// shockVector pass through unshocked and a warning is emitted; ERROR raises
// an InputError in that case. Only assets present in basePrices are
// evaluated -- a shock entry for an asset outside the requested set is
// silently irrelevant (the caller controls which assets it cares about by
// the set of basePrices it supplies).
func ApplyShocksToPrices(basePrices map[string]float64, shockVector map[string]float64, convention ShockConvention, policy MissingShockPolicy) (map[string]float64, []Warning, error) {
	if len(basePrices) == 0 {
		return nil, nil, newInputError("prices must be non-empty", nil)
	}

	shocked := make(map[string]float64, len(basePrices))
	var warnings []Warning
	for assetID, price := range basePrices {
		shock, ok := shockVector[assetID]
		if !ok {
			switch policy {
			case MissingShockError:
				return nil, nil, newInputError("shock missing for asset", map[string]any{"market_data_id": assetID})
			default:
				warnings = append(warnings, Warning{
					Code:    "MISSING_SHOCK_ZERO",
					Message: "no shock supplied for asset; treated as unshocked",
					Context: map[string]any{"market_data_id": assetID},
				})
				shocked[assetID] = price
				continue
			}
		}
		value, err := ApplyShockToPrice(price, shock, convention, false)
		if err != nil {
			return nil, nil, err
		}
		shocked[assetID] = value
	}
	return shocked, warnings, nil
}
