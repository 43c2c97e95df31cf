// Package pricing implements the pricer registry, FX resolver, and
// valuation engine (C8): mark-to-market of multi-currency portfolios via a
// pluggable pricer registry and an auditable FX conversion rule.
package pricing

import "fmt"

// PricingError is the base type every pricing failure implements, carrying
// structured context (asset, field, as_of, instrument_id) for the offending
// computation.
type PricingError struct {
	Kind         string
	AssetID      string
	Field        string
	AsOf         string
	InstrumentID string
	Message      string
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("pricing: %s: %s (asset=%s field=%s as_of=%s instrument=%s)", e.Kind, e.Message, e.AssetID, e.Field, e.AsOf, e.InstrumentID)
}

func newPricingError(kind, message string) *PricingError {
	return &PricingError{Kind: kind, Message: message}
}

// MissingPriceError: a required market-data value was not present.
func MissingPriceError(assetID, field, asOf, instrumentID string) *PricingError {
	e := newPricingError("MissingPriceError", "required price not found in market data view")
	e.AssetID, e.Field, e.AsOf, e.InstrumentID = assetID, field, asOf, instrumentID
	return e
}

// MissingFxRateError: FX.EURUSD or another required FX series was missing.
func MissingFxRateError(assetID, asOf string) *PricingError {
	e := newPricingError("MissingFxRateError", "required FX rate not found")
	e.AssetID, e.AsOf = assetID, asOf
	return e
}

// UnsupportedCurrencyError: a currency outside the MVP {EUR, USD} guardrail.
func UnsupportedCurrencyError(currency string) *PricingError {
	e := newPricingError("UnsupportedCurrencyError", fmt.Sprintf("currency %q is outside the supported set {EUR, USD}", currency))
	return e
}

// NonFiniteInputError: a NaN/Inf value reached a pricer.
func NonFiniteInputError(field, instrumentID string) *PricingError {
	e := newPricingError("NonFiniteInputError", "value is not finite")
	e.Field, e.InstrumentID = field, instrumentID
	return e
}

// InvalidFxRateError: FX rate present but non-positive or non-finite.
func InvalidFxRateError(assetID, asOf string) *PricingError {
	e := newPricingError("InvalidFxRateError", "FX rate is non-positive or non-finite")
	e.AssetID, e.AsOf = assetID, asOf
	return e
}

// MissingPricerError: no pricer registered for a spec kind in use.
func MissingPricerError(kind string) *PricingError {
	e := newPricingError("MissingPricerError", fmt.Sprintf("no pricer registered for kind %q", kind))
	return e
}
