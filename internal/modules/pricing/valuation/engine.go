// Package valuation implements the ValuationEngine (C8): mark-to-market a
// Portfolio by resolving a Pricer per position, converting native notional
// to base currency via FxRateResolver, and aggregating NAV with full
// lineage per spec.md section 4.8.
package valuation

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/instruments"
	"github.com/aristath/quantlab-go/internal/modules/pricing"
	"github.com/aristath/quantlab-go/internal/modules/pricing/pricers"
)

// PositionValuation records the full audit trail for one priced position.
type PositionValuation struct {
	InstrumentID    string
	AssetIDUsed     string
	FieldUsed       string
	UnitPrice       float64
	Quantity        float64
	NotionalNative  float64
	NativeCurrency  string
	NotionalBase    float64
	FxAssetIDUsed   string
	FxInverted      bool
	FxRateEffective float64
	Warnings        []string
}

// CurrencyBreakdown is one currency's contribution to portfolio NAV.
type CurrencyBreakdown struct {
	NotionalNative float64
	NotionalBase   float64
}

// PortfolioValuation is the ValuationEngine's output: NAV plus per-position
// and per-currency detail, all traceable back to market-data inputs.
type PortfolioValuation struct {
	AsOf           time.Time
	BaseCurrency   string
	NavBase        float64
	Positions      []PositionValuation
	BreakdownByCcy map[string]CurrencyBreakdown
	Warnings       []string
}

// PositionParams supplies pricer-specific inputs the engine cannot derive
// from the Instrument/Position pair alone (e.g. a future's multiplier),
// keyed by instrument_id.
type PositionParams map[string]map[string]any

// Engine mark-to-markets a portfolio using a pricer registry and an FX
// resolver.
type Engine struct {
	Registry *pricers.Registry
	Fx       *pricing.FxRateResolver
}

// ValuePortfolio implements spec.md section 4.8: for each position resolve
// a pricer, compute native notional, compute the effective FX rate, compute
// notional_base, then aggregate NAV and a per-currency breakdown. Cash
// balances are converted and folded into NAV the same way as priced
// positions.
func (e *Engine) ValuePortfolio(portfolio instruments.Portfolio, instrumentsByID map[schema.InstrumentId]instruments.Instrument, baseCurrency string, params PositionParams) (PortfolioValuation, error) {
	asOf := portfolio.AsOf()
	result := PortfolioValuation{
		AsOf:           asOf,
		BaseCurrency:   baseCurrency,
		BreakdownByCcy: make(map[string]CurrencyBreakdown),
	}

	warningSet := make(map[string]struct{})
	var navTerms []float64

	positions := append([]instruments.Position(nil), portfolio.Positions()...)
	sort.Slice(positions, func(i, j int) bool { return positions[i].InstrumentID < positions[j].InstrumentID })

	for _, pos := range positions {
		instrument, ok := instrumentsByID[pos.InstrumentID]
		if !ok {
			return PortfolioValuation{}, fmt.Errorf("valuation: no instrument definition for %q", pos.InstrumentID)
		}

		pricer, err := e.Registry.Resolve(string(instrument.Type()))
		if err != nil {
			return PortfolioValuation{}, err
		}

		assetID := ""
		if instrument.MarketDataID() != nil {
			assetID = instrument.MarketDataID().String()
		}
		currency := ""
		if instrument.Currency() != nil {
			currency = instrument.Currency().String()
		}

		priceResult, err := pricer.Price(e.Fx.MarketData, assetID, currency, pos.Quantity, asOf, params[string(pos.InstrumentID)])
		if err != nil {
			return PortfolioValuation{}, err
		}

		nativeCurrency := currency
		if nativeCurrency == "" {
			nativeCurrency = baseCurrency
		}

		fx, err := e.effectiveRate(nativeCurrency, baseCurrency, asOf)
		if err != nil {
			return PortfolioValuation{}, err
		}

		notionalBase := priceResult.NotionalNative * fx.Rate

		result.Positions = append(result.Positions, PositionValuation{
			InstrumentID:    string(pos.InstrumentID),
			AssetIDUsed:     priceResult.AssetIDUsed,
			FieldUsed:       priceResult.FieldUsed,
			UnitPrice:       priceResult.UnitPrice,
			Quantity:        pos.Quantity,
			NotionalNative:  priceResult.NotionalNative,
			NativeCurrency:  nativeCurrency,
			NotionalBase:    notionalBase,
			FxAssetIDUsed:   fx.AssetIDUsed,
			FxInverted:      fx.Inverted,
			FxRateEffective: fx.Rate,
			Warnings:        priceResult.Warnings,
		})
		for _, w := range priceResult.Warnings {
			warningSet[w] = struct{}{}
		}

		bd := result.BreakdownByCcy[nativeCurrency]
		bd.NotionalNative += priceResult.NotionalNative
		bd.NotionalBase += notionalBase
		result.BreakdownByCcy[nativeCurrency] = bd

		navTerms = append(navTerms, notionalBase)
	}

	cashCurrencies := make([]string, 0, len(portfolio.Cash()))
	for ccy := range portfolio.Cash() {
		cashCurrencies = append(cashCurrencies, string(ccy))
	}
	sort.Strings(cashCurrencies)

	for _, ccyStr := range cashCurrencies {
		amount := portfolio.Cash()[schema.Currency(ccyStr)]

		fx, err := e.effectiveRate(ccyStr, baseCurrency, asOf)
		if err != nil {
			return PortfolioValuation{}, err
		}
		notionalBase := amount * fx.Rate

		bd := result.BreakdownByCcy[ccyStr]
		bd.NotionalNative += amount
		bd.NotionalBase += notionalBase
		result.BreakdownByCcy[ccyStr] = bd

		navTerms = append(navTerms, notionalBase)
	}

	result.NavBase = floats.Sum(navTerms)

	for w := range warningSet {
		result.Warnings = append(result.Warnings, w)
	}
	sort.Strings(result.Warnings)

	return result, nil
}

func (e *Engine) effectiveRate(native, base string, asOf time.Time) (pricing.FxResolution, error) {
	if native == base {
		return pricing.FxResolution{Rate: 1}, nil
	}
	return e.Fx.EffectiveRate(native, base, asOf)
}
