// Package pricers implements the per-kind pricer implementations (cash,
// equity/index, future) the pricing engine's registry dispatches to.
package pricers

import (
	"time"

	"github.com/aristath/quantlab-go/internal/modules/pricing"
)

// PriceResult is what a pricer produces for one position: the native
// notional plus the market-data inputs used, for lineage.
type PriceResult struct {
	NotionalNative float64
	AssetIDUsed    string
	FieldUsed      string
	UnitPrice      float64
	Warnings       []string
}

// Pricer prices one position given its spec's kind-specific parameters.
type Pricer interface {
	Kind() string
	Price(marketData pricing.MarketDataView, assetID, currency string, quantity float64, asOf time.Time, params map[string]any) (PriceResult, error)
}

// Registry maps spec.kind -> Pricer.
type Registry struct {
	pricers map[string]Pricer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pricers: make(map[string]Pricer)}
}

// Register adds p under p.Kind(), overwriting any prior registration for
// that kind.
func (r *Registry) Register(p Pricer) {
	r.pricers[p.Kind()] = p
}

// Resolve returns the pricer registered for kind, or *pricing.PricingError
// (MissingPricerError) if none is registered.
func (r *Registry) Resolve(kind string) (Pricer, error) {
	p, ok := r.pricers[kind]
	if !ok {
		return nil, pricing.MissingPricerError(kind)
	}
	return p, nil
}

// RegisteredKinds returns the kinds with a registered pricer.
func (r *Registry) RegisteredKinds() []string {
	kinds := make([]string, 0, len(r.pricers))
	for k := range r.pricers {
		kinds = append(kinds, k)
	}
	return kinds
}
