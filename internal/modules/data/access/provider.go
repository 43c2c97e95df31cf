package access

import (
	"context"
	"fmt"
	"time"
)

// PricePoint is one provider-native (date, value) observation for a single
// field.
type PricePoint struct {
	Date  time.Time
	Value float64
}

// PriceProvider fetches a raw daily series for one provider symbol and
// field over [start, end]. Implementations must not reindex, fill gaps, or
// validate -- that is the Service's job (spec.md section 4.6 step 4).
type PriceProvider interface {
	FetchDaily(ctx context.Context, providerSymbol, field string, start, end time.Time) ([]PricePoint, error)
}

// FixturePriceProvider is a map-backed PriceProvider for tests and local
// fixtures, grounded on ingest/fixtures.Adapter's file-per-dataset pattern
// but held in memory since access-layer tests exercise small synthetic
// series.
type FixturePriceProvider map[string][]PricePoint

// Key returns the FixturePriceProvider map key for a symbol/field pair.
func Key(providerSymbol, field string) string {
	return providerSymbol + "|" + field
}

// FetchDaily implements PriceProvider.
func (p FixturePriceProvider) FetchDaily(_ context.Context, providerSymbol, field string, start, end time.Time) ([]PricePoint, error) {
	all, ok := p[Key(providerSymbol, field)]
	if !ok {
		return nil, fmt.Errorf("access: no fixture data for symbol %q field %q", providerSymbol, field)
	}
	out := make([]PricePoint, 0, len(all))
	for _, pt := range all {
		if pt.Date.Before(start) || pt.Date.After(end) {
			continue
		}
		out = append(out, pt)
	}
	return out, nil
}
