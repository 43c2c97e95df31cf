package instruments

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

// Position is a long-only (MVP) holding of one instrument.
type Position struct {
	InstrumentID schema.InstrumentId
	Quantity     float64
}

// NewPosition validates quantity is finite and non-negative (MVP is
// long-only per spec.md section 3).
func NewPosition(instrumentID schema.InstrumentId, quantity float64) (Position, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return Position{}, fmt.Errorf("position %s: quantity must be finite", instrumentID)
	}
	if quantity < 0 {
		return Position{}, fmt.Errorf("position %s: quantity must be >= 0 (MVP is long-only)", instrumentID)
	}
	return Position{InstrumentID: instrumentID, Quantity: quantity}, nil
}

func (p Position) canonicalPayload() map[string]any {
	return map[string]any{
		"instrument_id": string(p.InstrumentID),
		"quantity":      p.Quantity,
	}
}

// Portfolio is an immutable, validated snapshot of positions and cash
// balances as of a given instant.
type Portfolio struct {
	schemaVersion int
	asOf          time.Time
	positions     []Position
	cash          map[schema.Currency]float64
	meta          map[string]any
}

// NewPortfolio validates and constructs a Portfolio per spec.md section 3:
//   - as_of must carry an explicit UTC offset (non-zero Location, not the
//     zero time.Time, which Go has no "naive" concept for -- the caller is
//     required to pass a time.Time already tied to some offset)
//   - positions form a set keyed by instrument_id; duplicates are rejected
//   - canonical order: positions sorted by instrument_id; cash keys
//     uppercased and sorted
//   - cash balances must be finite (negative allowed)
func NewPortfolio(schemaVersion int, asOf time.Time, positions []Position, cash map[schema.Currency]float64, meta map[string]any) (Portfolio, error) {
	verr := &schema.ValidationError{}

	if asOf.IsZero() {
		verr.Add("as_of", "must be set with an explicit UTC offset")
	}

	seen := make(map[schema.InstrumentId]struct{}, len(positions))
	sortedPositions := make([]Position, len(positions))
	copy(sortedPositions, positions)
	for _, p := range sortedPositions {
		if _, dup := seen[p.InstrumentID]; dup {
			verr.Add("positions", fmt.Sprintf("duplicate instrument_id %q", p.InstrumentID))
			continue
		}
		seen[p.InstrumentID] = struct{}{}
	}
	sort.Slice(sortedPositions, func(i, j int) bool {
		return sortedPositions[i].InstrumentID < sortedPositions[j].InstrumentID
	})

	normalizedCash := make(map[schema.Currency]float64, len(cash))
	for ccy, amount := range cash {
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			verr.Add("cash", fmt.Sprintf("amount for %q must be finite", ccy))
			continue
		}
		upper, err := schema.NewCurrency(string(ccy))
		if err != nil {
			verr.Add("cash", err.Error())
			continue
		}
		normalizedCash[upper] = amount
	}

	if verr.HasErrors() {
		return Portfolio{}, verr
	}

	return Portfolio{
		schemaVersion: schemaVersion,
		asOf:          asOf,
		positions:     sortedPositions,
		cash:          normalizedCash,
		meta:          meta,
	}, nil
}

func (p Portfolio) AsOf() time.Time         { return p.asOf }
func (p Portfolio) Positions() []Position   { return p.positions }
func (p Portfolio) Cash() map[schema.Currency]float64 { return p.cash }

// CanonicalPayload implements identity.CanonicalPayload, returning positions
// sorted by instrument_id and cash keys uppercased and sorted.
func (p Portfolio) CanonicalPayload() map[string]any {
	positions := make([]any, len(p.positions))
	for i, pos := range p.positions {
		positions[i] = pos.canonicalPayload()
	}

	cashKeys := make([]string, 0, len(p.cash))
	for ccy := range p.cash {
		cashKeys = append(cashKeys, string(ccy))
	}
	sort.Strings(cashKeys)
	cash := make(map[string]any, len(p.cash))
	for _, k := range cashKeys {
		cash[k] = p.cash[schema.Currency(k)]
	}

	payload := map[string]any{
		"schema_version": p.schemaVersion,
		"as_of":          identity.FormatTimestampUTC(p.asOf),
		"positions":      positions,
		"cash":           cash,
	}
	if p.meta != nil {
		payload["meta"] = p.meta
	}
	return payload
}

// SnapshotHash returns content_hash(Portfolio), the lineage identity used by
// risk/stress reports.
func (p Portfolio) SnapshotHash() (string, error) {
	return identity.ContentHashOf(p)
}
