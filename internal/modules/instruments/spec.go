// Package instruments implements the typed instrument/position/portfolio
// domain model (C7): tagged spec variants, long-only positions, and
// portfolio snapshots with the canonical ordering spec.md section 3 and
// section 4.7 require. It exposes construction and canonical serialization
// only -- no pricing or risk behavior lives here.
package instruments

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

// InstrumentType enumerates the supported instrument kinds.
type InstrumentType string

const (
	TypeEquity InstrumentType = "equity"
	TypeIndex  InstrumentType = "index"
	TypeCash   InstrumentType = "cash"
	TypeFuture InstrumentType = "future"
	TypeBond   InstrumentType = "bond"
)

// Spec is the tagged-variant interface every instrument spec implements.
// Kind() must equal the Instrument's InstrumentType.
type Spec interface {
	Kind() InstrumentType
	canonicalPayload() map[string]any
}

// EquitySpec describes a tradable single-name equity.
type EquitySpec struct {
	Tradable bool
}

func (EquitySpec) Kind() InstrumentType { return TypeEquity }
func (s EquitySpec) canonicalPayload() map[string]any {
	return map[string]any{"kind": string(TypeEquity), "tradable": s.Tradable}
}

// IndexSpec describes an index, which may or may not be directly tradable.
// A non-tradable index (IsTradable=false) permits a nil MarketDataId on the
// owning Instrument.
type IndexSpec struct {
	IsTradable bool
}

func (IndexSpec) Kind() InstrumentType { return TypeIndex }
func (s IndexSpec) canonicalPayload() map[string]any {
	return map[string]any{"kind": string(TypeIndex), "is_tradable": s.IsTradable}
}

// CashSpec describes a cash position in a single currency.
type CashSpec struct{}

func (CashSpec) Kind() InstrumentType { return TypeCash }
func (CashSpec) canonicalPayload() map[string]any {
	return map[string]any{"kind": string(TypeCash)}
}

// FutureSpec describes a linear-MTM future contract.
type FutureSpec struct {
	Multiplier float64
	Expiry     time.Time
}

func (FutureSpec) Kind() InstrumentType { return TypeFuture }
func (s FutureSpec) canonicalPayload() map[string]any {
	return map[string]any{
		"kind":       string(TypeFuture),
		"multiplier": s.Multiplier,
		"expiry":     identity.FormatDate(s.Expiry),
	}
}

// BondSpec describes a bond instrument (no curve construction; held for
// instrument-model completeness per spec.md's data model).
type BondSpec struct {
	Maturity time.Time
}

func (BondSpec) Kind() InstrumentType { return TypeBond }
func (s BondSpec) canonicalPayload() map[string]any {
	return map[string]any{
		"kind":     string(TypeBond),
		"maturity": identity.FormatDate(s.Maturity),
	}
}

// Instrument is an immutable, validated instrument definition.
type Instrument struct {
	schemaVersion  int
	instrumentID   schema.InstrumentId
	instrumentType InstrumentType
	marketDataID   *schema.MarketDataId
	currency       *schema.Currency
	spec           Spec
	meta           map[string]any
}

// NewInstrument validates and constructs an Instrument per spec.md section 3:
//   - instrument_type must match spec.Kind()
//   - equity / tradable index / future require a market_data_id
//   - cash requires a currency
//   - FutureSpec.multiplier must be positive and finite, expiry required
//   - BondSpec.maturity required
func NewInstrument(schemaVersion int, instrumentID schema.InstrumentId, instrumentType InstrumentType, marketDataID *schema.MarketDataId, currency *schema.Currency, spec Spec, meta map[string]any) (Instrument, error) {
	verr := &schema.ValidationError{}

	if spec == nil {
		verr.Add("spec", "must not be nil")
		return Instrument{}, verr.OrNil()
	}
	if spec.Kind() != instrumentType {
		verr.Add("instrument_type", fmt.Sprintf("must match spec.kind %q, got %q", spec.Kind(), instrumentType))
	}

	switch s := spec.(type) {
	case EquitySpec:
		if s.Tradable && marketDataID == nil {
			verr.Add("market_data_id", "required for tradable equity")
		}
	case IndexSpec:
		if s.IsTradable && marketDataID == nil {
			verr.Add("market_data_id", "required for tradable index")
		}
	case CashSpec:
		if currency == nil {
			verr.Add("currency", "required for cash instruments")
		}
	case FutureSpec:
		if marketDataID == nil {
			verr.Add("market_data_id", "required for future")
		}
		if !(s.Multiplier > 0) || math.IsNaN(s.Multiplier) || math.IsInf(s.Multiplier, 0) {
			verr.Add("spec.multiplier", "must be finite and > 0")
		}
		if s.Expiry.IsZero() {
			verr.Add("spec.expiry", "required")
		}
	case BondSpec:
		if s.Maturity.IsZero() {
			verr.Add("spec.maturity", "required")
		}
	}

	if verr.HasErrors() {
		return Instrument{}, verr
	}

	return Instrument{
		schemaVersion:  schemaVersion,
		instrumentID:   instrumentID,
		instrumentType: instrumentType,
		marketDataID:   marketDataID,
		currency:       currency,
		spec:           spec,
		meta:           meta,
	}, nil
}

func (i Instrument) ID() schema.InstrumentId     { return i.instrumentID }
func (i Instrument) Type() InstrumentType        { return i.instrumentType }
func (i Instrument) MarketDataID() *schema.MarketDataId { return i.marketDataID }
func (i Instrument) Currency() *schema.Currency  { return i.currency }
func (i Instrument) Spec() Spec                  { return i.spec }

// CanonicalPayload implements identity.CanonicalPayload.
func (i Instrument) CanonicalPayload() map[string]any {
	payload := map[string]any{
		"schema_version":  i.schemaVersion,
		"instrument_id":   string(i.instrumentID),
		"instrument_type": string(i.instrumentType),
		"spec":            i.spec.canonicalPayload(),
	}
	if i.marketDataID != nil {
		payload["market_data_id"] = string(*i.marketDataID)
	} else {
		payload["market_data_id"] = nil
	}
	if i.currency != nil {
		payload["currency"] = string(*i.currency)
	} else {
		payload["currency"] = nil
	}
	if i.meta != nil {
		payload["meta"] = i.meta
	}
	return payload
}
