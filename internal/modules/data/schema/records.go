package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// Source names the provider/endpoint a record was fetched from.
type Source struct {
	Provider        string
	Endpoint        string
	ProviderDataset string // optional, empty if unused
}

func (s Source) canonicalPayload() map[string]any {
	payload := map[string]any{
		"provider": s.Provider,
		"endpoint": s.Endpoint,
	}
	if s.ProviderDataset != "" {
		payload["provider_dataset"] = s.ProviderDataset
	} else {
		payload["provider_dataset"] = nil
	}
	return payload
}

// RecordMeta holds the fields common to every canonical record.
type RecordMeta struct {
	DatasetID       string
	SchemaVersion   int
	DatasetVersion  string
	InstrumentID    InstrumentId
	Ts              time.Time
	AsofTs          time.Time
	TsProvenance    TsProvenance
	Source          Source
	IngestRunID     string
	QualityFlags    []QualityFlag
	TradingDateLocal string // recommended, YYYY-MM-DD, optional
	TimezoneLocal    string // recommended, optional
	Currency         string // recommended, optional
}

func (m RecordMeta) canonicalPayload() map[string]any {
	flagStrings := make([]string, len(m.QualityFlags))
	for i, f := range m.QualityFlags {
		flagStrings[i] = string(f)
	}
	flagStrings = identity.SortUnique(flagStrings)
	flags := make([]any, len(flagStrings))
	for i, f := range flagStrings {
		flags[i] = f
	}

	payload := map[string]any{
		"dataset_id":      m.DatasetID,
		"schema_version":  m.SchemaVersion,
		"dataset_version": m.DatasetVersion,
		"instrument_id":   string(m.InstrumentID),
		"ts":              identity.FormatTimestampUTC(m.Ts),
		"asof_ts":         identity.FormatTimestampUTC(m.AsofTs),
		"ts_provenance":   string(m.TsProvenance),
		"source":          m.Source.canonicalPayload(),
		"ingest_run_id":   m.IngestRunID,
		"quality_flags":   flags,
	}
	if m.TradingDateLocal != "" {
		payload["trading_date_local"] = m.TradingDateLocal
	}
	if m.TimezoneLocal != "" {
		payload["timezone_local"] = m.TimezoneLocal
	}
	if m.Currency != "" {
		payload["currency"] = m.Currency
	}
	return payload
}

func (m RecordMeta) validate() *ValidationError {
	verr := &ValidationError{}
	if m.DatasetID == "" {
		verr.Add("dataset_id", "must not be empty")
	}
	if m.DatasetVersion == "" {
		verr.Add("dataset_version", "must not be empty")
	}
	if m.Ts.IsZero() {
		verr.Add("ts", "must be set and UTC")
	}
	if m.AsofTs.IsZero() {
		verr.Add("asof_ts", "must be set")
	} else if m.AsofTs.Before(m.Ts) {
		verr.Add("asof_ts", "must be >= ts (source date)")
	}
	if m.IngestRunID == "" {
		verr.Add("ingest_run_id", "must not be empty")
	}
	return verr
}

// Bar holds OHLCV fields for one BarRecord. Optional fields use pointers so
// their absence is distinguishable from a legitimate zero value.
type Bar struct {
	Open            *float64
	High            *float64
	Low             *float64
	Close           float64
	Volume          *float64
	AdjClose        *float64
	AdjustmentBasis *AdjustmentBasis
}

func (b Bar) validate() *ValidationError {
	verr := &ValidationError{}

	checkFinitePositive := func(field string, v *float64) {
		if v == nil {
			return
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			verr.Add(field, "must be finite")
		} else if *v <= 0 {
			verr.Add(field, "must be strictly positive")
		}
	}
	checkFinitePositive("bar.open", b.Open)
	checkFinitePositive("bar.high", b.High)
	checkFinitePositive("bar.low", b.Low)
	checkFinitePositive("bar.close", &b.Close)

	if b.Volume != nil && *b.Volume < 0 {
		verr.Add("bar.volume", "must be >= 0")
	}

	open, high, low, close := b.Open, b.High, b.Low, b.Close
	if high != nil {
		maxOC := close
		if open != nil && *open > maxOC {
			maxOC = *open
		}
		if *high < maxOC {
			verr.Add("bar.high", fmt.Sprintf("must be >= max(open,close), got %v < %v", *high, maxOC))
		}
	}
	if low != nil {
		minOC := close
		if open != nil && *open < minOC {
			minOC = *open
		}
		if *low > minOC {
			verr.Add("bar.low", fmt.Sprintf("must be <= min(open,close), got %v > %v", *low, minOC))
		}
	}
	if high != nil && low != nil && *high < *low {
		verr.Add("bar.high", "must be >= bar.low")
	}

	return verr
}

func (b Bar) canonicalPayload() map[string]any {
	payload := map[string]any{"close": b.Close}
	optional := func(key string, v *float64) {
		if v != nil {
			payload[key] = *v
		} else {
			payload[key] = nil
		}
	}
	optional("open", b.Open)
	optional("high", b.High)
	optional("low", b.Low)
	optional("volume", b.Volume)
	optional("adj_close", b.AdjClose)
	if b.AdjustmentBasis != nil {
		payload["adjustment_basis"] = string(*b.AdjustmentBasis)
	} else {
		payload["adjustment_basis"] = nil
	}
	return payload
}

// BarRecord is a canonical OHLCV observation for one instrument_id on one
// trading day.
type BarRecord struct {
	Meta RecordMeta
	Bar  Bar
}

// NewBarRecord validates meta and bar together and returns a BarRecord.
func NewBarRecord(meta RecordMeta, bar Bar) (BarRecord, error) {
	verr := meta.validate()
	barErrs := bar.validate()
	verr.Errors = append(verr.Errors, barErrs.Errors...)
	if verr.HasErrors() {
		return BarRecord{}, verr
	}
	return BarRecord{Meta: meta, Bar: bar}, nil
}

// CanonicalPayload implements identity.CanonicalPayload.
func (r BarRecord) CanonicalPayload() map[string]any {
	payload := r.Meta.canonicalPayload()
	payload["bar"] = r.Bar.canonicalPayload()
	return payload
}

// PointRecord is a canonical scalar observation (e.g. an FX fixing) for one
// instrument_id at one instant.
type PointRecord struct {
	Meta              RecordMeta
	Field             string
	Value             float64
	BaseCcy           string
	QuoteCcy          string
	FixingConvention  string // optional
}

// NewPointRecord validates meta and point fields.
func NewPointRecord(meta RecordMeta, field string, value float64, baseCcy, quoteCcy, fixingConvention string) (PointRecord, error) {
	verr := meta.validate()
	if field == "" {
		verr.Add("field", "must not be empty")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		verr.Add("value", "must be finite and > 0")
	}
	if baseCcy == "" {
		verr.Add("base_ccy", "must not be empty")
	}
	if quoteCcy == "" {
		verr.Add("quote_ccy", "must not be empty")
	}
	if verr.HasErrors() {
		return PointRecord{}, verr
	}
	return PointRecord{
		Meta:             meta,
		Field:            field,
		Value:            value,
		BaseCcy:          baseCcy,
		QuoteCcy:         quoteCcy,
		FixingConvention: fixingConvention,
	}, nil
}

// CanonicalPayload implements identity.CanonicalPayload.
func (r PointRecord) CanonicalPayload() map[string]any {
	payload := r.Meta.canonicalPayload()
	payload["field"] = r.Field
	payload["value"] = r.Value
	payload["base_ccy"] = r.BaseCcy
	payload["quote_ccy"] = r.QuoteCcy
	if r.FixingConvention != "" {
		payload["fixing_convention"] = r.FixingConvention
	} else {
		payload["fixing_convention"] = nil
	}
	return payload
}
