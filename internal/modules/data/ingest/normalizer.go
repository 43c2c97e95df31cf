package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/calendar"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

// MappingContext carries the seed-universe facts the normalizer needs to
// turn a raw payload row into a canonical record: which instrument it is,
// which venue/MIC governs its session, and which dataset it belongs to.
type MappingContext struct {
	InstrumentID   schema.InstrumentId
	MIC            string
	Currency       string
	TimezoneLocal  string
	DatasetID      string
	DatasetVersion string
	SchemaVersion  int
}

type rawRow struct {
	Date   string  `json:"date"`
	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  float64  `json:"close"`
	Volume *float64 `json:"volume,omitempty"`
	Ts     string   `json:"ts,omitempty"`
}

// Normalizer is pure and deterministic: raw payload + mapping context ->
// canonical records, with asof_ts, source, ingest_run_id, ts_provenance and
// initial quality flags populated.
type Normalizer struct {
	Rules    *calendar.SessionRulesSnapshot
	Baseline calendar.VenueCalendar
}

// Normalize parses raw.Payload (CSV or JSON per raw.PayloadFormat) and
// returns one BarRecord per row.
func (n *Normalizer) Normalize(raw RawResponse, ctx MappingContext, ingestRunID string) ([]schema.BarRecord, error) {
	rows, err := parseRows(raw)
	if err != nil {
		return nil, &NormalizationError{Provider: raw.ProviderName, Field: "payload", Err: err}
	}

	records := make([]schema.BarRecord, 0, len(rows))
	for _, row := range rows {
		tradingDate, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, &NormalizationError{Provider: raw.ProviderName, Field: "date", Err: err}
		}

		obs := calendar.ProviderObservation{HasBar: true}
		if row.Ts != "" {
			ts, err := time.Parse(time.RFC3339, row.Ts)
			if err != nil {
				return nil, &NormalizationError{Provider: raw.ProviderName, Field: "ts", Err: err}
			}
			obs.ProviderTs = ts
			obs.HasProviderTs = true
		} else {
			obs.ProviderTs = raw.FetchedAtTs
			obs.HasProviderTs = true
		}

		derived, err := calendar.DeriveTimestamp(ctx.MIC, tradingDate, n.Rules, n.Baseline, obs)
		if err != nil {
			return nil, &NormalizationError{Provider: raw.ProviderName, Field: "ts", Err: err}
		}

		meta := schema.RecordMeta{
			DatasetID:        ctx.DatasetID,
			SchemaVersion:    ctx.SchemaVersion,
			DatasetVersion:   ctx.DatasetVersion,
			InstrumentID:     ctx.InstrumentID,
			Ts:               derived.Ts,
			AsofTs:           raw.FetchedAtTs,
			TsProvenance:     derived.TsProvenance,
			Source:           schema.Source{Provider: raw.ProviderName, Endpoint: raw.Endpoint},
			IngestRunID:      ingestRunID,
			QualityFlags:     derived.Flags,
			TradingDateLocal: row.Date,
			TimezoneLocal:    ctx.TimezoneLocal,
			Currency:         ctx.Currency,
		}

		bar := schema.Bar{Open: row.Open, High: row.High, Low: row.Low, Close: row.Close, Volume: row.Volume}

		rec, err := schema.NewBarRecord(meta, bar)
		if err != nil {
			return nil, &NormalizationError{Provider: raw.ProviderName, Field: "bar", Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRows(raw RawResponse) ([]rawRow, error) {
	switch raw.PayloadFormat {
	case PayloadJSON:
		var rows []rawRow
		if err := json.Unmarshal(raw.Payload, &rows); err != nil {
			return nil, fmt.Errorf("parse json payload: %w", err)
		}
		return rows, nil
	case PayloadCSV:
		return parseCSVRows(raw.Payload)
	default:
		return nil, fmt.Errorf("unsupported payload format %q", raw.PayloadFormat)
	}
}

func parseCSVRows(payload []byte) ([]rawRow, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv payload: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[h] = i
	}
	required := []string{"date", "close"}
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("csv payload missing required column %q", col)
		}
	}

	rows := make([]rawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := rawRow{Date: rec[colIdx["date"]]}
		if v, err := strconv.ParseFloat(rec[colIdx["close"]], 64); err == nil {
			row.Close = v
		} else {
			return nil, fmt.Errorf("parse close %q: %w", rec[colIdx["close"]], err)
		}
		row.Open = optionalFloat(rec, colIdx, "open")
		row.High = optionalFloat(rec, colIdx, "high")
		row.Low = optionalFloat(rec, colIdx, "low")
		row.Volume = optionalFloat(rec, colIdx, "volume")
		if idx, ok := colIdx["ts"]; ok {
			row.Ts = rec[idx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func optionalFloat(rec []string, colIdx map[string]int, name string) *float64 {
	idx, ok := colIdx[name]
	if !ok || idx >= len(rec) || rec[idx] == "" {
		return nil
	}
	v, err := strconv.ParseFloat(rec[idx], 64)
	if err != nil {
		return nil
	}
	return &v
}
