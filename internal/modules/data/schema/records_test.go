package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMeta(t *testing.T) RecordMeta {
	t.Helper()
	id, err := NewInstrumentId("EQ.AAPL")
	require.NoError(t, err)
	ts := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	return RecordMeta{
		DatasetID:      "eod_bars",
		SchemaVersion:  1,
		DatasetVersion: "v1",
		InstrumentID:   id,
		Ts:             ts,
		AsofTs:         ts,
		TsProvenance:   TsExchangeClose,
		Source:         Source{Provider: "fixture", Endpoint: "local"},
		IngestRunID:    "ing_20240102_210000Z_0001",
	}
}

func f(v float64) *float64 { return &v }

func TestNewBarRecordRejectsHighBelowCloseOpen(t *testing.T) {
	meta := validMeta(t)
	bad := Bar{Open: f(10), High: f(9), Low: f(8), Close: 9.5}
	_, err := NewBarRecord(meta, bad)
	assert.Error(t, err)
}

func TestNewBarRecordAcceptsConsistentOHLC(t *testing.T) {
	meta := validMeta(t)
	good := Bar{Open: f(10), High: f(12), Low: f(9), Close: 11}
	rec, err := NewBarRecord(meta, good)
	require.NoError(t, err)
	assert.Equal(t, 11.0, rec.Bar.Close)
}

func TestNewBarRecordRejectsNonpositiveClose(t *testing.T) {
	meta := validMeta(t)
	bad := Bar{Close: 0}
	_, err := NewBarRecord(meta, bad)
	assert.Error(t, err)
}

func TestNewBarRecordRejectsAsofBeforeTs(t *testing.T) {
	meta := validMeta(t)
	meta.AsofTs = meta.Ts.Add(-time.Hour)
	good := Bar{Close: 10}
	_, err := NewBarRecord(meta, good)
	assert.Error(t, err)
}

func TestBarRecordCanonicalPayloadSortsQualityFlags(t *testing.T) {
	meta := validMeta(t)
	meta.QualityFlags = []QualityFlag{FlagStale, FlagImputed}
	rec, err := NewBarRecord(meta, Bar{Close: 10})
	require.NoError(t, err)

	payload := rec.CanonicalPayload()
	flags := payload["quality_flags"].([]any)
	assert.Equal(t, []any{"IMPUTED", "STALE"}, flags)
}
