package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
)

func TestNormalizerProducesBarRecordsWithProviderTimestampFallback(t *testing.T) {
	raw := RawResponse{
		Payload:       []byte("date,close\n2024-01-02,100\n2024-01-03,101\n"),
		PayloadFormat: PayloadCSV,
		ProviderName:  "fixture",
		Endpoint:      "local",
		FetchedAtTs:   time.Date(2024, 1, 4, 12, 0, 0, 0, time.UTC),
	}

	id, err := schema.NewInstrumentId("EQ.AAPL")
	require.NoError(t, err)

	n := &Normalizer{}
	records, err := n.Normalize(raw, MappingContext{
		InstrumentID:   id,
		MIC:            "XNYS",
		Currency:       "USD",
		DatasetID:      "eod_bars",
		DatasetVersion: "v1",
		SchemaVersion:  1,
	}, "ing_20240104_120000Z_0001")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, schema.TsProviderEOD, records[0].Meta.TsProvenance)
	assert.Contains(t, records[0].Meta.QualityFlags, schema.FlagProviderTimestampUsed)
	assert.Equal(t, 100.0, records[0].Bar.Close)
	assert.Equal(t, raw.FetchedAtTs, records[0].Meta.AsofTs)
}

func TestNormalizerRejectsMalformedCSV(t *testing.T) {
	raw := RawResponse{
		Payload:       []byte("date,close\n2024-01-02,notanumber\n"),
		PayloadFormat: PayloadCSV,
		ProviderName:  "fixture",
		FetchedAtTs:   time.Now().UTC(),
	}
	id, err := schema.NewInstrumentId("EQ.AAPL")
	require.NoError(t, err)

	n := &Normalizer{}
	_, err = n.Normalize(raw, MappingContext{InstrumentID: id, MIC: "XNYS", DatasetID: "eod_bars", DatasetVersion: "v1"}, "ing_1")
	assert.Error(t, err)
}
