package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quantlab-go/internal/modules/data/storage"
)

type fakeAdapter struct {
	payload []byte
}

func (a *fakeAdapter) Fetch(_ context.Context, req FetchRequest) (RawResponse, error) {
	return RawResponse{
		Payload:            a.payload,
		PayloadFormat:      PayloadCSV,
		ProviderName:       "fixture",
		Endpoint:           "local",
		FetchedAtTs:        time.Now().UTC(),
		RequestFingerprint: "fp-" + req.DatasetID,
	}, nil
}

func TestIngestionRunnerRunOnePublishesAndRegisters(t *testing.T) {
	dir := t.TempDir()
	rawStore, err := storage.NewFSStore(filepath.Join(dir, "raw"))
	require.NoError(t, err)
	canonicalStore, err := storage.NewFSStore(filepath.Join(dir, "canonical"))
	require.NoError(t, err)
	reg, err := storage.OpenRegistry(filepath.Join(dir, "registry.sqlite"))
	require.NoError(t, err)
	defer reg.Close()

	adapter := &fakeAdapter{payload: []byte("date,close\n2024-01-02,100\n")}
	normalizer := &Normalizer{}
	validator := &Validator{}
	publisher := &Publisher{Raw: rawStore, Canonical: canonicalStore, Registry: reg}

	runner := NewIngestionRunner(adapter, normalizer, validator, publisher, zerolog.Nop(), RunnerConfig{RateLimitPerSecond: 1000})

	ctxMap := map[string]MappingContext{
		"EQ.AAPL": {InstrumentID: "EQ.AAPL", MIC: "XNYS", Currency: "USD", DatasetID: "eod_bars", DatasetVersion: "", SchemaVersion: 1},
	}

	req := FetchRequest{DatasetID: "eod_bars", InstrumentIDs: []string{"EQ.AAPL"}}
	result, err := runner.RunOne(context.Background(), req, ctxMap, "XNYS_BASELINE:2026.1", "v1", "universe-hash")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	assert.NotEmpty(t, result.ContentHash)

	entry, err := reg.Get(context.Background(), result.DatasetID, result.DatasetVersion)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, result.ContentHash, entry.ContentHash)
}
