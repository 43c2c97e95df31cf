package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/data/storage"
)

// Publisher stages canonical records, hashes them, publishes the canonical
// snapshot, and appends a registry entry. It is the storage-facing half of
// the runner, kept separate so the runner's control flow stays readable.
type Publisher struct {
	Raw       storage.Blobstore
	Canonical storage.Blobstore
	Registry  *storage.Registry
}

// PublishResult is what a successful ingestion run produced.
type PublishResult struct {
	DatasetID      string
	DatasetVersion string
	ContentHash    string
	RowCount       int
}

// Publish stages records under canonical/dataset_id=<id>/dataset_version=<v>/
// and appends a registry entry, failing with *storage.RegistryConflict on a
// duplicate (dataset_id, dataset_version).
func (p *Publisher) Publish(ctx context.Context, datasetID, datasetVersion, ingestRunID, calendarVersion, sessionRulesVersion, universeHash string, records []schema.BarRecord) (PublishResult, error) {
	payloads := make([]any, len(records))
	for i, rec := range records {
		payloads[i] = rec.CanonicalPayload()
	}
	batch := map[string]any{"records": payloads}
	contentHash, err := identity.ContentHash(batch)
	if err != nil {
		return PublishResult{}, fmt.Errorf("ingest: hash canonical batch: %w", err)
	}

	body, err := identity.CanonicalJSON(batch)
	if err != nil {
		return PublishResult{}, fmt.Errorf("ingest: serialize canonical batch: %w", err)
	}

	key := fmt.Sprintf("dataset_id=%s/dataset_version=%s/part-0001.json", datasetID, datasetVersion)
	if err := p.Canonical.Put(ctx, key, body); err != nil {
		return PublishResult{}, fmt.Errorf("ingest: stage canonical snapshot: %w", err)
	}

	entry := storage.RegistryEntry{
		DatasetID:           datasetID,
		DatasetVersion:      datasetVersion,
		SchemaVersion:       1,
		CreatedAtTs:         time.Now().UTC(),
		IngestRunID:         ingestRunID,
		UniverseHash:        universeHash,
		CalendarVersion:     calendarVersion,
		SessionRulesVersion: sessionRulesVersion,
		RowCount:            int64(len(records)),
		ContentHash:         contentHash,
	}
	if err := p.Registry.Append(ctx, entry); err != nil {
		return PublishResult{}, err
	}

	return PublishResult{DatasetID: datasetID, DatasetVersion: datasetVersion, ContentHash: contentHash, RowCount: len(records)}, nil
}

// RunnerConfig tunes the resilience wrapper around provider fetches.
type RunnerConfig struct {
	RateLimitPerSecond float64
	BreakerName        string
	BreakerMaxRequests uint32
}

// IngestionRunner composes fetch -> raw-zone write -> normalize -> validate
// -> canonical stage -> content hash -> publish -> registry append, one
// FetchRequest at a time, wrapped in a circuit breaker and a per-provider
// rate limiter.
type IngestionRunner struct {
	Adapter    ProviderAdapter
	Normalizer *Normalizer
	Validator  *Validator
	Publisher  *Publisher
	Log        zerolog.Logger

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewIngestionRunner wires the resilience layer (sony/gobreaker +
// golang.org/x/time/rate) around a ProviderAdapter.
func NewIngestionRunner(adapter ProviderAdapter, normalizer *Normalizer, validator *Validator, publisher *Publisher, log zerolog.Logger, cfg RunnerConfig) *IngestionRunner {
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 5
	}
	if cfg.BreakerMaxRequests == 0 {
		cfg.BreakerMaxRequests = 1
	}
	name := cfg.BreakerName
	if name == "" {
		name = "provider-fetch"
	}

	return &IngestionRunner{
		Adapter:    adapter,
		Normalizer: normalizer,
		Validator:  validator,
		Publisher:  publisher,
		Log:        log,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.BreakerMaxRequests,
			Timeout:     30 * time.Second,
		}),
	}
}

// RunOne executes the pipeline for a single FetchRequest.
func (r *IngestionRunner) RunOne(ctx context.Context, req FetchRequest, ctxMap map[string]MappingContext, calendarVersion, sessionRulesVersion, universeHash string) (PublishResult, error) {
	runID := identity.GenerateIngestRunID(time.Now())
	log := r.Log.With().Str("ingest_run_id", runID).Str("dataset_id", req.DatasetID).Logger()

	if err := r.limiter.Wait(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("ingest: rate limiter: %w", err)
	}

	rawAny, err := r.breaker.Execute(func() (any, error) {
		return r.Adapter.Fetch(ctx, req)
	})
	if err != nil {
		return PublishResult{}, &ProviderFetchError{DatasetID: req.DatasetID, Err: err}
	}
	raw := rawAny.(RawResponse)

	rawKey := fmt.Sprintf("ingest_run_id=%s/request=%s/payload.bin", runID, raw.RequestFingerprint)
	if err := r.Publisher.Raw.Put(ctx, rawKey, raw.Payload); err != nil {
		return PublishResult{}, fmt.Errorf("ingest: write raw payload: %w", err)
	}
	log.Debug().Str("raw_key", rawKey).Msg("raw payload staged")

	var allRecords []schema.BarRecord
	report := ValidationReport{FlagCounts: make(map[schema.QualityFlag]int)}
	for _, instrumentID := range req.InstrumentIDs {
		mctx, ok := ctxMap[instrumentID]
		if !ok {
			return PublishResult{}, &NormalizationError{Provider: raw.ProviderName, Field: "instrument_id", Err: fmt.Errorf("no mapping context for %q", instrumentID)}
		}
		mctx.DatasetVersion = runID
		records, err := r.Normalizer.Normalize(raw, mctx, runID)
		if err != nil {
			return PublishResult{}, err
		}
		instrumentReport := r.Validator.Validate(records)
		report.HardErrors = append(report.HardErrors, instrumentReport.HardErrors...)
		for flag, n := range instrumentReport.FlagCounts {
			report.FlagCounts[flag] += n
		}
		allRecords = append(allRecords, records...)
	}

	if report.HasHardErrors() {
		return PublishResult{}, &HardValidationError{Reasons: report.HardErrors}
	}
	log.Info().Int("row_count", len(allRecords)).Interface("flag_counts", report.FlagCounts).Msg("validation passed")

	datasetVersion := runID
	return r.Publisher.Publish(ctx, req.DatasetID, datasetVersion, runID, calendarVersion, sessionRulesVersion, universeHash, allRecords)
}

// RunMany fans independent FetchRequests out across goroutines via
// errgroup, matching spec.md section 5: "multiple requests may run in
// parallel... MUST NOT share mutable state." Each request gets its own
// ingest_run_id and writes to disjoint storage keys, so no synchronization
// beyond the registry's own single-writer discipline is needed.
func (r *IngestionRunner) RunMany(ctx context.Context, reqs []FetchRequest, ctxMap map[string]MappingContext, calendarVersion, sessionRulesVersion, universeHash string) ([]PublishResult, error) {
	results := make([]PublishResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			res, err := r.RunOne(gctx, req, ctxMap, calendarVersion, sessionRulesVersion, universeHash)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
