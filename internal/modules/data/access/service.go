package access

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantlab-go/internal/modules/data/access/parquet"
	"github.com/aristath/quantlab-go/internal/modules/data/calendar"
	"github.com/aristath/quantlab-go/internal/modules/data/identity"
	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/data/storage"
	"github.com/aristath/quantlab-go/pkg/logging"
	"github.com/aristath/quantlab-go/pkg/metrics"
)

// Service implements the access service's seven-step pipeline (spec.md
// section 4.6): hash the request, check the manifest cache, resolve
// symbols, fetch raw data, align to a calendar, apply a missing-data
// policy, run validation guardrails, and persist the result. An identical
// request -- including as_of -- replays entirely from the cache and never
// re-invokes Provider.
type Service struct {
	Store          *storage.FSStore
	Index          ManifestIndex // optional accelerator (Redis or SQLite), nil is fine
	Mapper         SymbolMapper
	Provider       PriceProvider
	Calendar       calendar.VenueCalendar
	ProviderName   string
	DatasetVersion string
	CodeVersion    string
	// Metrics is optional; when set, GetTimeSeries publishes request
	// counts, cache hit/miss counts, and latency to it.
	Metrics *metrics.Metrics
	// Logger is optional; the zero value is zerolog's no-op logger, so an
	// unset Service logs nothing.
	Logger zerolog.Logger
}

func manifestStorageKey(requestHash string) string {
	return fmt.Sprintf("manifests/%s.json", requestHash)
}

func seriesStorageKey(requestHash, assetID string) string {
	return fmt.Sprintf("series/%s/%s.qlpq", requestHash, assetID)
}

// GetTimeSeries runs the full pipeline for req, returning a cached result
// on replay without touching Provider.
func (s *Service) GetTimeSeries(ctx context.Context, req schema.TimeSeriesRequest) (bundle TimeSeriesBundle, err error) {
	if s.Metrics != nil {
		start := time.Now()
		defer func() {
			s.Metrics.AccessRequestDuration.Observe(time.Since(start).Seconds())
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			s.Metrics.AccessRequestTotal.WithLabelValues(outcome).Inc()
		}()
	}

	if err = ctx.Err(); err != nil {
		return TimeSeriesBundle{}, err
	}
	if err = req.Validate(); err != nil {
		return TimeSeriesBundle{}, newInputError("invalid request", map[string]any{"error": err.Error()})
	}

	requestHash, err := req.RequestHash()
	if err != nil {
		return TimeSeriesBundle{}, fmt.Errorf("access: hash request: %w", err)
	}

	log := logging.ForRequest(s.Logger, requestHash)

	if cached, ok, cacheErr := s.lookupCached(ctx, requestHash); cacheErr != nil {
		err = cacheErr
		return TimeSeriesBundle{}, err
	} else if ok {
		if s.Metrics != nil {
			s.Metrics.AccessCacheHitTotal.Inc()
		}
		log.Debug().Msg("access: cache hit, serving from manifest")
		return cached, nil
	}
	if s.Metrics != nil {
		s.Metrics.AccessCacheMissTotal.Inc()
	}
	log.Debug().Int("assets", len(req.Assets)).Msg("access: cache miss, fetching from provider")

	symbols := make(map[string]string, len(req.Assets))
	for _, assetID := range req.Assets {
		symbol, err := s.Mapper.Resolve(assetID)
		if err != nil {
			return TimeSeriesBundle{}, err
		}
		symbols[assetID] = symbol
	}

	raw := make(map[string]map[string][]PricePoint, len(req.Assets))
	for _, assetID := range req.Assets {
		if err := ctx.Err(); err != nil {
			return TimeSeriesBundle{}, err
		}
		raw[assetID] = make(map[string][]PricePoint, len(req.Fields))
		for _, field := range req.Fields {
			points, err := s.Provider.FetchDaily(ctx, symbols[assetID], field, req.Start, req.End)
			if err != nil {
				return TimeSeriesBundle{}, fmt.Errorf("access: fetch %s/%s: %w", assetID, field, err)
			}
			raw[assetID][field] = points
		}
	}

	targetDates, err := s.Calendar.Sessions(req.Calendar.MIC, req.Start, req.End)
	if err != nil {
		return TimeSeriesBundle{}, fmt.Errorf("access: resolve session calendar: %w", err)
	}
	if len(targetDates) == 0 {
		return TimeSeriesBundle{}, newInputError("calendar produced no sessions in range", map[string]any{"mic": req.Calendar.MIC})
	}
	if req.Validation.MonotonicIndex {
		if err := checkMonotonicUnique(targetDates); err != nil {
			return TimeSeriesBundle{}, err
		}
	}

	data := make(map[string]map[string][]float64, len(req.Assets))
	assetFlagSets := make(map[string]map[string]struct{}, len(req.Assets))
	assetMissingCounts := make(map[string]int, len(req.Assets))

	for _, assetID := range req.Assets {
		assetData := make(map[string][]float64, len(req.Fields))
		flags := make(map[string]struct{})
		missing := 0

		for _, field := range req.Fields {
			byDate, err := resolveDuplicates(raw[assetID][field], string(req.Validation.Deduplicate))
			if err != nil {
				return TimeSeriesBundle{}, err
			}
			if len(raw[assetID][field]) > len(byDate) {
				flags[string(schema.FlagDuplicateResolved)] = struct{}{}
			}

			series := make([]float64, len(targetDates))
			prevPrice := 0.0
			havePrev := false
			for i, d := range targetDates {
				v, ok := byDate[identity.FormatDate(d)]
				if !ok {
					series[i] = math.NaN()
					missing++
					flags[string(schema.FlagMissingValue)] = struct{}{}
					continue
				}
				if req.Validation.NoNonpositivePrices && v <= 0 {
					return TimeSeriesBundle{}, newValidationError("non-positive price", map[string]any{
						"asset": assetID, "field": field, "date": identity.FormatDate(d), "value": v,
					})
				}
				if havePrev && prevPrice != 0 {
					ret := (v - prevPrice) / prevPrice
					switch {
					case req.Validation.CorpActionJumpThreshold > 0 && math.Abs(ret) >= req.Validation.CorpActionJumpThreshold:
						flags[string(schema.FlagSuspectCorpAction)] = struct{}{}
					case req.Validation.MaxAbsReturn > 0 && math.Abs(ret) > req.Validation.MaxAbsReturn:
						flags[string(schema.FlagOutlierReturn)] = struct{}{}
					}
				}
				prevPrice = v
				havePrev = true
				series[i] = v
			}
			assetData[field] = series
		}

		data[assetID] = assetData
		assetFlagSets[assetID] = flags
		assetMissingCounts[assetID] = missing
	}

	switch req.Missing.Policy {
	case schema.MissingError:
		total := 0
		for _, m := range assetMissingCounts {
			total += m
		}
		if total > 0 {
			return TimeSeriesBundle{}, newValidationError("missing data present under ERROR policy", map[string]any{"missing_count": total})
		}
	case schema.MissingDropDates:
		targetDates, data = dropMissingDates(targetDates, data)
		for assetID := range assetMissingCounts {
			total := 0
			for _, series := range data[assetID] {
				total += countMissing(series)
			}
			assetMissingCounts[assetID] = total
		}
	case schema.MissingNanOK, "":
		// leave gaps as NaN
	default:
		return TimeSeriesBundle{}, newInputError("unknown missing-data policy", map[string]any{"policy": string(req.Missing.Policy)})
	}

	quality := make(map[string]AssetQuality, len(req.Assets))
	assetQualityRecords := make(map[string]AssetQualityRecord, len(req.Assets))
	flagCounts := map[string]int{}
	totalMissing := 0
	for _, assetID := range req.Assets {
		flags := make([]string, 0, len(assetFlagSets[assetID]))
		for f := range assetFlagSets[assetID] {
			flags = append(flags, f)
		}
		sort.Strings(flags)
		for _, f := range flags {
			flagCounts[f]++
		}
		missing := assetMissingCounts[assetID]
		totalMissing += missing
		quality[assetID] = AssetQuality{MissingCount: missing, Flags: flags}
		assetQualityRecords[assetID] = AssetQualityRecord{MissingCount: missing, Flags: flags}
	}

	ingestionTs := time.Now().UTC()
	dateInts := make([]int32, len(targetDates))
	for i, d := range targetDates {
		dateInts[i] = parquet.EpochDay(d.Unix())
	}

	assetStoragePaths := make(map[string]string, len(req.Assets))
	storagePaths := make([]string, 0, len(req.Assets)+1)
	for _, assetID := range req.Assets {
		columns := make([]parquet.Column, 0, len(req.Fields))
		for _, field := range req.Fields {
			columns = append(columns, parquet.Column{Name: field, Values: data[assetID][field]})
		}
		encoded, err := parquet.Encode(dateInts, columns)
		if err != nil {
			return TimeSeriesBundle{}, fmt.Errorf("access: encode %s: %w", assetID, err)
		}
		path := seriesStorageKey(requestHash, assetID)
		if err := s.Store.Put(ctx, path, encoded); err != nil {
			return TimeSeriesBundle{}, fmt.Errorf("access: persist %s: %w", assetID, err)
		}
		assetStoragePaths[assetID] = path
		storagePaths = append(storagePaths, path)
	}
	sort.Strings(storagePaths)

	manifest := Manifest{
		ManifestVersion:   ManifestVersion,
		RequestJSON:       req.CanonicalPayload(),
		RequestHash:       requestHash,
		Assets:            req.Assets,
		Fields:            req.Fields,
		AssetSymbols:      symbols,
		Provider:          s.ProviderName,
		IngestionTsUTC:    ingestionTs,
		AsOfUTC:           req.AsOf,
		DatasetVersion:    s.DatasetVersion,
		CodeVersion:       s.CodeVersion,
		StoragePaths:      storagePaths,
		AssetStoragePaths: assetStoragePaths,
		QualitySummary:    QualitySummary{TotalMissing: totalMissing, FlagCounts: flagCounts},
		AssetQuality:      assetQualityRecords,
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return TimeSeriesBundle{}, fmt.Errorf("access: marshal manifest: %w", err)
	}
	manifestKey := manifestStorageKey(requestHash)
	if err := s.Store.Put(ctx, manifestKey, manifestJSON); err != nil {
		return TimeSeriesBundle{}, fmt.Errorf("access: persist manifest: %w", err)
	}
	if s.Index != nil {
		s.Index.Record(ctx, requestHash, manifestKey)
	}

	assetsMeta := make(map[string]AssetMeta, len(req.Assets))
	for assetID, symbol := range symbols {
		assetsMeta[assetID] = AssetMeta{ProviderSymbol: symbol}
	}

	log.Info().Int("dates", len(targetDates)).Int("missing", totalMissing).Msg("access: fetched and persisted time series")

	return TimeSeriesBundle{
		Dates:      targetDates,
		Data:       data,
		AssetsMeta: assetsMeta,
		Quality:    quality,
		Lineage:    manifest,
	}, nil
}

// lookupCached returns the bundle for requestHash if a manifest already
// exists, reconstructing it from persisted series without invoking
// Provider. Only the filesystem manifest is checked; s.Index, when present,
// is not consulted here and is only updated (Record) after a hit.
func (s *Service) lookupCached(ctx context.Context, requestHash string) (TimeSeriesBundle, bool, error) {
	manifestKey := manifestStorageKey(requestHash)

	exists, err := s.Store.Exists(ctx, manifestKey)
	if err != nil {
		return TimeSeriesBundle{}, false, fmt.Errorf("access: check manifest cache: %w", err)
	}
	if !exists {
		return TimeSeriesBundle{}, false, nil
	}

	raw, err := s.Store.Get(ctx, manifestKey)
	if err != nil {
		return TimeSeriesBundle{}, false, fmt.Errorf("access: read cached manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return TimeSeriesBundle{}, false, fmt.Errorf("access: decode cached manifest: %w", err)
	}

	bundle, err := s.loadBundle(ctx, manifest)
	if err != nil {
		return TimeSeriesBundle{}, false, err
	}
	if s.Index != nil {
		s.Index.Record(ctx, requestHash, manifestKey)
	}
	return bundle, true, nil
}

// loadBundle decodes every persisted per-asset series named in manifest
// and reassembles a TimeSeriesBundle.
func (s *Service) loadBundle(ctx context.Context, manifest Manifest) (TimeSeriesBundle, error) {
	var dates []time.Time
	data := make(map[string]map[string][]float64, len(manifest.Assets))
	quality := make(map[string]AssetQuality, len(manifest.Assets))
	assetsMeta := make(map[string]AssetMeta, len(manifest.Assets))

	for _, assetID := range manifest.Assets {
		path, ok := manifest.AssetStoragePaths[assetID]
		if !ok {
			return TimeSeriesBundle{}, fmt.Errorf("access: manifest missing storage path for asset %q", assetID)
		}
		raw, err := s.Store.Get(ctx, path)
		if err != nil {
			return TimeSeriesBundle{}, fmt.Errorf("access: read cached series %s: %w", assetID, err)
		}
		dateInts, columns, err := parquet.Decode(raw)
		if err != nil {
			return TimeSeriesBundle{}, fmt.Errorf("access: decode cached series %s: %w", assetID, err)
		}
		if dates == nil {
			dates = make([]time.Time, len(dateInts))
			for i, d := range dateInts {
				dates[i] = time.Unix(int64(d)*86400, 0).UTC()
			}
		}

		assetData := make(map[string][]float64, len(columns))
		for _, col := range columns {
			assetData[col.Name] = col.Values
		}
		data[assetID] = assetData

		record := manifest.AssetQuality[assetID]
		quality[assetID] = AssetQuality{MissingCount: record.MissingCount, Flags: record.Flags}
		assetsMeta[assetID] = AssetMeta{ProviderSymbol: manifest.AssetSymbols[assetID]}
	}

	return TimeSeriesBundle{
		Dates:      dates,
		Data:       data,
		AssetsMeta: assetsMeta,
		Quality:    quality,
		Lineage:    manifest,
	}, nil
}
