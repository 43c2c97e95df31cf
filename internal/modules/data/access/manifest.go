package access

import "time"

// ManifestVersion identifies the manifest schema this package writes.
const ManifestVersion = "1.0"

// AssetQualityRecord is one asset's persisted quality outcome.
type AssetQualityRecord struct {
	MissingCount int      `json:"missing_count"`
	Flags        []string `json:"flags"`
}

// QualitySummary aggregates the quality flags observed across a request's
// output, keyed by flag code.
type QualitySummary struct {
	TotalMissing int            `json:"total_missing"`
	FlagCounts   map[string]int `json:"flag_counts"`
}

// Manifest records everything needed to reproduce, audit, or replay one
// GetTimeSeries call: the request that produced it, where its data lives,
// and a summary of the quality issues found (spec.md section 4.6 step 6 /
// SPEC_FULL section 6 manifest schema). Assets, Fields, and
// AssetStoragePaths supplement the spec's schema so a cache hit can
// reconstruct a TimeSeriesBundle without re-deriving anything from
// RequestJSON.
type Manifest struct {
	ManifestVersion   string                        `json:"manifest_version"`
	RequestJSON       map[string]any                `json:"request_json"`
	RequestHash       string                        `json:"request_hash"`
	Assets            []string                      `json:"assets"`
	Fields            []string                      `json:"fields"`
	AssetSymbols      map[string]string              `json:"asset_symbols"`
	Provider          string                        `json:"provider"`
	IngestionTsUTC    time.Time                     `json:"ingestion_ts_utc"`
	AsOfUTC           *time.Time                    `json:"as_of_utc,omitempty"`
	DatasetVersion    string                        `json:"dataset_version"`
	CodeVersion       string                        `json:"code_version,omitempty"`
	StoragePaths      []string                      `json:"storage_paths"`
	AssetStoragePaths map[string]string             `json:"asset_storage_paths"`
	QualitySummary    QualitySummary                `json:"quality_summary"`
	AssetQuality      map[string]AssetQualityRecord `json:"asset_quality"`
}
