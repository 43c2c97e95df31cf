package access

import "time"

// AssetMeta records how one requested asset was resolved.
type AssetMeta struct {
	ProviderSymbol string
}

// AssetQuality summarizes the quality outcome for one asset's series.
type AssetQuality struct {
	MissingCount int
	Flags        []string // unique flag codes observed anywhere in the asset's series
}

// TimeSeriesBundle is the access service's return value: a two-level
// (asset_id, field) column layout aligned to a shared date index, plus
// per-asset resolution metadata, quality, and the manifest recording how
// it was produced (spec.md section 4.6: "TimeSeriesBundle = (data,
// assets_meta, quality, lineage)").
type TimeSeriesBundle struct {
	Dates      []time.Time
	Data       map[string]map[string][]float64 // asset_id -> field -> series, NaN marks a gap under NAN_OK
	AssetsMeta map[string]AssetMeta
	Quality    map[string]AssetQuality
	Lineage    Manifest
}
