package risk

import (
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// Window selects the lookback period for asset/portfolio return series,
// expressed either as a trading-day count ending at AsOf or as an explicit
// start/end date pair. Exactly one variant must be set. Engine.Run
// validates the window and hashes it into request_hash; it does not trim
// Input.Bundle, so returns are built from every row the bundle holds.
type Window struct {
	// LookbackTradingDays, if non-nil, selects the trailing N trading days
	// ending at Request.AsOf. Mutually exclusive with Start/End.
	LookbackTradingDays *int
	// Start and End select an explicit date range. Both must be set
	// together, and mutually exclusive with LookbackTradingDays.
	Start *time.Time
	End   *time.Time
}

func (w Window) canonicalPayload() map[string]any {
	if w.LookbackTradingDays != nil {
		return map[string]any{"lookback_trading_days": *w.LookbackTradingDays}
	}
	payload := map[string]any{}
	if w.Start != nil {
		payload["start"] = identity.FormatDate(*w.Start)
	}
	if w.End != nil {
		payload["end"] = identity.FormatDate(*w.End)
	}
	return payload
}

// validate implements spec.md section 4.9 pipeline step 1's window checks,
// matching RiskRequest._validate_window in the original implementation:
// exactly one window variant, a positive lookback count, start <= end, and
// no look-ahead (window end on or before as_of).
func (w Window) validate(asOf time.Time) error {
	hasLookback := w.LookbackTradingDays != nil
	hasStart := w.Start != nil
	hasEnd := w.End != nil

	if hasLookback {
		if *w.LookbackTradingDays <= 0 {
			return newInputError("lookback_trading_days must be positive", map[string]any{"lookback_trading_days": *w.LookbackTradingDays})
		}
		if hasStart || hasEnd {
			return newInputError("start/end cannot be used with lookback_trading_days", nil)
		}
		return nil
	}

	if !hasStart || !hasEnd {
		return newInputError("start and end are required when no lookback is given", nil)
	}
	if w.Start.After(*w.End) {
		return newInputError("window start must be on or before end", map[string]any{"start": *w.Start, "end": *w.End})
	}
	if w.End.After(asOf) {
		return newInputError("window end cannot be after as_of", map[string]any{"end": *w.End, "as_of": asOf})
	}
	if w.Start.After(asOf) {
		return newInputError("window start cannot be after as_of", map[string]any{"start": *w.Start, "as_of": asOf})
	}
	return nil
}

// ReturnDefinition selects the return formula applied to price series.
type ReturnDefinition string

const (
	ReturnSimple ReturnDefinition = "simple"
	ReturnLog    ReturnDefinition = "log"
)

// MissingDataPolicy governs how gaps in price/return series are handled.
type MissingDataPolicy string

const (
	MissingError        MissingDataPolicy = "ERROR"
	MissingDropDates    MissingDataPolicy = "DROP_DATES"
	MissingForwardFill  MissingDataPolicy = "FORWARD_FILL"
	MissingPartial      MissingDataPolicy = "PARTIAL"
)

// InputMode selects how portfolio-level returns are derived.
type InputMode string

const (
	// InputPortfolioReturns takes a pre-computed portfolio return series
	// directly (e.g. from a NAV history).
	InputPortfolioReturns InputMode = "PORTFOLIO_RETURNS"
	// InputStaticWeightsXAssetReturns derives portfolio returns as a
	// fixed-weight linear combination of asset returns, ignoring any
	// intra-window rebalancing.
	InputStaticWeightsXAssetReturns InputMode = "STATIC_WEIGHTS_X_ASSET_RETURNS"
)

// CovarianceEstimator names the covariance estimation method. SAMPLE is the
// only one implemented (spec.md's MVP).
type CovarianceEstimator string

const SampleCovarianceEstimator CovarianceEstimator = "SAMPLE"

// Warning is a non-fatal condition surfaced on the report rather than
// raised as an error.
type Warning struct {
	Code    string
	Message string
	Context map[string]any
}

// Request is the full parameterization of one risk-report computation.
type Request struct {
	AsOf                time.Time
	Window              Window
	ReturnDefinition    ReturnDefinition
	AnnualizationFactor float64
	ConfidenceLevels    []float64
	InputMode           InputMode
	MissingDataPolicy   MissingDataPolicy
	CovarianceEstimator CovarianceEstimator
	// Weights is required when InputMode is STATIC_WEIGHTS_X_ASSET_RETURNS,
	// keyed by market_data_id.
	Weights map[string]float64
	// BenchmarkAssetID, if set, is recorded in request_hash. Engine.Run
	// computes tracking error from Input.BenchmarkReturns and does not look
	// this asset up in the bundle.
	BenchmarkAssetID string

	PortfolioSnapshotHash string
	MarketDataBundleHash  string
	BenchmarkHash         string
}

// CanonicalPayload implements identity.CanonicalPayload, used to derive
// request_hash for lineage.
func (r Request) CanonicalPayload() map[string]any {
	levels := append([]float64(nil), r.ConfidenceLevels...)
	sort.Float64s(levels)
	confidence := make([]any, len(levels))
	for i, l := range levels {
		confidence[i] = l
	}

	payload := map[string]any{
		"as_of":                identity.FormatTimestampUTC(r.AsOf),
		"window":               r.Window.canonicalPayload(),
		"return_definition":    string(r.ReturnDefinition),
		"annualization_factor": r.AnnualizationFactor,
		"confidence_levels":    confidence,
		"input_mode":           string(r.InputMode),
		"missing_data_policy":  string(r.MissingDataPolicy),
		"covariance_estimator": string(r.CovarianceEstimator),
	}
	if r.BenchmarkAssetID != "" {
		payload["benchmark_asset_id"] = r.BenchmarkAssetID
	}
	if len(r.Weights) > 0 {
		weightKeys := make([]string, 0, len(r.Weights))
		for k := range r.Weights {
			weightKeys = append(weightKeys, k)
		}
		sort.Strings(weightKeys)
		weights := make(map[string]any, len(r.Weights))
		for _, k := range weightKeys {
			weights[k] = r.Weights[k]
		}
		payload["weights"] = weights
	}
	return payload
}

// RequestHash returns content_hash(Request).
func (r Request) RequestHash() (string, error) {
	return identity.ContentHashOf(r)
}
