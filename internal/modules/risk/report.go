package risk

import (
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/report"
)

const ReportVersion = "1.0"

// InputLineage identifies the upstream datasets a risk report was computed
// from, by hash only -- never raw data.
type InputLineage struct {
	PortfolioSnapshotHash string
	MarketDataBundleHash  string
	RequestHash           string
	BenchmarkHash         string
}

// CovarianceDiagnosticsReport is the report-facing view of CovarianceDiagnostics.
type CovarianceDiagnosticsReport struct {
	SampleSize       int
	SymmetryMaxError float64
	IsSymmetric      bool
	Estimator        string
}

// Metrics bundles the scalar and map-valued outputs of the pipeline.
type Metrics struct {
	PortfolioVolAnnualized   *float64
	MaxDrawdown              *float64
	MaxDrawdownTimeToRecover *int
	TrackingErrorAnnualized  *float64
	Var                      map[float64]float64
	Es                       map[float64]float64
	CovarianceDiagnostics    *CovarianceDiagnosticsReport
}

// VarianceContribution is one asset's share of portfolio variance.
type VarianceContribution struct {
	AssetID   string
	Component float64
}

// Attribution is the report-facing view of VarianceAttributionResult.
type Attribution struct {
	VarianceContributions []VarianceContribution
	PortfolioVariance     float64
	Convention            string
}

// Exposures bundles the asset and currency decompositions.
type Exposures struct {
	ByAsset    []AssetExposure
	ByCurrency []CurrencyExposure
}

// Report is the final assembled risk report per spec.md section 4.9 step 13.
type Report struct {
	ReportVersion     string
	GeneratedAtUTC    time.Time
	AsOf              time.Time
	ReturnDefinition  ReturnDefinition
	AnnualizationFactor float64
	InputLineage      InputLineage
	Metrics           Metrics
	Exposures         Exposures
	Attribution       Attribution
	Warnings          []Warning
}

// CanonicalPayload implements identity.CanonicalPayload over the report
// body -- everything except the report_version/generated_at_utc/as_of/
// lineage block the shared report.Envelope already carries. Covariance
// diagnostics and warning context maps are not part of the body.
func (r *Report) CanonicalPayload() map[string]any {
	var varEs []any
	for _, level := range sortedConfidenceLevels(r.Metrics.Var) {
		varEs = append(varEs, map[string]any{
			"confidence_level": level,
			"var":              r.Metrics.Var[level],
			"es":               r.Metrics.Es[level],
		})
	}

	contributions := make([]any, len(r.Attribution.VarianceContributions))
	for i, c := range r.Attribution.VarianceContributions {
		contributions[i] = map[string]any{"asset_id": c.AssetID, "component": c.Component}
	}

	warnings := make([]any, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = map[string]any{"code": w.Code, "message": w.Message}
	}

	byAsset := make([]any, len(r.Exposures.ByAsset))
	for i, e := range r.Exposures.ByAsset {
		byAsset[i] = map[string]any{"asset_id": e.AssetID, "weight": e.Weight}
	}
	byCurrency := make([]any, len(r.Exposures.ByCurrency))
	for i, e := range r.Exposures.ByCurrency {
		byCurrency[i] = map[string]any{"currency": e.Currency, "weight": e.Weight}
	}

	return map[string]any{
		"return_definition":    string(r.ReturnDefinition),
		"annualization_factor": r.AnnualizationFactor,
		"metrics": map[string]any{
			"portfolio_vol_annualized":     r.Metrics.PortfolioVolAnnualized,
			"max_drawdown":                 r.Metrics.MaxDrawdown,
			"max_drawdown_time_to_recover": r.Metrics.MaxDrawdownTimeToRecover,
			"tracking_error_annualized":    r.Metrics.TrackingErrorAnnualized,
		},
		"exposures": map[string]any{"by_asset": byAsset, "by_currency": byCurrency},
		"var_es":    varEs,
		"attribution": map[string]any{
			"variance_contributions": contributions,
			"portfolio_variance":     r.Attribution.PortfolioVariance,
			"convention":             r.Attribution.Convention,
		},
		"warnings": warnings,
	}
}

// Envelope assembles this report into the shared report.Envelope shape per
// spec.md section 4.11.
func (r *Report) Envelope() report.Envelope {
	return report.Assemble(r.ReportVersion, r.GeneratedAtUTC, r.AsOf, report.Lineage{
		PortfolioSnapshotHash: r.InputLineage.PortfolioSnapshotHash,
		MarketDataHash:        r.InputLineage.MarketDataBundleHash,
		RequestHash:           r.InputLineage.RequestHash,
		BenchmarkHash:         r.InputLineage.BenchmarkHash,
	}, r)
}

func sortedConfidenceLevels(m map[float64]float64) []float64 {
	levels := make([]float64, 0, len(m))
	for level := range m {
		levels = append(levels, level)
	}
	sort.Float64s(levels)
	return levels
}

func sortWarnings(warnings []Warning) []Warning {
	out := append([]Warning(nil), warnings...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}
