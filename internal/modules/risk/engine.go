package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantlab-go/internal/modules/pricing/valuation"
	promMetrics "github.com/aristath/quantlab-go/pkg/metrics"
)

// Engine runs the risk report pipeline described in spec.md section 4.9.
type Engine struct {
	// Metrics is optional; when set, Run publishes run counts and latency
	// to it, labeled by input mode and outcome.
	Metrics *promMetrics.Metrics
	// Logger is optional; the zero value is zerolog's no-op logger.
	Logger zerolog.Logger
}

// Input bundles everything the pipeline needs beyond the Request: the
// aligned price bundle for asset-level metrics, an optional directly
// supplied portfolio return series (InputPortfolioReturns mode), an
// optional benchmark return series aligned to the same dates (for tracking
// error), and an optional valuation snapshot (for exposures).
type Input struct {
	Bundle           PriceBundle
	PortfolioReturns []float64
	BenchmarkReturns []float64
	Valuation        *valuation.PortfolioValuation
	// PortfolioMarketDataIDs is every market_data_id the portfolio being
	// assessed resolves to (skipping instruments with none, e.g. cash or a
	// non-tradable index). Run rejects any ID absent from Bundle per
	// spec.md section 4.9 pipeline step 1.
	PortfolioMarketDataIDs []string
}

// validatePortfolioCoverage implements spec.md section 4.9 pipeline step 1's
// "every market_data_id in portfolio appears in the bundle" check.
func validatePortfolioCoverage(portfolioAssetIDs, bundleAssetIDs []string) error {
	if len(portfolioAssetIDs) == 0 {
		return nil
	}
	present := make(map[string]struct{}, len(bundleAssetIDs))
	for _, id := range bundleAssetIDs {
		present[id] = struct{}{}
	}
	for _, id := range portfolioAssetIDs {
		if _, ok := present[id]; !ok {
			return newInputError("portfolio market_data_id missing from bundle", map[string]any{"market_data_id": id})
		}
	}
	return nil
}

// Run executes the full pipeline: validate, build returns, compute
// volatility/covariance/correlation/drawdown/tracking-error/VaR-ES/
// exposures/attribution, and assemble a Report with lineage. ctx is checked
// for cancellation between stages; the engine performs no I/O itself.
func (e *Engine) Run(ctx context.Context, req Request, in Input) (rep *Report, err error) {
	var allWarnings []Warning

	if e.Metrics != nil {
		start := time.Now()
		mode := string(req.InputMode)
		defer func() {
			e.Metrics.RiskEngineRunDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			e.Metrics.RiskEngineRunTotal.WithLabelValues(mode, outcome).Inc()
		}()
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if req.AnnualizationFactor <= 0 {
		return nil, newInputError("annualization_factor must be positive", nil)
	}
	if err = req.Window.validate(req.AsOf); err != nil {
		return nil, err
	}

	if err = validatePortfolioCoverage(in.PortfolioMarketDataIDs, in.Bundle.AssetIDs); err != nil {
		return nil, err
	}

	assetSeries, warnings, err := BuildReturns(in.Bundle, req.AsOf, req.ReturnDefinition, req.MissingDataPolicy)
	if err != nil {
		return nil, fmt.Errorf("risk: building asset returns: %w", err)
	}
	allWarnings = append(allWarnings, warnings...)

	var portfolioReturns []float64
	switch req.InputMode {
	case InputPortfolioReturns:
		if len(in.PortfolioReturns) == 0 {
			return nil, newInputError("PORTFOLIO_RETURNS mode requires a portfolio return series", nil)
		}
		portfolioReturns = in.PortfolioReturns
	case InputStaticWeightsXAssetReturns:
		pr, err := StaticWeightPortfolioReturns(assetSeries, req.Weights)
		if err != nil {
			return nil, err
		}
		portfolioReturns = pr
		allWarnings = append(allWarnings, Warning{
			Code:    "STATIC_WEIGHTS_APPROXIMATION",
			Message: "approximation ignores intra-window rebalancing",
		})
	default:
		return nil, fmt.Errorf("risk: unsupported input_mode %q", req.InputMode)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics := Metrics{Var: map[float64]float64{}, Es: map[float64]float64{}}

	vol, err := Volatility(portfolioReturns, req.AnnualizationFactor)
	if err != nil {
		return nil, fmt.Errorf("risk: volatility: %w", err)
	}
	metrics.PortfolioVolAnnualized = &vol

	dd, err := Drawdown(portfolioReturns, req.ReturnDefinition)
	if err != nil {
		return nil, fmt.Errorf("risk: drawdown: %w", err)
	}
	metrics.MaxDrawdown = &dd.MaxDrawdown
	metrics.MaxDrawdownTimeToRecover = dd.TimeToRecovery

	if len(in.BenchmarkReturns) > 0 {
		te, err := TrackingError(portfolioReturns, in.BenchmarkReturns, req.AnnualizationFactor)
		if err != nil {
			return nil, fmt.Errorf("risk: tracking error: %w", err)
		}
		metrics.TrackingErrorAnnualized = &te
	}

	varEs, warnings, err := HistoricalVarEs(portfolioReturns, req.ConfidenceLevels)
	if err != nil {
		return nil, fmt.Errorf("risk: var/es: %w", err)
	}
	allWarnings = append(allWarnings, warnings...)
	for _, r := range varEs {
		metrics.Var[r.ConfidenceLevel] = r.Var
		metrics.Es[r.ConfidenceLevel] = r.Es
		if r.Es < r.Var-1e-9 {
			return nil, newInputError("ES must be >= VaR", map[string]any{"confidence_level": r.ConfidenceLevel, "var": r.Var, "es": r.Es})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cov, err := SampleCovariance(assetSeries, req.AnnualizationFactor)
	if err != nil {
		return nil, fmt.Errorf("risk: covariance: %w", err)
	}
	metrics.CovarianceDiagnostics = &CovarianceDiagnosticsReport{
		SampleSize:       cov.Diagnostics.SampleSize,
		SymmetryMaxError: cov.Diagnostics.SymmetryMaxError,
		IsSymmetric:      cov.Diagnostics.IsSymmetric,
		Estimator:        string(cov.Diagnostics.Estimator),
	}

	var exposures Exposures
	if in.Valuation != nil {
		byAsset, w := AssetExposuresFromValuation(*in.Valuation)
		allWarnings = append(allWarnings, w...)
		byCcy, w := CurrencyExposuresFromValuation(*in.Valuation)
		allWarnings = append(allWarnings, w...)
		exposures = Exposures{ByAsset: byAsset, ByCurrency: byCcy}
	}

	var attribution Attribution
	if req.InputMode == InputStaticWeightsXAssetReturns {
		attr, err := VarianceAttribution(cov, req.Weights)
		if err != nil {
			return nil, fmt.Errorf("risk: variance attribution: %w", err)
		}
		contributions := make([]VarianceContribution, len(attr.AssetIDs))
		for i, id := range attr.AssetIDs {
			contributions[i] = VarianceContribution{AssetID: id, Component: attr.Contributions[i]}
		}
		attribution = Attribution{
			VarianceContributions: contributions,
			PortfolioVariance:     attr.PortfolioVariance,
			Convention:            attr.Convention,
		}
	}

	requestHash, err := req.RequestHash()
	if err != nil {
		return nil, fmt.Errorf("risk: hashing request: %w", err)
	}

	logger := e.Logger.With().Str("request_hash", requestHash).Logger()
	logger.Info().Str("input_mode", string(req.InputMode)).Msg("risk: run complete")

	return &Report{
		ReportVersion:       ReportVersion,
		GeneratedAtUTC:      time.Now().UTC(),
		AsOf:                req.AsOf,
		ReturnDefinition:    req.ReturnDefinition,
		AnnualizationFactor: req.AnnualizationFactor,
		InputLineage: InputLineage{
			PortfolioSnapshotHash: req.PortfolioSnapshotHash,
			MarketDataBundleHash:  req.MarketDataBundleHash,
			RequestHash:           requestHash,
			BenchmarkHash:         req.BenchmarkHash,
		},
		Metrics:     metrics,
		Exposures:   exposures,
		Attribution: attribution,
		Warnings:    sortWarnings(allWarnings),
	}, nil
}
