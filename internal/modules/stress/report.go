package stress

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/report"
)

// ReportVersion is the stable schema tag stamped on every Report.
const ReportVersion = "1.0"

// reconciliationTolerance bounds the acceptable drift between a sum of
// breakdown components and the portfolio total they should reconcile to.
const reconciliationTolerance = 1e-6

// InputLineage records identifiers/hashes for upstream inputs -- never raw
// data, per SPEC_FULL.md's report-assembly discipline.
type InputLineage struct {
	PortfolioSnapshotHash string
	MarketStateHash       string
	ScenarioSetHash       string
}

// PositionPnl is one position's P&L under one scenario.
type PositionPnl struct {
	PositionID   string
	AssetID      string
	Currency     string
	Pnl          float64
}

// ScenarioResult is the per-scenario outcome: total portfolio P&L, the
// resulting NAV delta, the return on starting NAV, and the top
// contributors by |P&L|.
type ScenarioResult struct {
	ScenarioID  string
	Pnl         float64
	DeltaNav    float64
	Return      float64
	TopDrivers  []PositionPnl
}

// BreakdownByPosition / BreakdownByAsset / BreakdownByCurrency are the
// three aggregation cuts spec.md section 4.10 requires.
type BreakdownByPosition struct {
	PositionID string
	ScenarioID string
	Pnl        float64
}

type BreakdownByAsset struct {
	AssetID    string
	ScenarioID string
	Pnl        float64
}

type BreakdownByCurrency struct {
	Currency   string
	ScenarioID string
	Pnl        float64
}

type Breakdowns struct {
	ByPosition []BreakdownByPosition
	ByAsset    []BreakdownByAsset
	ByCurrency []BreakdownByCurrency
}

// ScenarioLoss is a scenario's P&L/return pair, used for the report's
// top_k_losses ranking.
type ScenarioLoss struct {
	ScenarioID string
	Pnl        float64
	Return     float64
}

// Summary carries the scenario-set level statistics. Per spec.md section
// 4.10 these are explicitly NOT probabilities and NOT a VaR estimate --
// Report.Statement carries that disclaimer verbatim.
type Summary struct {
	WorstScenarioID string
	MaxLoss         float64
	MaxLossReturn   float64
	MinReturn       float64
	MedianReturn    float64
	MaxReturn       float64
	TopKLosses      []ScenarioLoss
	TopDrivers      []PositionPnl
}

// Report is the full, deterministic stress-test output.
type Report struct {
	ReportVersion  string
	GeneratedAtUTC time.Time
	AsOf           time.Time
	InputLineage   InputLineage
	ScenarioResults []ScenarioResult
	Breakdowns     Breakdowns
	Summary        Summary
	Warnings       []Warning
	Statement      string
}

const disclaimerStatement = "scenario-set metrics are not probabilities and are not VaR"

// CanonicalPayload implements identity.CanonicalPayload over the report
// body -- the shared report.Envelope carries report_version/
// generated_at_utc/as_of/lineage.
func (r *Report) CanonicalPayload() map[string]any {
	scenarios := make([]any, len(r.ScenarioResults))
	for i, sr := range r.ScenarioResults {
		scenarios[i] = map[string]any{
			"scenario_id": sr.ScenarioID,
			"pnl":         sr.Pnl,
			"delta_nav":   sr.DeltaNav,
			"return":      sr.Return,
		}
	}
	warnings := make([]any, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = map[string]any{"code": w.Code, "message": w.Message}
	}
	return map[string]any{
		"statement":        r.Statement,
		"scenario_results": scenarios,
		"summary": map[string]any{
			"worst_scenario_id": r.Summary.WorstScenarioID,
			"max_loss":          r.Summary.MaxLoss,
			"max_loss_return":   r.Summary.MaxLossReturn,
			"min_return":        r.Summary.MinReturn,
			"median_return":     r.Summary.MedianReturn,
			"max_return":        r.Summary.MaxReturn,
		},
		"warnings": warnings,
	}
}

// Envelope assembles this report into the shared report.Envelope shape per
// spec.md section 4.11.
func (r *Report) Envelope() report.Envelope {
	return report.Assemble(r.ReportVersion, r.GeneratedAtUTC, r.AsOf, report.Lineage{
		PortfolioSnapshotHash: r.InputLineage.PortfolioSnapshotHash,
		MarketDataHash:        r.InputLineage.MarketStateHash,
		ScenarioSetHash:       r.InputLineage.ScenarioSetHash,
	}, r)
}

func sortWarnings(warnings []Warning) []Warning {
	out := make([]Warning, len(warnings))
	copy(out, warnings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func sortTopDrivers(drivers []PositionPnl) []PositionPnl {
	out := make([]PositionPnl, len(drivers))
	copy(out, drivers)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Pnl), math.Abs(out[j].Pnl)
		if ai != aj {
			return ai > aj
		}
		return out[i].PositionID < out[j].PositionID
	})
	return out
}

func sortTopLosses(losses []ScenarioLoss) []ScenarioLoss {
	out := make([]ScenarioLoss, len(losses))
	copy(out, losses)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pnl != out[j].Pnl {
			return out[i].Pnl < out[j].Pnl
		}
		return out[i].ScenarioID < out[j].ScenarioID
	})
	return out
}
