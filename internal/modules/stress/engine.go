package stress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantlab-go/internal/modules/data/schema"
	"github.com/aristath/quantlab-go/internal/modules/instruments"
	"github.com/aristath/quantlab-go/pkg/metrics"
)

// topKDefault bounds the summary's top_k_losses and top_drivers lists when
// the caller doesn't request a different depth.
const topKDefault = 5

// Engine orchestrates the stress pipeline: shock application, linear
// revaluation, aggregation, and summary assembly. It performs no I/O --
// callers resolve positions, instruments, and base prices beforehand.
type Engine struct {
	// TopK overrides topKDefault when > 0.
	TopK int
	// Metrics is optional; when set, Run publishes scenario counts and
	// warning counts to it.
	Metrics *metrics.Metrics
	// Logger is optional; the zero value is zerolog's no-op logger.
	Logger zerolog.Logger
}

// Input bundles everything one Run call needs to stress a single
// portfolio against a scenario set.
type Input struct {
	Positions        []instruments.Position
	InstrumentsByID  map[schema.InstrumentId]instruments.Instrument
	BasePrices       map[string]float64 // market_data_id -> price
	Nav              float64
	PortfolioSnapshotHash string
	MarketStateHash       string
}

func (e *Engine) topK() int {
	if e.TopK > 0 {
		return e.TopK
	}
	return topKDefault
}

// Run executes the full stress pipeline for every scenario in scenarioSet
// and assembles a Report.
func (e *Engine) Run(ctx context.Context, scenarioSet ScenarioSet, in Input) (*Report, error) {
	if err := scenarioSet.Validate(); err != nil {
		return nil, err
	}
	if len(in.Positions) == 0 {
		return nil, newInputError("positions must be non-empty", nil)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if e.Metrics != nil {
		start := time.Now()
		defer func() { e.Metrics.StressEngineRunDuration.Observe(time.Since(start).Seconds()) }()
	}

	scenarioSetHash, err := scenarioSet.Hash()
	if err != nil {
		return nil, fmt.Errorf("stress: hash scenario set: %w", err)
	}
	log := e.Logger.With().Str("scenario_set_hash", scenarioSetHash).Logger()
	log.Debug().Int("scenarios", len(scenarioSet.sortedScenarios())).Int("positions", len(in.Positions)).Msg("stress: run starting")

	var warnings []Warning
	var scenarioResults []ScenarioResult
	var byPosition []BreakdownByPosition
	var byAsset []BreakdownByAsset
	var byCurrency []BreakdownByCurrency

	for _, scenario := range scenarioSet.sortedScenarios() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if e.Metrics != nil {
			e.Metrics.StressScenariosRun.Inc()
		}

		shockedPrices, shockWarnings, err := ApplyShocksToPrices(in.BasePrices, scenario.ShockVector, scenario.ShockConvention, scenarioSet.MissingShockPolicy)
		if err != nil {
			return nil, fmt.Errorf("stress: scenario %s: %w", scenario.ScenarioID, err)
		}
		warnings = append(warnings, taggedWarnings(shockWarnings, scenario.ScenarioID)...)

		var positionPnls []PositionPnl
		var scenarioPnl float64
		for _, pos := range in.Positions {
			instrument, ok := in.InstrumentsByID[pos.InstrumentID]
			if !ok {
				return nil, newInputError("instrument not found for position", map[string]any{
					"instrument_id": string(pos.InstrumentID),
				})
			}

			pnl, err := LinearPositionPnl(pos, instrument, in.BasePrices, shockedPrices)
			if err != nil {
				return nil, fmt.Errorf("stress: scenario %s: %w", scenario.ScenarioID, err)
			}
			scenarioPnl += pnl

			assetID := ""
			if mid := instrument.MarketDataID(); mid != nil {
				assetID = string(*mid)
			}
			currency := ""
			if ccy := instrument.Currency(); ccy != nil {
				currency = string(*ccy)
			}

			positionPnls = append(positionPnls, PositionPnl{
				PositionID: string(pos.InstrumentID),
				AssetID:    assetID,
				Currency:   currency,
				Pnl:        pnl,
			})
			byPosition = append(byPosition, BreakdownByPosition{
				PositionID: string(pos.InstrumentID), ScenarioID: scenario.ScenarioID, Pnl: pnl,
			})
			if assetID != "" {
				byAsset = append(byAsset, BreakdownByAsset{
					AssetID: assetID, ScenarioID: scenario.ScenarioID, Pnl: pnl,
				})
			}
			if currency != "" {
				byCurrency = append(byCurrency, BreakdownByCurrency{
					Currency: currency, ScenarioID: scenario.ScenarioID, Pnl: pnl,
				})
			}
		}

		if err := reconcile(scenarioPnl, positionPnls, scenario.ScenarioID); err != nil {
			return nil, err
		}

		scenarioReturn := 0.0
		if in.Nav > 0 {
			scenarioReturn = scenarioPnl / in.Nav
		} else {
			warnings = append(warnings, Warning{
				Code:    "STRESS_NAV_NONPOSITIVE",
				Message: "NAV is non-positive; scenario return set to zero",
				Context: map[string]any{"scenario_id": scenario.ScenarioID},
			})
		}

		drivers := sortTopDrivers(positionPnls)
		if len(drivers) > e.topK() {
			drivers = drivers[:e.topK()]
		}

		scenarioResults = append(scenarioResults, ScenarioResult{
			ScenarioID: scenario.ScenarioID,
			Pnl:        scenarioPnl,
			DeltaNav:   scenarioPnl,
			Return:     scenarioReturn,
			TopDrivers: drivers,
		})
	}

	sort.Slice(scenarioResults, func(i, j int) bool {
		return scenarioResults[i].ScenarioID < scenarioResults[j].ScenarioID
	})

	summary := summarize(scenarioResults, e.topK())

	if e.Metrics != nil {
		for _, w := range warnings {
			e.Metrics.StressWarningsTotal.WithLabelValues(w.Code).Inc()
		}
	}
	log.Info().Int("warnings", len(warnings)).Msg("stress: run complete")

	rep := &Report{
		ReportVersion:  ReportVersion,
		GeneratedAtUTC: time.Now().UTC(),
		AsOf:           scenarioSet.AsOf,
		InputLineage: InputLineage{
			PortfolioSnapshotHash: in.PortfolioSnapshotHash,
			MarketStateHash:       in.MarketStateHash,
			ScenarioSetHash:       scenarioSetHash,
		},
		ScenarioResults: scenarioResults,
		Breakdowns: Breakdowns{
			ByPosition: byPosition,
			ByAsset:    byAsset,
			ByCurrency: byCurrency,
		},
		Summary:   summary,
		Warnings:  sortWarnings(warnings),
		Statement: disclaimerStatement,
	}
	return rep, nil
}

func taggedWarnings(warnings []Warning, scenarioID string) []Warning {
	out := make([]Warning, len(warnings))
	for i, w := range warnings {
		ctx := map[string]any{"scenario_id": scenarioID}
		for k, v := range w.Context {
			ctx[k] = v
		}
		out[i] = Warning{Code: w.Code, Message: w.Message, Context: ctx}
	}
	return out
}

func reconcile(total float64, positions []PositionPnl, scenarioID string) error {
	sum := 0.0
	for _, p := range positions {
		sum += p.Pnl
	}
	diff := sum - total
	if diff < -reconciliationTolerance || diff > reconciliationTolerance {
		return newInputError("position breakdown does not reconcile to scenario total", map[string]any{
			"scenario_id": scenarioID, "sum": sum, "total": total,
		})
	}
	return nil
}

func summarize(results []ScenarioResult, topK int) Summary {
	if len(results) == 0 {
		return Summary{}
	}

	worst := results[0]
	var allDrivers []PositionPnl
	returns := make([]float64, 0, len(results))
	losses := make([]ScenarioLoss, 0, len(results))
	for _, r := range results {
		if r.Pnl < worst.Pnl {
			worst = r
		}
		returns = append(returns, r.Return)
		losses = append(losses, ScenarioLoss{ScenarioID: r.ScenarioID, Pnl: r.Pnl, Return: r.Return})
		allDrivers = append(allDrivers, r.TopDrivers...)
	}

	sortedReturns := append([]float64(nil), returns...)
	sort.Float64s(sortedReturns)

	topLosses := sortTopLosses(losses)
	if len(topLosses) > topK {
		topLosses = topLosses[:topK]
	}

	topDrivers := sortTopDrivers(worst.TopDrivers)
	if len(topDrivers) > topK {
		topDrivers = topDrivers[:topK]
	}

	return Summary{
		WorstScenarioID: worst.ScenarioID,
		MaxLoss:         worst.Pnl,
		MaxLossReturn:   worst.Return,
		MinReturn:       sortedReturns[0],
		MedianReturn:    median(sortedReturns),
		MaxReturn:       sortedReturns[len(sortedReturns)-1],
		TopKLosses:      topLosses,
		TopDrivers:      topDrivers,
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
