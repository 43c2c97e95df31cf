package valuation

import (
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/report"
)

// ReportVersion is the schema tag stamped on every valuation envelope.
const ReportVersion = "1.0"

// CanonicalPayload implements identity.CanonicalPayload over the
// valuation body -- the shared report.Envelope carries report_version/
// generated_at_utc/as_of/lineage.
func (v PortfolioValuation) CanonicalPayload() map[string]any {
	positions := make([]any, len(v.Positions))
	for i, p := range v.Positions {
		positions[i] = map[string]any{
			"instrument_id":     p.InstrumentID,
			"asset_id_used":     p.AssetIDUsed,
			"unit_price":        p.UnitPrice,
			"quantity":          p.Quantity,
			"notional_native":   p.NotionalNative,
			"native_currency":   p.NativeCurrency,
			"notional_base":     p.NotionalBase,
			"fx_asset_id_used":  p.FxAssetIDUsed,
			"fx_inverted":       p.FxInverted,
			"fx_rate_effective": p.FxRateEffective,
		}
	}

	currencies := make([]string, 0, len(v.BreakdownByCcy))
	for ccy := range v.BreakdownByCcy {
		currencies = append(currencies, ccy)
	}
	sort.Strings(currencies)
	breakdown := make(map[string]any, len(currencies))
	for _, ccy := range currencies {
		bd := v.BreakdownByCcy[ccy]
		breakdown[ccy] = map[string]any{
			"notional_native": bd.NotionalNative,
			"notional_base":   bd.NotionalBase,
		}
	}

	warnings := make([]any, len(v.Warnings))
	for i, w := range v.Warnings {
		warnings[i] = w
	}

	return map[string]any{
		"base_currency":    v.BaseCurrency,
		"nav_base":         v.NavBase,
		"positions":        positions,
		"breakdown_by_ccy": breakdown,
		"warnings":         warnings,
	}
}

// Envelope assembles this valuation into the shared report.Envelope shape
// per spec.md section 4.11. Valuation carries no request/scenario hash of
// its own; callers that hold the source Portfolio's SnapshotHash pass it
// through for lineage.
func (v PortfolioValuation) Envelope(generatedAtUTC time.Time, portfolioSnapshotHash string) report.Envelope {
	return report.Assemble(ReportVersion, generatedAtUTC, v.AsOf, report.Lineage{
		PortfolioSnapshotHash: portfolioSnapshotHash,
	}, v)
}
