// Package report implements the thin canonical-JSON assembly helpers
// shared by the pricing, risk, and stress report types (C11): a common
// lineage block and an envelope that wraps a report body with a schema
// version, generation timestamp, and as-of date. It carries no domain
// knowledge of pricing/risk/stress itself -- those packages assemble their
// own body payloads and hand them here.
package report

import (
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// Lineage is the common snapshot-identity block every analytical report
// carries. Per spec.md section 4.11, lineage references upstream inputs
// exclusively by content hash and dataset-version tuple, never raw data.
// Fields left empty (their zero value) are omitted from the canonical
// payload rather than serialized as empty strings.
type Lineage struct {
	PortfolioSnapshotHash string
	MarketDataHash        string
	RequestHash           string
	ScenarioSetHash       string
	BenchmarkHash         string
}

// CanonicalPayload implements identity.CanonicalPayload.
func (l Lineage) CanonicalPayload() map[string]any {
	payload := map[string]any{}
	if l.PortfolioSnapshotHash != "" {
		payload["portfolio_snapshot_hash"] = l.PortfolioSnapshotHash
	}
	if l.MarketDataHash != "" {
		payload["market_data_hash"] = l.MarketDataHash
	}
	if l.RequestHash != "" {
		payload["request_hash"] = l.RequestHash
	}
	if l.ScenarioSetHash != "" {
		payload["scenario_set_hash"] = l.ScenarioSetHash
	}
	if l.BenchmarkHash != "" {
		payload["benchmark_hash"] = l.BenchmarkHash
	}
	return payload
}

// Envelope is the shared outer shape every report type assembles into: a
// schema version, generation timestamp, as-of date, lineage block, and a
// body specific to the report kind.
type Envelope struct {
	ReportVersion  string
	GeneratedAtUTC time.Time
	AsOf           time.Time
	Lineage        Lineage
	Body           map[string]any
}

// Assemble builds an Envelope from a report body that already knows how to
// reduce itself to a canonical payload.
func Assemble(reportVersion string, generatedAtUTC, asOf time.Time, lineage Lineage, body identity.CanonicalPayload) Envelope {
	return Envelope{
		ReportVersion:  reportVersion,
		GeneratedAtUTC: generatedAtUTC,
		AsOf:           asOf,
		Lineage:        lineage,
		Body:           body.CanonicalPayload(),
	}
}

// CanonicalPayload implements identity.CanonicalPayload.
func (e Envelope) CanonicalPayload() map[string]any {
	return map[string]any{
		"report_version":   e.ReportVersion,
		"generated_at_utc": identity.FormatTimestampUTC(e.GeneratedAtUTC),
		"as_of":            identity.FormatDate(e.AsOf),
		"lineage":          e.Lineage.CanonicalPayload(),
		"body":             e.Body,
	}
}

// CanonicalJSON serializes the envelope the same way every other content
// hash in the system is computed, so a report's own hash is reproducible
// by any consumer holding the emitted bytes.
func (e Envelope) CanonicalJSON() ([]byte, error) {
	return identity.CanonicalJSON(e.CanonicalPayload())
}

// ContentHash returns content_hash(Envelope).
func (e Envelope) ContentHash() (string, error) {
	return identity.ContentHashOf(e)
}
