package stress

import (
	"sort"
	"strings"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// ShockConvention selects the shock-to-price mapping.
type ShockConvention string

const (
	// MultReturn applies P' = P * (1 + shock). The spec's default.
	MultReturn ShockConvention = "MULT_RETURN"
	// MultFactor applies P' = P * shock directly.
	MultFactor ShockConvention = "MULT_FACTOR"
)

// MissingShockPolicy controls behavior when a portfolio asset has no entry
// in a scenario's shock vector.
type MissingShockPolicy string

const (
	MissingShockZeroWithWarning MissingShockPolicy = "ZERO_WITH_WARNING"
	MissingShockError           MissingShockPolicy = "ERROR"
)

// ScenarioType tags the three scenario variants. All three share the same
// structure; the tag exists to preserve provenance (how the shock vector
// was produced) through serialization and reporting.
type ScenarioType string

const (
	TypeParametricShock   ScenarioType = "ParametricShock"
	TypeCustomShockVector ScenarioType = "CustomShockVector"
	TypeHistoricalShock   ScenarioType = "HistoricalShock"
)

// Scenario is a single named shock vector applied against one or more
// market_data_ids. HistoricalShock scenarios carry PeriodTag for
// provenance; the vector itself must already be materialized by the
// caller -- this package never fetches historical data.
type Scenario struct {
	ScenarioID      string
	Name            string
	Type            ScenarioType
	ShockConvention ShockConvention
	ShockVector     map[string]float64
	Tags            []string
	PeriodTag       string // set only for Type == TypeHistoricalShock
}

// Validate enforces the non-empty id/name/vector invariants spec.md
// section 4.10 requires of every scenario variant.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.ScenarioID) == "" {
		return newScenarioError("scenario_id must be non-empty", nil)
	}
	if strings.TrimSpace(s.Name) == "" {
		return newScenarioError("name must be non-empty", map[string]any{"scenario_id": s.ScenarioID})
	}
	if len(s.ShockVector) == 0 {
		return newScenarioError("shock_vector must be non-empty", map[string]any{"scenario_id": s.ScenarioID})
	}
	for assetID := range s.ShockVector {
		if strings.TrimSpace(assetID) == "" {
			return newScenarioError("shock_vector keys must be non-empty", map[string]any{"scenario_id": s.ScenarioID})
		}
	}
	switch s.ShockConvention {
	case MultReturn, MultFactor:
	default:
		return newScenarioError("unknown shock_convention", map[string]any{
			"scenario_id":      s.ScenarioID,
			"shock_convention": string(s.ShockConvention),
		})
	}
	return nil
}

// CanonicalPayload implements identity.CanonicalPayload. Tags and the
// shock vector are normalized (sorted, deduplicated) so two logically
// identical scenarios hash identically regardless of construction order.
func (s Scenario) CanonicalPayload() map[string]any {
	shockVector := make(map[string]any, len(s.ShockVector))
	for assetID, shock := range s.ShockVector {
		shockVector[assetID] = shock
	}
	payload := map[string]any{
		"scenario_id":      s.ScenarioID,
		"name":             s.Name,
		"type":             string(s.Type),
		"shock_convention": string(s.ShockConvention),
		"shock_vector":     shockVector,
	}
	if len(s.Tags) > 0 {
		tags := identity.SortUnique(s.Tags)
		tagsAny := make([]any, len(tags))
		for i, t := range tags {
			tagsAny[i] = t
		}
		payload["tags"] = tagsAny
	}
	return payload
}

// ScenarioSet is a collection of scenarios evaluated together, with a
// deterministic canonical hash independent of insertion order.
type ScenarioSet struct {
	AsOf               time.Time
	ShockConvention    ShockConvention // optional: if set, every scenario must match
	MissingShockPolicy MissingShockPolicy
	Scenarios          []Scenario
}

// Validate enforces non-empty, unique scenario_ids and, when the set
// declares a ShockConvention, that every scenario agrees with it.
func (ss ScenarioSet) Validate() error {
	if len(ss.Scenarios) == 0 {
		return newScenarioError("scenarios must be non-empty", nil)
	}
	seen := make(map[string]struct{}, len(ss.Scenarios))
	for _, sc := range ss.Scenarios {
		if err := sc.Validate(); err != nil {
			return err
		}
		if _, dup := seen[sc.ScenarioID]; dup {
			return newScenarioError("scenario_id values must be unique", map[string]any{"scenario_id": sc.ScenarioID})
		}
		seen[sc.ScenarioID] = struct{}{}
		if ss.ShockConvention != "" && sc.ShockConvention != ss.ShockConvention {
			return newScenarioError("scenario shock_convention must match scenario set shock_convention", map[string]any{
				"scenario_id": sc.ScenarioID,
			})
		}
	}
	switch ss.MissingShockPolicy {
	case MissingShockZeroWithWarning, MissingShockError:
	default:
		return newScenarioError("unknown missing_shock_policy", map[string]any{
			"missing_shock_policy": string(ss.MissingShockPolicy),
		})
	}
	return nil
}

// sortedScenarios returns a copy of ss.Scenarios sorted by scenario_id, the
// stable order spec.md section 4.10 requires both for hashing and for
// report serialization.
func (ss ScenarioSet) sortedScenarios() []Scenario {
	out := make([]Scenario, len(ss.Scenarios))
	copy(out, ss.Scenarios)
	sort.Slice(out, func(i, j int) bool { return out[i].ScenarioID < out[j].ScenarioID })
	return out
}

// CanonicalPayload implements identity.CanonicalPayload.
func (ss ScenarioSet) CanonicalPayload() map[string]any {
	scenarios := ss.sortedScenarios()
	scenarioPayloads := make([]any, len(scenarios))
	for i, sc := range scenarios {
		scenarioPayloads[i] = sc.CanonicalPayload()
	}
	payload := map[string]any{
		"as_of":                identity.FormatDate(ss.AsOf),
		"missing_shock_policy": string(ss.MissingShockPolicy),
		"scenarios":            scenarioPayloads,
	}
	if ss.ShockConvention != "" {
		payload["shock_convention"] = string(ss.ShockConvention)
	}
	return payload
}

// Hash returns content_hash(ScenarioSet), stable under scenario reordering.
func (ss ScenarioSet) Hash() (string, error) {
	return identity.ContentHashOf(ss)
}
