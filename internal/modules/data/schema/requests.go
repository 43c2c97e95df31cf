package schema

import (
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// MissingDataPolicyKind selects how the access service treats gaps after
// reindexing onto the target calendar.
type MissingDataPolicyKind string

const (
	MissingNanOK     MissingDataPolicyKind = "NAN_OK"
	MissingDropDates MissingDataPolicyKind = "DROP_DATES"
	MissingError     MissingDataPolicyKind = "ERROR"
)

// MissingDataPolicy configures the access service's handling of reindex gaps.
type MissingDataPolicy struct {
	Policy          MissingDataPolicyKind
	MinCoverage     float64 // fraction in [0,1], 0 means unset/no minimum
	AssetDropPolicy string  // e.g. "DROP" or "KEEP"; optional, empty means unset
}

func (p MissingDataPolicy) canonicalPayload() map[string]any {
	return map[string]any{
		"policy":            string(p.Policy),
		"min_coverage":       p.MinCoverage,
		"asset_drop_policy": p.AssetDropPolicy,
	}
}

// DuplicateDiscipline controls how the access service resolves duplicate
// dates within one asset's series.
type DuplicateDiscipline string

const (
	DuplicateLast  DuplicateDiscipline = "LAST"
	DuplicateFirst DuplicateDiscipline = "FIRST"
	DuplicateError DuplicateDiscipline = "ERROR"
)

// ValidationPolicy configures the access service's data-quality guardrails.
type ValidationPolicy struct {
	NoNonpositivePrices      bool
	Deduplicate              DuplicateDiscipline
	MaxAbsReturn             float64 // 0 means unset (no outlier cap)
	CorpActionJumpThreshold  float64 // default 0.40 per spec.md section 4.6
	MonotonicIndex           bool
	TypeChecks               bool
}

// DefaultValidationPolicy returns the spec.md section 4.6 default policy.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		NoNonpositivePrices:     true,
		Deduplicate:             DuplicateLast,
		CorpActionJumpThreshold: 0.40,
		MonotonicIndex:          true,
		TypeChecks:              true,
	}
}

func (p ValidationPolicy) canonicalPayload() map[string]any {
	return map[string]any{
		"no_nonpositive_prices":      p.NoNonpositivePrices,
		"deduplicate":                string(p.Deduplicate),
		"max_abs_return":             p.MaxAbsReturn,
		"corp_action_jump_threshold": p.CorpActionJumpThreshold,
		"monotonic_index":            p.MonotonicIndex,
		"type_checks":                p.TypeChecks,
	}
}

// CalendarSpec names the venue calendar a request aligns to.
type CalendarSpec struct {
	MIC string
}

func (c CalendarSpec) canonicalPayload() map[string]any {
	return map[string]any{"mic": c.MIC}
}

// AlignmentPolicy controls how per-asset series are reindexed onto the
// target calendar.
type AlignmentPolicy struct {
	Calendar CalendarSpec
}

func (p AlignmentPolicy) canonicalPayload() map[string]any {
	return map[string]any{"calendar": p.Calendar.canonicalPayload()}
}

// TimeSeriesRequest is the access service's request type. content_hash of
// its canonical dict is the request_hash used for manifest/cache lookup.
type TimeSeriesRequest struct {
	DatasetID          string
	Assets             []string
	Fields             []string
	Start              time.Time
	End                time.Time
	Calendar           CalendarSpec
	Missing            MissingDataPolicy
	Validation         ValidationPolicy
	AsOf               *time.Time // optional; nil means "latest as of now"
	PriceType          string     // e.g. "raw" or "adjusted"
}

// CanonicalPayload implements identity.CanonicalPayload. Assets and fields
// are sorted (set semantics); dates are ISO; policies are fully included;
// as_of is included even when nil.
func (r TimeSeriesRequest) CanonicalPayload() map[string]any {
	assets := identity.SortUnique(r.Assets)
	assetsAny := make([]any, len(assets))
	for i, a := range assets {
		assetsAny[i] = a
	}
	fields := identity.SortUnique(r.Fields)
	fieldsAny := make([]any, len(fields))
	for i, f := range fields {
		fieldsAny[i] = f
	}

	payload := map[string]any{
		"dataset_id": r.DatasetID,
		"assets":     assetsAny,
		"fields":     fieldsAny,
		"start":      identity.FormatDate(r.Start),
		"end":        identity.FormatDate(r.End),
		"calendar":   r.Calendar.canonicalPayload(),
		"missing":    r.Missing.canonicalPayload(),
		"validation": r.Validation.canonicalPayload(),
		"price_type": r.PriceType,
	}
	if r.AsOf != nil {
		payload["as_of"] = identity.FormatTimestampUTC(*r.AsOf)
	} else {
		payload["as_of"] = nil
	}
	return payload
}

// RequestHash returns content_hash(canonical_dict(r)), the request_hash
// used to key the access service's manifest cache.
func (r TimeSeriesRequest) RequestHash() (string, error) {
	return identity.ContentHashOf(r)
}

// Validate checks structural invariants a malformed request would violate.
func (r TimeSeriesRequest) Validate() error {
	verr := &ValidationError{}
	if r.DatasetID == "" {
		verr.Add("dataset_id", "must not be empty")
	}
	if len(r.Assets) == 0 {
		verr.Add("assets", "must not be empty")
	}
	if len(r.Fields) == 0 {
		verr.Add("fields", "must not be empty")
	}
	if r.End.Before(r.Start) {
		verr.Add("end", "must not be before start")
	}
	return verr.OrNil()
}
