package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/aristath/quantlab-go/internal/modules/data/identity"
)

// SessionRule is the per-MIC regular-close entry loaded from the session
// rules seed file.
type SessionRule struct {
	MIC               string
	RegularCloseLocal string // "HH:MM:SS" wall-clock time
	TimezoneLocal     string // IANA timezone name, e.g. "America/New_York"
	ValidFrom         time.Time
	ValidTo           time.Time // zero value means open-ended
}

func (r SessionRule) canonicalPayload() map[string]any {
	payload := map[string]any{
		"mic":                 r.MIC,
		"regular_close_local": r.RegularCloseLocal,
		"timezone_local":      r.TimezoneLocal,
		"valid_from":          identity.FormatDate(r.ValidFrom),
	}
	if !r.ValidTo.IsZero() {
		payload["valid_to"] = identity.FormatDate(r.ValidTo)
	} else {
		payload["valid_to"] = nil
	}
	return payload
}

func (r SessionRule) appliesOn(date time.Time) bool {
	if date.Before(r.ValidFrom) {
		return false
	}
	if !r.ValidTo.IsZero() && date.After(r.ValidTo) {
		return false
	}
	return true
}

// SessionRulesSnapshot is a versioned, hashed table of SessionRules, one
// entry per MIC (unique-mic invariant enforced at construction).
type SessionRulesSnapshot struct {
	Version          string
	Rules            []SessionRule
	SessionRulesHash string
}

type sessionRulesSeedFile struct {
	Version string `json:"version"`
	Rules   []struct {
		MIC               string `json:"mic"`
		RegularCloseLocal string `json:"regular_close_local"`
		TimezoneLocal     string `json:"timezone_local"`
		ValidFrom         string `json:"valid_from"`
		ValidTo           string `json:"valid_to,omitempty"`
	} `json:"rules"`
}

// NewSessionRulesSnapshot validates the unique-mic invariant, sorts rules by
// MIC, and computes the deterministic sessionrules_hash.
func NewSessionRulesSnapshot(version string, rules []SessionRule) (*SessionRulesSnapshot, error) {
	seen := make(map[string]struct{}, len(rules))
	sorted := make([]SessionRule, len(rules))
	copy(sorted, rules)
	for _, r := range sorted {
		if _, dup := seen[r.MIC]; dup {
			return nil, fmt.Errorf("calendar: duplicate session rule for mic %q", r.MIC)
		}
		seen[r.MIC] = struct{}{}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MIC < sorted[j].MIC })

	snap := &SessionRulesSnapshot{Version: version, Rules: sorted}
	hash, err := identity.ContentHashOf(snap)
	if err != nil {
		return nil, fmt.Errorf("calendar: hash session rules: %w", err)
	}
	snap.SessionRulesHash = hash
	return snap, nil
}

// CanonicalPayload implements identity.CanonicalPayload.
func (s *SessionRulesSnapshot) CanonicalPayload() map[string]any {
	rules := make([]any, len(s.Rules))
	for i, r := range s.Rules {
		rules[i] = r.canonicalPayload()
	}
	return map[string]any{
		"version": s.Version,
		"rules":   rules,
	}
}

// CloseFor returns the regular close wall-clock time and timezone for mic on
// tradingDate, if a rule is in force on that date.
func (s *SessionRulesSnapshot) CloseFor(mic string, tradingDate time.Time) (closeLocal, tz string, ok bool) {
	for _, r := range s.Rules {
		if r.MIC == mic && r.appliesOn(tradingDate) {
			return r.RegularCloseLocal, r.TimezoneLocal, true
		}
	}
	return "", "", false
}

// LoadSeedSessionRules reads a session-rules seed file (JSON) from path and
// builds a hashed snapshot.
func LoadSeedSessionRules(path string) (*SessionRulesSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calendar: read session rules seed %s: %w", path, err)
	}
	var seed sessionRulesSeedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("calendar: parse session rules seed %s: %w", path, err)
	}

	rules := make([]SessionRule, 0, len(seed.Rules))
	for _, r := range seed.Rules {
		validFrom, err := time.Parse("2006-01-02", r.ValidFrom)
		if err != nil {
			return nil, fmt.Errorf("calendar: session rule %s: bad valid_from: %w", r.MIC, err)
		}
		var validTo time.Time
		if r.ValidTo != "" {
			validTo, err = time.Parse("2006-01-02", r.ValidTo)
			if err != nil {
				return nil, fmt.Errorf("calendar: session rule %s: bad valid_to: %w", r.MIC, err)
			}
		}
		rules = append(rules, SessionRule{
			MIC:               r.MIC,
			RegularCloseLocal: r.RegularCloseLocal,
			TimezoneLocal:     r.TimezoneLocal,
			ValidFrom:         validFrom,
			ValidTo:           validTo,
		})
	}

	return NewSessionRulesSnapshot(seed.Version, rules)
}
