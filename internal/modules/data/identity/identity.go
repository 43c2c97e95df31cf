// Package identity implements the single deterministic hashing routine every
// QuantLab boundary uses to derive content hashes, request fingerprints, and
// snapshot identity: canonical dict -> canonical JSON -> SHA-256. Every piece
// of identity in the system MUST go through CanonicalJSON/ContentHash; a
// second ad-hoc serialization path would let hashes drift from each other.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// CanonicalPayload is implemented by any type that knows how to reduce
// itself to a plain map[string]any tree for hashing and serialization.
// Implementations are responsible for presenting set-like fields as
// pre-sorted slices (SortStrings below) -- CanonicalJSON only pins map key
// order and numeric/time encoding, it does not know which slices are sets.
type CanonicalPayload interface {
	CanonicalPayload() map[string]any
}

// SortStrings returns a sorted copy of ss, used by CanonicalPayload
// implementations to normalize set-like fields (tags, quality flags, asset
// lists) before they enter a canonical dict.
func SortStrings(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}

// SortUnique returns a sorted, de-duplicated copy of ss.
func SortUnique(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// FormatTimestampUTC encodes t as ISO-8601 with an explicit UTC offset
// ("Z"), the only timestamp encoding CanonicalJSON accepts. Callers must
// convert local/offset timestamps to UTC before building a canonical dict.
func FormatTimestampUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999999Z")
}

// FormatDate encodes d as an ISO-8601 calendar date (YYYY-MM-DD), used for
// date-only fields such as trading_date_local.
func FormatDate(d time.Time) string {
	return d.Format("2006-01-02")
}

// CanonicalDict reduces v to its normalized map[string]any tree. It is a
// thin wrapper over v.CanonicalPayload() kept separate so call sites read
// naturally ("canonical_dict(x)" in the spec) and so future cross-cutting
// normalization (e.g. a finiteness pre-pass) has one place to live.
func CanonicalDict(v CanonicalPayload) map[string]any {
	return v.CanonicalPayload()
}

// CanonicalJSON serializes a canonical dict tree with sorted keys, compact
// separators, and ensure_ascii=true, rejecting any non-finite float.
// encoding/json.Marshal on map[string]any already sorts keys and emits
// compact separators, so the only extra work is ASCII escaping and a
// finiteness walk. Numbers and strings keep encoding/json's own rules:
// integral floats carry no fraction (2.0 encodes as 2) and "<", ">" and "&"
// are written as six-character unicode escape sequences, not literally.
func CanonicalJSON(dict map[string]any) ([]byte, error) {
	if err := validateFinite(dict); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal canonical dict: %w", err)
	}
	return escapeNonASCII(raw), nil
}

// ContentHash returns the SHA-256 hex digest of CanonicalJSON(dict).
func ContentHash(dict map[string]any) (string, error) {
	raw, err := CanonicalJSON(dict)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// ContentHashOf is a convenience wrapper for ContentHash(CanonicalDict(v)).
func ContentHashOf(v CanonicalPayload) (string, error) {
	return ContentHash(CanonicalDict(v))
}

// validateFinite walks a canonical dict tree and rejects NaN/Inf floats,
// the one normalization CanonicalJSON enforces itself rather than trusting
// callers to have done it already.
func validateFinite(v any) error {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("identity: non-finite float %v in canonical dict", val)
		}
	case map[string]any:
		for k, child := range val {
			if err := validateFinite(child); err != nil {
				return fmt.Errorf("identity: field %q: %w", k, err)
			}
		}
	case []any:
		for i, child := range val {
			if err := validateFinite(child); err != nil {
				return fmt.Errorf("identity: index %d: %w", i, err)
			}
		}
	}
	return nil
}

// escapeNonASCII rewrites any byte sequence above ASCII as a \uXXXX escape,
// matching Python's ensure_ascii=True. encoding/json never emits invalid
// UTF-8, so this only has to deal with well-formed multi-byte runes.
func escapeNonASCII(raw []byte) []byte {
	hasHigh := false
	for _, b := range raw {
		if b >= utf8RuneSelf {
			hasHigh = true
			break
		}
	}
	if !hasHigh {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw) + 16)
	for _, r := range string(raw) {
		if r < utf8RuneSelf {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		fmt.Fprintf(&sb, "\\u%04x", r)
	}
	return []byte(sb.String())
}

const utf8RuneSelf = 0x80

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}
