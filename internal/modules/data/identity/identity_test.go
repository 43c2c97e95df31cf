package identity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequest struct {
	assets []string
	fields []string
}

func (r fakeRequest) CanonicalPayload() map[string]any {
	return map[string]any{
		"assets": anySlice(SortStrings(r.assets)),
		"fields": anySlice(SortStrings(r.fields)),
	}
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestContentHashInvariantUnderSetOrdering(t *testing.T) {
	a := fakeRequest{assets: []string{"EQ.SPY", "EQ.AGG"}, fields: []string{"close"}}
	b := fakeRequest{assets: []string{"EQ.AGG", "EQ.SPY"}, fields: []string{"close"}}

	hashA, err := ContentHashOf(a)
	require.NoError(t, err)
	hashB, err := ContentHashOf(b)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
}

func TestCanonicalJSONRejectsNonFiniteFloat(t *testing.T) {
	_, err := CanonicalJSON(map[string]any{"x": math.NaN()})
	assert.Error(t, err)

	_, err = CanonicalJSON(map[string]any{"x": math.Inf(1)})
	assert.Error(t, err)
}

func TestCanonicalJSONSortsKeysAndIsCompact(t *testing.T) {
	raw, err := CanonicalJSON(map[string]any{"b": 1.0, "a": 2.0})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1}`, string(raw))
}

func TestCanonicalJSONEscapesNonASCII(t *testing.T) {
	raw, err := CanonicalJSON(map[string]any{"name": "café"})
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"caf\\u00e9\"}", string(raw))
}

func TestFormatTimestampUTCUsesExplicitOffset(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-02T09:00:00Z", FormatTimestampUTC(ts))
}

func TestGenerateIngestRunIDFormat(t *testing.T) {
	now := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	id := GenerateIngestRunID(now)
	assert.Regexp(t, `^ing_20240102_150405Z_\d{4}$`, id)
}

func TestSortUniqueDeduplicates(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortUnique([]string{"c", "a", "b", "a"}))
}
