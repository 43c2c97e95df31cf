package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBody struct {
	Value float64
}

func (b fakeBody) CanonicalPayload() map[string]any {
	return map[string]any{"value": b.Value}
}

func TestAssembleOmitsEmptyLineageFields(t *testing.T) {
	generatedAt := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	env := Assemble("1.0", generatedAt, asOf, Lineage{RequestHash: "abc"}, fakeBody{Value: 1.5})

	payload := env.CanonicalPayload()
	lineage := payload["lineage"].(map[string]any)
	assert.Equal(t, "abc", lineage["request_hash"])
	_, hasPortfolioHash := lineage["portfolio_snapshot_hash"]
	assert.False(t, hasPortfolioHash)
}

func TestEnvelopeContentHashDeterministic(t *testing.T) {
	generatedAt := time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	env1 := Assemble("1.0", generatedAt, asOf, Lineage{RequestHash: "abc"}, fakeBody{Value: 1.5})
	env2 := Assemble("1.0", generatedAt, asOf, Lineage{RequestHash: "abc"}, fakeBody{Value: 1.5})

	hash1, err := env1.ContentHash()
	require.NoError(t, err)
	hash2, err := env2.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)
}
