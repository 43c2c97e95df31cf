package access

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLManifestIndexRecordThenLookupRoundTrips(t *testing.T) {
	idx, err := OpenSQLManifestIndex(filepath.Join(t.TempDir(), "manifests.db"))
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	_, ok := idx.Lookup(ctx, "abc123")
	assert.False(t, ok)

	idx.Record(ctx, "abc123", "manifests/abc123.json")

	key, ok := idx.Lookup(ctx, "abc123")
	require.True(t, ok)
	assert.Equal(t, "manifests/abc123.json", key)
}

func TestSQLManifestIndexRecordOverwritesExistingKey(t *testing.T) {
	idx, err := OpenSQLManifestIndex(filepath.Join(t.TempDir(), "manifests.db"))
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	idx.Record(ctx, "abc123", "manifests/first.json")
	idx.Record(ctx, "abc123", "manifests/second.json")

	key, ok := idx.Lookup(ctx, "abc123")
	require.True(t, ok)
	assert.Equal(t, "manifests/second.json", key)
}

func TestSQLManifestIndexNilIsAlwaysMissAndRecordIsNoOp(t *testing.T) {
	var idx *SQLManifestIndex

	_, ok := idx.Lookup(context.Background(), "abc123")
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		idx.Record(context.Background(), "abc123", "manifests/abc123.json")
	})
}
