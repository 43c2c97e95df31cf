package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisManifestIndexNilIsAlwaysMissAndRecordIsNoOp(t *testing.T) {
	var idx *RedisManifestIndex

	_, ok := idx.Lookup(context.Background(), "abc123")
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		idx.Record(context.Background(), "abc123", "manifests/abc123.json")
	})
}

func TestRedisManifestIndexWithoutClientIsAlwaysMiss(t *testing.T) {
	idx := &RedisManifestIndex{}
	_, ok := idx.Lookup(context.Background(), "abc123")
	assert.False(t, ok)
}
