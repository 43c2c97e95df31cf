package access

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ManifestIndex is an optional accelerator mapping request_hash to a
// manifest's storage key. It is never a second source of truth: Service
// records into it after writing or finding a manifest, but decides cache
// hits from the filesystem manifest alone and does not call Lookup.
// RedisManifestIndex and SQLManifestIndex both implement it; a nil
// ManifestIndex value is a valid always-miss no-op.
type ManifestIndex interface {
	Lookup(ctx context.Context, requestHash string) (key string, ok bool)
	Record(ctx context.Context, requestHash, manifestKey string)
}

// RedisManifestIndex is an optional accelerator mapping request_hash to the
// manifest's storage key, letting a fleet of access-service instances
// short-circuit the filesystem lookup. It is never a second source of
// truth: any miss or error falls through to the filesystem, and a nil
// index (or nil Client) behaves as an always-miss no-op.
type RedisManifestIndex struct {
	Client *redis.Client
	TTL    time.Duration
}

func manifestIndexKey(requestHash string) string {
	return "quantlab:access:manifest:" + requestHash
}

// Lookup returns the manifest storage key for requestHash, or ok=false on
// a miss or any Redis error.
func (idx *RedisManifestIndex) Lookup(ctx context.Context, requestHash string) (key string, ok bool) {
	if idx == nil || idx.Client == nil {
		return "", false
	}
	key, err := idx.Client.Get(ctx, manifestIndexKey(requestHash)).Result()
	if err != nil {
		return "", false
	}
	return key, true
}

// Record associates requestHash with manifestKey. Errors are swallowed --
// a failed cache write only costs a future filesystem lookup, never
// correctness.
func (idx *RedisManifestIndex) Record(ctx context.Context, requestHash, manifestKey string) {
	if idx == nil || idx.Client == nil {
		return
	}
	idx.Client.Set(ctx, manifestIndexKey(requestHash), manifestKey, idx.TTL)
}
