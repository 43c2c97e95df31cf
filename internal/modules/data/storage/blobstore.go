package storage

import "context"

// Blobstore is the storage-zone write/read boundary. Put must be write-once
// for keys under the raw and canonical zones -- implementations reject a
// second Put to an existing key rather than overwriting it (spec.md section
// 4.5: "no in-place overwrite").
type Blobstore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}
