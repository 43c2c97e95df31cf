package access

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// SQLManifestIndex is a durable, embedded alternative to RedisManifestIndex:
// same accelerator contract (a hint the filesystem manifest cache can always
// override), backed by a local SQLite file instead of a Redis instance.
// Adapted from the teacher's internal/database.DB connection-management
// discipline (WAL mode, directory creation, pooled *sql.DB).
type SQLManifestIndex struct {
	db *sql.DB
}

// OpenSQLManifestIndex opens (creating if necessary) a SQLite-backed
// manifest index at dbPath and ensures its schema exists.
func OpenSQLManifestIndex(dbPath string) (*SQLManifestIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("access: create manifest index directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("access: open manifest index: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite writers serialize regardless; avoid lock contention

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS manifest_index (
		request_hash TEXT PRIMARY KEY,
		manifest_key TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("access: migrate manifest index: %w", err)
	}

	return &SQLManifestIndex{db: db}, nil
}

// Close releases the underlying database connection.
func (idx *SQLManifestIndex) Close() error {
	if idx == nil || idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// Lookup implements the same hint contract as RedisManifestIndex.Lookup: a
// nil receiver or any query error is treated as a miss, never propagated,
// since the filesystem manifest remains authoritative.
func (idx *SQLManifestIndex) Lookup(ctx context.Context, requestHash string) (key string, ok bool) {
	if idx == nil || idx.db == nil {
		return "", false
	}
	row := idx.db.QueryRowContext(ctx, `SELECT manifest_key FROM manifest_index WHERE request_hash = ?`, requestHash)
	if err := row.Scan(&key); err != nil {
		return "", false
	}
	return key, true
}

// Record upserts requestHash -> manifestKey. Errors are swallowed; this is
// an accelerator, not a source of truth, so a failed write only costs a
// future cache-hit lookup, never correctness.
func (idx *SQLManifestIndex) Record(ctx context.Context, requestHash, manifestKey string) {
	if idx == nil || idx.db == nil {
		return
	}
	_, _ = idx.db.ExecContext(ctx, `INSERT INTO manifest_index (request_hash, manifest_key) VALUES (?, ?)
		ON CONFLICT(request_hash) DO UPDATE SET manifest_key = excluded.manifest_key`, requestHash, manifestKey)
}
