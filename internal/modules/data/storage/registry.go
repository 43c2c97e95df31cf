package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RegistryEntry is one append-only registry record, per spec.md section 3.
type RegistryEntry struct {
	DatasetID           string
	DatasetVersion      string
	SchemaVersion        int
	CreatedAtTs          time.Time
	IngestRunID          string
	UniverseHash         string
	CalendarVersion      string
	SessionRulesVersion  string
	SourceSet            []string
	RowCount             int64
	ContentHash          string
}

// Registry is the append-only dataset registry, backed by modernc.org/sqlite
// (pure Go, no cgo). A UNIQUE(dataset_id, dataset_version) constraint gives
// RegistryConflict on duplicate publish for free.
type Registry struct {
	db *sql.DB
	// mu serializes every Append in this process (one lock shared by all
	// (dataset_id, dataset_version) keys) in addition to the DB constraint,
	// so two goroutines racing the same key
	// in one process get a clean error rather than relying solely on the
	// database round trip.
	mu sync.Mutex
}

// OpenRegistry opens (creating if necessary) the sqlite-backed registry at
// dsn and ensures its schema exists.
func OpenRegistry(dsn string) (*Registry, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open registry %s: %w", dsn, err)
	}
	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate registry %s: %w", dsn, err)
	}
	return &Registry{db: db}, nil
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS dataset_registry (
	dataset_id           TEXT NOT NULL,
	dataset_version      TEXT NOT NULL,
	schema_version        INTEGER NOT NULL,
	created_at_ts         TEXT NOT NULL,
	ingest_run_id         TEXT NOT NULL,
	universe_hash         TEXT NOT NULL,
	calendar_version      TEXT NOT NULL,
	sessionrules_version  TEXT NOT NULL,
	source_set            TEXT NOT NULL,
	row_count             INTEGER NOT NULL,
	content_hash          TEXT NOT NULL,
	UNIQUE(dataset_id, dataset_version)
);
`

// Close closes the underlying database handle.
func (r *Registry) Close() error { return r.db.Close() }

// Append inserts entry. A duplicate (dataset_id, dataset_version) returns
// *RegistryConflict.
func (r *Registry) Append(ctx context.Context, entry RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.get(ctx, entry.DatasetID, entry.DatasetVersion)
	if err != nil {
		return err
	}
	if existing != nil {
		return &RegistryConflict{DatasetID: entry.DatasetID, DatasetVersion: entry.DatasetVersion}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dataset_registry (
			dataset_id, dataset_version, schema_version, created_at_ts, ingest_run_id,
			universe_hash, calendar_version, sessionrules_version, source_set, row_count, content_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DatasetID, entry.DatasetVersion, entry.SchemaVersion, entry.CreatedAtTs.UTC().Format(time.RFC3339Nano),
		entry.IngestRunID, entry.UniverseHash, entry.CalendarVersion, entry.SessionRulesVersion,
		strings.Join(entry.SourceSet, ","), entry.RowCount, entry.ContentHash,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return &RegistryConflict{DatasetID: entry.DatasetID, DatasetVersion: entry.DatasetVersion}
		}
		return &StorageError{Op: "registry append", Key: entry.DatasetID + "/" + entry.DatasetVersion, Err: err}
	}
	return nil
}

// Get looks up the registry entry for (datasetID, datasetVersion), or nil if
// none has been published.
func (r *Registry) Get(ctx context.Context, datasetID, datasetVersion string) (*RegistryEntry, error) {
	return r.get(ctx, datasetID, datasetVersion)
}

func (r *Registry) get(ctx context.Context, datasetID, datasetVersion string) (*RegistryEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT dataset_id, dataset_version, schema_version, created_at_ts, ingest_run_id,
		       universe_hash, calendar_version, sessionrules_version, source_set, row_count, content_hash
		FROM dataset_registry WHERE dataset_id = ? AND dataset_version = ?`,
		datasetID, datasetVersion)

	var entry RegistryEntry
	var createdAt, sourceSet string
	err := row.Scan(&entry.DatasetID, &entry.DatasetVersion, &entry.SchemaVersion, &createdAt, &entry.IngestRunID,
		&entry.UniverseHash, &entry.CalendarVersion, &entry.SessionRulesVersion, &sourceSet, &entry.RowCount, &entry.ContentHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "registry get", Key: datasetID + "/" + datasetVersion, Err: err}
	}

	entry.CreatedAtTs, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, &StorageError{Op: "registry get", Key: datasetID + "/" + datasetVersion, Err: err}
	}
	if sourceSet != "" {
		entry.SourceSet = strings.Split(sourceSet, ",")
	}
	return &entry, nil
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
