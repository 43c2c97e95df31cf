// Package storage implements the raw/canonical storage zones and the
// append-only dataset registry (C5): write-once raw payloads keyed by
// (ingest_run_id, request_fingerprint), atomically published canonical
// snapshots keyed by (dataset_id, dataset_version), and a registry that
// rejects duplicate publish with a typed RegistryConflict.
package storage

import "fmt"

// StorageError wraps a write/read failure at a storage boundary with the
// key that was being operated on.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RegistryConflict is returned when a (dataset_id, dataset_version) tuple is
// published twice.
type RegistryConflict struct {
	DatasetID      string
	DatasetVersion string
}

func (e *RegistryConflict) Error() string {
	return fmt.Sprintf("storage: registry conflict for dataset_id=%s dataset_version=%s: already published", e.DatasetID, e.DatasetVersion)
}
