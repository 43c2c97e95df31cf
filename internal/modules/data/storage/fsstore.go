package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FSStore is the default Blobstore: a local filesystem tree, one file per
// key, written via a temp-file-in-the-same-directory-then-rename sequence
// so a reader never observes a partially written file.
type FSStore struct {
	root string
}

// NewFSStore returns an FSStore rooted at root, creating it if necessary.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Put stages data to a sibling temp file and renames it into place. It
// refuses to overwrite an existing key -- raw and canonical zones are
// write-once.
func (s *FSStore) Put(_ context.Context, key string, data []byte) error {
	dest := s.path(key)
	if _, err := os.Stat(dest); err == nil {
		return &StorageError{Op: "put", Key: key, Err: fmt.Errorf("key already exists (write-once zone)")}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "put", Key: key, Err: err}
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".stage-%s", uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Get reads the bytes stored at key.
func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	return data, nil
}

// Exists reports whether key has been written.
func (s *FSStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &StorageError{Op: "exists", Key: key, Err: err}
}
