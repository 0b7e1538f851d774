// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each artifact at <dir>/<query>/<query><suffix>.
//
// The existence check in Get is not atomic with the later Put; two
// processes working on the same query may both compute the artifact.
// Writes go through a temporary file and rename, so readers never see a
// partially written artifact.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file path for key.
func (s *FileStore) Path(key Key) string {
	return filepath.Join(s.dir, key.Query, key.FileName())
}

// Location returns the file path for key.
func (s *FileStore) Location(key Key) string { return s.Path(key) }

// Get reads the artifact file for key.
func (s *FileStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", s.Path(key), err)
	}
	return data, true, nil
}

// Put writes the artifact file for key, creating parent directories.
func (s *FileStore) Put(_ context.Context, key Key, data []byte) error {
	if err := key.Validate(); err != nil {
		return err
	}
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+key.FileName()+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
