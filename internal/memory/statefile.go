package memory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileDocStore persists a document as a single JSON file, replaced wholesale
// on every save. Writes go through a temp file and rename so a crash mid-save
// never leaves a truncated document behind.
type FileDocStore struct {
	path string
}

// NewFileDocStore creates a store writing to the given path. The parent
// directory is created on first save.
func NewFileDocStore(path string) *FileDocStore {
	return &FileDocStore{path: path}
}

// Compile-time interface check.
var _ DocStore = (*FileDocStore)(nil)

// Load implements DocStore. A missing file is an empty document, not an error.
func (s *FileDocStore) Load() ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: reading %s: %w", s.path, err)
	}
	return raw, nil
}

// Save implements DocStore.
func (s *FileDocStore) Save(doc []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("memory: creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("memory: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("memory: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("memory: closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("memory: replacing %s: %w", s.path, err)
	}
	return nil
}
