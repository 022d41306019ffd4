package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON document per kind inside a directory.
// Writes go to a temp file in the same directory and are renamed into place,
// so readers see either the previous or the new document, never a partial one.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file path backing the given kind.
func (s *FileStore) Path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// Save overwrites the snapshot for kind with data, verbatim.
func (s *FileStore) Save(kind Kind, data []byte) (err error) {
	if err := checkKind(kind); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s snapshot: %w", kind, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync %s snapshot: %w", kind, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s snapshot: %w", kind, err)
	}
	if err = os.Rename(tmpName, s.Path(kind)); err != nil {
		return fmt.Errorf("store: replace %s snapshot: %w", kind, err)
	}
	return nil
}

// Load returns the last saved document for kind.
func (s *FileStore) Load(kind Kind) ([]byte, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, kind)
		}
		return nil, fmt.Errorf("store: read %s snapshot: %w", kind, err)
	}
	if err := checkPayload(kind, data); err != nil {
		return nil, err
	}
	return data, nil
}
