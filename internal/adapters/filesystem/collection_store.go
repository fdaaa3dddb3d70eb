// Package filesystem contains the JSON-file implementation of the collection store.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// CollectionStore implements secondary.CollectionStore as one JSON file.
// Saves write a temp file next to the target and rename it into place.
type CollectionStore struct {
	mu   sync.Mutex
	path string
}

// NewCollectionStore creates a store at path. The file is created on first save.
func NewCollectionStore(path string) *CollectionStore {
	return &CollectionStore{path: path}
}

// Path returns the file the collection is stored in.
func (s *CollectionStore) Path() string {
	return s.path
}

// Load returns the stored collection, or an empty one when the file is absent.
func (s *CollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &models.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	col := &models.Collection{}
	if err := json.Unmarshal(data, col); err != nil {
		return nil, fmt.Errorf("failed to decode collection in %s: %w", s.path, err)
	}
	return col, nil
}

// Save replaces the stored collection atomically.
func (s *CollectionStore) Save(ctx context.Context, col *models.Collection) error {
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".routecard-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("atomic rename for %s: %w", path, err)
	}
	return nil
}

// Ensure CollectionStore implements the interface
var _ secondary.CollectionStore = (*CollectionStore)(nil)
