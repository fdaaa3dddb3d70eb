// Package memory contains an in-process collection store for tests and
// throwaway sessions. Nothing survives the process.
package memory

import (
	"context"
	"sync"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// CollectionStore implements secondary.CollectionStore in memory.
type CollectionStore struct {
	mu  sync.Mutex
	col *models.Collection
}

// NewCollectionStore creates an empty store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{}
}

// Load returns a copy of the stored collection.
func (s *CollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.col == nil {
		return &models.Collection{}, nil
	}
	return s.col.Clone(), nil
}

// Save stores a copy of col.
func (s *CollectionStore) Save(ctx context.Context, col *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.col = col.Clone()
	return nil
}

// Ensure CollectionStore implements the interface
var _ secondary.CollectionStore = (*CollectionStore)(nil)
