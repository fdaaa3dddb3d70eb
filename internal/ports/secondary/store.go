// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"

	"github.com/example/routecard/internal/models"
)

// CollectionStore defines the secondary port for whole-collection persistence.
// Load and Save are atomic; there are no partial updates.
type CollectionStore interface {
	// Load returns the stored collection, or an empty one when nothing is stored yet.
	Load(ctx context.Context) (*models.Collection, error)

	// Save replaces the stored collection.
	Save(ctx context.Context, col *models.Collection) error
}

// ErrStoreUnavailable marks a store that could not be reached.
// Adapters wrap it with the underlying cause.
var ErrStoreUnavailable = errors.New("collection store unavailable")
