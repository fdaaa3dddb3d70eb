// Package redis contains the Redis implementation of the collection store,
// for installations where several processes share one collection.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// DefaultKey is the key the collection document is stored under.
const DefaultKey = "routecard:collection"

// CollectionStore implements secondary.CollectionStore as one JSON value.
type CollectionStore struct {
	client *redis.Client
	key    string
}

// NewClient creates a Redis client for addr.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewCollectionStore creates a store under key; an empty key selects DefaultKey.
func NewCollectionStore(client *redis.Client, key string) *CollectionStore {
	if key == "" {
		key = DefaultKey
	}
	return &CollectionStore{client: client, key: key}
}

// Ping checks the connection.
func (s *CollectionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", secondary.ErrStoreUnavailable, err)
	}
	return nil
}

// Load returns the stored collection, or an empty one when the key is absent.
func (s *CollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrStoreUnavailable, err)
	}

	col := &models.Collection{}
	if err := json.Unmarshal(val, col); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return col, nil
}

// Save replaces the stored collection.
func (s *CollectionStore) Save(ctx context.Context, col *models.Collection) error {
	payload, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", secondary.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the client.
func (s *CollectionStore) Close() error {
	return s.client.Close()
}

// Ensure CollectionStore implements the interface
var _ secondary.CollectionStore = (*CollectionStore)(nil)
