package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, *CollectionStore) {
	mr := miniredis.RunT(t)
	store := NewCollectionStore(NewClient(mr.Addr(), "", 0), "")
	t.Cleanup(func() { store.Close() })
	return mr, store
}

func TestCollectionStore_LoadMissingKey(t *testing.T) {
	_, store := setupTestStore(t)

	col, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, col.Cards)
}

func TestCollectionStore_SaveAndLoad(t *testing.T) {
	mr, store := setupTestStore(t)
	ctx := context.Background()

	col := &models.Collection{
		Cards: []*models.Card{{ID: "card_1", Name: "Shaft", Quantity: models.Qty(4)}},
		Ops:   []*models.OpCatalogEntry{{ID: "catalog_1", Code: "OP-AAAA", Name: "Turning"}},
	}
	require.NoError(t, store.Save(ctx, col))
	assert.True(t, mr.Exists(DefaultKey))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Cards, 1)
	assert.Equal(t, "Shaft", loaded.Cards[0].Name)
	assert.Equal(t, 4, loaded.Cards[0].Quantity.Value())
}

func TestCollectionStore_CorruptValue(t *testing.T) {
	mr, store := setupTestStore(t)
	require.NoError(t, mr.Set(DefaultKey, "{broken"))

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode collection")
}

func TestCollectionStore_Unavailable(t *testing.T) {
	mr, store := setupTestStore(t)
	mr.Close()
	ctx := context.Background()

	err := store.Save(ctx, &models.Collection{})
	assert.True(t, errors.Is(err, secondary.ErrStoreUnavailable), "got %v", err)

	_, err = store.Load(ctx)
	assert.True(t, errors.Is(err, secondary.ErrStoreUnavailable), "got %v", err)
	assert.Error(t, store.Ping(ctx))
}
