package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/routecard/internal/models"
)

func TestCollectionStore_LoadMissingFile(t *testing.T) {
	store := NewCollectionStore(filepath.Join(t.TempDir(), "cards.json"))

	col, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, col.Cards)
}

func TestCollectionStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewCollectionStore(filepath.Join(dir, "data", "cards.json"))
	ctx := context.Background()

	col := &models.Collection{
		Cards: []*models.Card{{ID: "card_1", Name: "Shaft", Quantity: models.Qty(2), UseItemList: true}},
	}
	require.NoError(t, store.Save(ctx, col))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Cards, 1)
	assert.True(t, loaded.Cards[0].UseItemList)

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestCollectionStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, err := NewCollectionStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode collection")
}

func TestCollectionStore_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := NewCollectionStore(filepath.Join(blocker, "cards.json")).Save(context.Background(), &models.Collection{})
	assert.Error(t, err)
}
