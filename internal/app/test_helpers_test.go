package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// Ensure mockCollectionStore implements the interface
var _ secondary.CollectionStore = (*mockCollectionStore)(nil)

// mockCollectionStore implements secondary.CollectionStore for testing.
type mockCollectionStore struct {
	col     *models.Collection
	saves   int
	loadErr error
	saveErr error
}

func newMockCollectionStore() *mockCollectionStore {
	return &mockCollectionStore{}
}

func (m *mockCollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.col == nil {
		return &models.Collection{}, nil
	}
	return m.col.Clone(), nil
}

func (m *mockCollectionStore) Save(ctx context.Context, col *models.Collection) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.col = col.Clone()
	m.saves++
	return nil
}

// testClock is a settable time source.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestRepository loads a repository over store seeded with the default
// catalog: centers Machining, Coating and Quality control; operations
// Turning (OP-0001), Coating (OP-0002) and Dimensional inspection (OP-0003).
func newTestRepository(t *testing.T, store *mockCollectionStore) (*CardRepository, *testClock) {
	t.Helper()
	clock := newTestClock()
	ids, codes := 0, 0
	repo := NewCardRepository(store, zap.NewNop(),
		WithClock(clock.Now),
		WithIDGenerator(func(prefix string) string {
			ids++
			return fmt.Sprintf("%s_%d", prefix, ids)
		}),
		WithCodeGenerator(func() string {
			codes++
			return fmt.Sprintf("OP-%04d", codes)
		}),
	)
	if err := repo.Load(context.Background(), SeedOptions{Defaults: true}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return repo, clock
}

func newTestCardService(t *testing.T) (*CardServiceImpl, *mockCollectionStore, *testClock) {
	t.Helper()
	store := newMockCollectionStore()
	repo, clock := newTestRepository(t, store)
	return NewCardService(repo, zap.NewNop()), store, clock
}

// createRouteCard creates a card with a Turning and a Coating step.
func createRouteCard(t *testing.T, svc *CardServiceImpl, qty models.Quantity, perItem bool) *models.Card {
	t.Helper()
	ctx := context.Background()
	card, err := svc.CreateCard(ctx, cardDraft("Shaft", qty, perItem))
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}
	for _, ref := range []string{"Turning", "Coating"} {
		center := "Machining"
		if ref == "Coating" {
			center = "Coating"
		}
		resp, err := svc.AddRouteStep(ctx, addStepRequest(card.ID, ref, center))
		if err != nil {
			t.Fatalf("AddRouteStep failed: %v", err)
		}
		if !resp.Applied {
			t.Fatalf("AddRouteStep rejected: %s", resp.Reason)
		}
	}
	view, err := svc.GetCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	return view.Card
}
