package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/ctxutil"
	"github.com/example/routecard/internal/metrics"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/ports/secondary"
)

// CardRepository owns the in-memory collection.
//
// Every mutation runs to completion under one lock and is followed by a save
// of the whole collection. A failed save keeps the in-memory change, marks
// the repository degraded and is retried by the next mutation.
type CardRepository struct {
	mu      sync.Mutex
	store   secondary.CollectionStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
	newID   func(prefix string) string
	newCode route.CodeGenerator

	col    *models.Collection
	status primary.SyncStatus
}

// RepositoryOption configures a CardRepository.
type RepositoryOption func(*CardRepository)

// WithClock sets the time source.
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *CardRepository) { r.clock = clock }
}

// WithIDGenerator sets the id generator.
func WithIDGenerator(newID func(prefix string) string) RepositoryOption {
	return func(r *CardRepository) { r.newID = newID }
}

// WithCodeGenerator sets the operation code generator.
func WithCodeGenerator(gen route.CodeGenerator) RepositoryOption {
	return func(r *CardRepository) { r.newCode = gen }
}

// WithMetrics records saves and actions.
func WithMetrics(m *metrics.Metrics) RepositoryOption {
	return func(r *CardRepository) { r.metrics = m }
}

// NewCardRepository creates a repository over store. Call Load before use.
func NewCardRepository(store secondary.CollectionStore, logger *zap.Logger, opts ...RepositoryOption) *CardRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &CardRepository{
		store:   store,
		logger:  logger,
		clock:   time.Now,
		newID:   NewID,
		newCode: route.RandomCode,
		col:     &models.Collection{Cards: []*models.Card{}, Ops: []*models.OpCatalogEntry{}, Centers: []*models.WorkCenter{}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SeedOptions controls what an empty store is filled with.
type SeedOptions struct {
	Defaults bool
	Demo     bool
}

// Load reads and normalizes the collection. An empty store is seeded with
// the default catalog when seed.Defaults is set. Repairs are saved at once.
func (r *CardRepository) Load(ctx context.Context, seed SeedOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	col, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if col == nil {
		col = &models.Collection{}
	}

	env := r.env(ctx)
	seeded := false
	if seed.Defaults && collection.IsEmpty(col) {
		col = collection.DefaultData(env, seed.Demo)
		seeded = true
	}
	rep := collection.Normalize(col, env)
	r.col = col
	r.publishCounts()

	if rep.Repaired() {
		r.logger.Debug("collection repaired on load",
			zap.Int("barcodes", rep.Barcodes),
			zap.Int("codes", rep.Codes),
			zap.Int("snapshots", rep.Snapshots),
			zap.Int("backfills", rep.Backfills))
	}
	if seeded || rep.Repaired() {
		r.saveLocked(ctx)
	}
	return nil
}

// View runs fn with read access to the collection. fn must not keep
// references past its return; clone what it hands out.
func (r *CardRepository) View(fn func(col *models.Collection) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.col)
}

// Update runs fn with write access to the collection and saves when fn
// reports a change. It returns whether the collection is durably stored.
// An error from fn is returned as-is and nothing is saved.
func (r *CardRepository) Update(ctx context.Context, fn func(col *models.Collection, env collection.Env) (bool, error)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed, err := fn(r.col, r.env(ctx))
	if err != nil {
		return false, err
	}
	if !changed {
		return !r.status.Degraded, nil
	}
	r.publishCounts()
	return r.saveLocked(ctx), nil
}

// Resync saves the in-memory collection again, whether or not the last save
// failed. It reports whether the store is in sync.
func (r *CardRepository) Resync(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

// Status reports the outcome of the last save.
func (r *CardRepository) Status() primary.SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Metrics returns the collectors the repository reports to, possibly nil.
func (r *CardRepository) Metrics() *metrics.Metrics {
	return r.metrics
}

func (r *CardRepository) env(ctx context.Context) collection.Env {
	return collection.Env{
		Now:     r.clock(),
		NewID:   r.newID,
		NewCode: r.newCode,
		Actor:   ctxutil.ActorFromContext(ctx),
	}
}

func (r *CardRepository) saveLocked(ctx context.Context) bool {
	err := r.store.Save(ctx, r.col)
	r.metrics.ObserveSave(err)
	if err != nil {
		r.status.Degraded = true
		r.status.LastError = err.Error()
		r.logger.Warn("failed to save collection; keeping changes in memory",
			zap.Error(err),
			zap.Bool("degraded", true))
		return false
	}
	if r.status.Degraded {
		r.logger.Info("collection saved after earlier failure")
	}
	r.status = primary.SyncStatus{LastSavedAt: r.clock()}
	return true
}

func (r *CardRepository) publishCounts() {
	if r.metrics == nil {
		return
	}
	counts := map[string]int{}
	for _, c := range r.col.Cards {
		if !c.Archived {
			counts[string(c.Status)]++
		}
	}
	r.metrics.SetCardCounts(counts)
}
