// Package sqlite contains the SQLite implementation of the collection store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// CollectionStore implements secondary.CollectionStore with SQLite.
// The collection is one JSON document in a single-row table.
type CollectionStore struct {
	db *sql.DB
}

// NewCollectionStore creates a new SQLite collection store.
func NewCollectionStore(db *sql.DB) *CollectionStore {
	return &CollectionStore{db: db}
}

// Load returns the stored collection, or an empty one on a fresh database.
func (s *CollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM collection WHERE id = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	col := &models.Collection{}
	if err := json.Unmarshal([]byte(payload), col); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return col, nil
}

// Save replaces the stored collection and records the save in one transaction.
func (s *CollectionStore) Save(ctx context.Context, col *models.Collection) error {
	payload, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collection (id, payload, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to write collection: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO collection_saves (card_count, payload_bytes) VALUES (?, ?)",
		len(col.Cards), len(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to record save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// SaveRecord is one row of the save history.
type SaveRecord struct {
	ID           int64
	CardCount    int
	PayloadBytes int
	SavedAt      time.Time
}

// History returns the most recent saves, newest first.
func (s *CollectionStore) History(ctx context.Context, limit int) ([]SaveRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, card_count, payload_bytes, saved_at FROM collection_saves ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query save history: %w", err)
	}
	defer rows.Close()

	var records []SaveRecord
	for rows.Next() {
		var r SaveRecord
		if err := rows.Scan(&r.ID, &r.CardCount, &r.PayloadBytes, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Ensure CollectionStore implements the interface
var _ secondary.CollectionStore = (*CollectionStore)(nil)
