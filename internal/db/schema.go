package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// The collection is stored as one JSON document in a single-row table;
// every save also appends a row to collection_saves.
//
// Tests load this schema via GetSchemaSQL() and never hardcode their own.
// Keep it in sync with migrations.go.
const SchemaSQL = `
-- The whole card collection as one JSON document
CREATE TABLE IF NOT EXISTS collection (
	id INTEGER PRIMARY KEY CHECK(id = 1),
	payload TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Save history
CREATE TABLE IF NOT EXISTS collection_saves (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	card_count INTEGER NOT NULL,
	payload_bytes INTEGER NOT NULL,
	saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_collection_saves_saved_at ON collection_saves(saved_at);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install - create the current schema directly and mark every
	// migration as applied.
	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
