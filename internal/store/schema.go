package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
-- One row per experiment
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,          -- uint64 stored bit-for-bit as int64
    grid_rows INTEGER NOT NULL,
    grid_cols INTEGER NOT NULL,
    dirty_fraction REAL NOT NULL,
    max_ticks INTEGER NOT NULL,
    trials INTEGER NOT NULL,
    agent_counts TEXT NOT NULL,     -- JSON array
    started_at TEXT NOT NULL,
    duration_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

-- Averages per agent count, in configured order
CREATE TABLE IF NOT EXISTS run_rows (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    agents INTEGER NOT NULL,
    avg_ticks REAL NOT NULL,
    avg_cleaned_percent REAL NOT NULL,
    avg_moves REAL NOT NULL,
    completed_trials INTEGER NOT NULL,
    PRIMARY KEY (run_id, position)
);

-- Individual trial outcomes
CREATE TABLE IF NOT EXISTS trials (
    run_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    trial INTEGER NOT NULL,
    ticks INTEGER NOT NULL,
    cleaned_percent REAL NOT NULL,
    moves INTEGER NOT NULL,
    initial_dirty INTEGER NOT NULL,
    completed INTEGER NOT NULL,
    PRIMARY KEY (run_id, position, trial),
    FOREIGN KEY (run_id, position) REFERENCES run_rows(run_id, position) ON DELETE CASCADE
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema initializes the database schema, creating tables if needed.
func InitSchema(ctx context.Context, db *sql.DB) error {
	currentVersion, err := getSchemaVersion(ctx, db)
	if err != nil {
		// schema_version doesn't exist yet: fresh database
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}

	if currentVersion > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, SchemaVersion)
	}
	return nil
}

// getSchemaVersion returns the current schema version from the database.
// Returns an error if the schema_version table doesn't exist.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// createSchema creates the initial database schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
