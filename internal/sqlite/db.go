// Package sqlite is the SQLite-backed event store. It keeps each
// project's log in a versioned events table and applies appends and
// compaction transactionally.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
}

// New opens a SQLite database at the given path (":memory:" for an
// in-memory database).
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time, and a pooled second
	// connection would see a different ":memory:" database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Per-project logical log length; survives compaction.
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    version INTEGER NOT NULL DEFAULT 0
);

-- The append-only event log, keyed by position within the project.
CREATE TABLE IF NOT EXISTS events (
    project_id TEXT NOT NULL,
    version INTEGER NOT NULL,
    type TEXT NOT NULL,
    part_id TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    command_id TEXT,
    notification_date TEXT,
    PRIMARY KEY (project_id, version),
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
CREATE INDEX IF NOT EXISTS idx_events_part ON events(project_id, part_id);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(project_id, timestamp);

-- Command ids seen per project; compaction leaves these alone.
CREATE TABLE IF NOT EXISTS commands (
    project_id TEXT NOT NULL,
    command_id TEXT NOT NULL,
    PRIMARY KEY (project_id, command_id),
    FOREIGN KEY (project_id) REFERENCES projects(id)
);

-- One projector snapshot per project.
CREATE TABLE IF NOT EXISTS snapshots (
    project_id TEXT PRIMARY KEY,
    last_event_timestamp INTEGER NOT NULL,
    state_json TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
