package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is bumped whenever SchemaSQL changes shape.
const SchemaVersion = 1

// SchemaSQL is the complete local schema: the signed-in credential and the
// last-known copy of each event.
//
// This is the single source of truth for the schema. Repository tests load
// it through GetSchemaSQL() instead of declaring their own tables, so a
// column referenced by a repository but missing here fails immediately
// with "no such column".
const SchemaSQL = `
-- Signed-in vendor. At most one row.
CREATE TABLE IF NOT EXISTS credentials (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	token TEXT NOT NULL,
	vendor_id TEXT NOT NULL DEFAULT '',
	vendor_name TEXT NOT NULL DEFAULT '',
	vendor_email TEXT NOT NULL DEFAULT '',
	expires_at DATETIME,
	saved_at DATETIME NOT NULL
);

-- Event snapshots served when the Event Service is unreachable
CREATE TABLE IF NOT EXISTS event_snapshots (
	id TEXT PRIMARY KEY,
	event_name TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	event_date TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_snapshots_event_date ON event_snapshots(event_date);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema on a fresh database and records its
// version. A database written by a newer build is rejected.
func InitSchema(conn *sql.DB) error {
	if _, err := conn.Exec(SchemaSQL); err != nil {
		return err
	}

	var current sql.NullInt64
	if err := conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
		return err
	}
	if current.Valid && current.Int64 > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current.Int64, SchemaVersion)
	}
	if !current.Valid || current.Int64 < SchemaVersion {
		if _, err := conn.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema for tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
