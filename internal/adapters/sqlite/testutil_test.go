// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not declare tables in test files.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/dayof/internal/db"
	"github.com/example/dayof/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

var fetched = time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC)

// snapshot builds a snapshot record for id dated eventDate.
func snapshot(id, eventDate string) *secondary.EventSnapshotRecord {
	return &secondary.EventSnapshotRecord{
		ID:        id,
		EventName: "Event " + id,
		Status:    "pending",
		EventDate: eventDate,
		Payload:   []byte(`{"_id":"` + id + `"}`),
		FetchedAt: fetched,
	}
}
