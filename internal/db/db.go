package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// FileName is the database file inside the data directory.
const FileName = "dayof.db"

var db *sql.DB

// GetDB returns the database connection under dataDir, initializing it on
// first use. Later calls return the same connection.
func GetDB(dataDir string) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := Open(GetDBPath(dataDir))
	if err != nil {
		return nil, err
	}
	db = conn
	return db, nil
}

// Open opens the database at dsn and applies the schema. Use ":memory:"
// for a throwaway database.
func Open(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

// Close closes the database connection
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// GetDBPath returns the path to the database file
func GetDBPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}
