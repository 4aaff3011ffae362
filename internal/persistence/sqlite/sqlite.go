// Package sqlite implements the run archive on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store owns the database handle shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn and applies the schema.
// A dsn of ":memory:" yields a throwaway in-memory database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate applies schema statements in order. Each statement is idempotent
// so reopening an existing database is safe.
func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			seed       INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			snapshot   BLOB NOT NULL,
			placed     TEXT NOT NULL DEFAULT '',
			unplaced   TEXT NOT NULL DEFAULT '',
			findings   BLOB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at DESC)`,
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: migrate %q: %w", firstLine(statement), err)
		}
	}
	return nil
}

func firstLine(statement string) string {
	statement = strings.TrimSpace(statement)
	if i := strings.IndexByte(statement, '\n'); i >= 0 {
		statement = statement[:i]
	}
	return statement
}
