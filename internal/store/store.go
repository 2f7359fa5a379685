// Package store persists scans and the directory/file entities they own in
// SQLite, and answers the grouped-count queries duplicate detection needs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a scan or file id does not exist.
var ErrNotFound = errors.New("not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		base_path TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		created   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directories (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id   INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		parent_id INTEGER REFERENCES directories(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		path      TEXT NOT NULL,
		UNIQUE (scan_id, path)
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		directory_id INTEGER NOT NULL REFERENCES directories(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		size         INTEGER,
		hash         TEXT,
		created      TEXT,
		updated      TEXT,
		UNIQUE (directory_id, name)
	)`,
	`CREATE INDEX IF NOT EXISTS files_size ON files(size)`,
	`CREATE INDEX IF NOT EXISTS files_hash ON files(hash)`,
}

// Store is the entity store. It is safe for concurrent use; writes are
// serialized over a single connection and uniqueness is enforced by the
// schema, so concurrent upserts of the same key never create duplicates.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path is the database file the store was opened with.
func (s *Store) Path() string {
	return s.path
}
