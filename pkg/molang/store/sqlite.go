package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	molerrors "github.com/randalmurphal/molang/pkg/molang/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists scripts to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a script database.
// The path is a file path (e.g., "./scripts.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scripts (
			name TEXT PRIMARY KEY,
			revision INTEGER NOT NULL,
			updated TEXT NOT NULL,
			source TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_scripts_revision
		ON scripts(revision)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(name, source string) error {
	if name == "" {
		return ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO scripts (name, revision, updated, source)
		VALUES (?, COALESCE((SELECT MAX(revision) FROM scripts), 0) + 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			revision = (SELECT MAX(revision) FROM scripts) + 1,
			updated = excluded.updated,
			source = excluded.source
	`, name, time.Now().UTC().Format(time.RFC3339Nano), source)
	if err != nil {
		return molerrors.Storage(err, "save script "+name)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var source string
	err := s.db.QueryRow(`SELECT source FROM scripts WHERE name = ?`, name).Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", molerrors.Storage(err, "load script "+name)
	}
	return source, nil
}

// List implements Store.
func (s *SQLiteStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT name, revision, updated, LENGTH(CAST(source AS BLOB))
		FROM scripts
		ORDER BY revision
	`)
	if err != nil {
		return nil, molerrors.Storage(err, "list scripts")
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var updated string
		if err := rows.Scan(&info.Name, &info.Revision, &updated, &info.Size); err != nil {
			return nil, molerrors.Storage(err, "scan script info")
		}
		info.Updated, _ = time.Parse(time.RFC3339Nano, updated)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, molerrors.Storage(err, "iterate scripts")
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM scripts WHERE name = ?`, name); err != nil {
		return molerrors.Storage(err, "delete script "+name)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
