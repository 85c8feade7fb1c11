package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the single embedded SQLite handle shared by every component.
// All access is serialized through one mutex: no operation observes a
// partially applied concurrent write, and no two mutating operations
// interleave their statements.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the SQLite database at the given path, applies the
// required pragmas and idempotently creates the schema. Safe to call on an
// existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY and keeps the serialization contract honest.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens an isolated in-memory store, used by tests.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

// NewWithDB wraps an existing handle without applying pragmas or schema.
// Test seam for injecting mocked connections.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Do runs fn while holding the global critical section. Every public
// operation of the core is one bounded Do call: lock, one or more statements,
// unlock. fn must not retain the handle past its return.
func (s *Store) Do(fn func(db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.db)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("store: execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Timestamps are persisted as RFC 3339 UTC text with a fixed nine-digit
// fraction. Fixed width keeps the strings lexicographically ordered (the
// RFC3339Nano layout trims trailing zeros and would not), so expiry checks
// and ordering stay plain string comparisons inside SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in the persisted timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a persisted timestamp. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
