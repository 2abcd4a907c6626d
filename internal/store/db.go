package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the aria SQLite database. Every
// Store-facing method in this package is defined on *DB.
type DB struct {
	*sql.DB
	Path string
}

// DefaultDBPath returns the default database path: ~/.aria/aria.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".aria", "aria.db"), nil
}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, and runs migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // a private in-memory db is per-connection

	db := &DB{DB: sqlDB, Path: ":memory:"}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA mmap_size=268435456", // 256MB
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// isTransientConflict reports whether err looks like a SQLite busy/locked
// condition worth retrying, as opposed to a real constraint failure.
func isTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

// withRetry runs fn up to 3 attempts total with jittered backoff between
// attempts, per §5's requirement that counter/global-stats read-modify-
// write increments retry on transient failure before surfacing an error.
func withRetry(fn func() error) error {
	const attempts = 3
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isTransientConflict(err) {
			return err
		}
		backoff := time.Duration(5+rand.Intn(15)) * time.Millisecond * time.Duration(i+1)
		time.Sleep(backoff)
	}
	return err
}

// isNoRows reports sql.ErrNoRows so call sites can turn it into a nil,
// nil result, matching the Store contract's "NotFound is always recoverable".
func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}

// inClause builds a "?, ?, ?" placeholder string and the matching args
// slice for a dynamic IN (...) clause.
func inClause(values []string) (string, []any) {
	placeholders := strings.Repeat("?,", len(values))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return placeholders, args
}
