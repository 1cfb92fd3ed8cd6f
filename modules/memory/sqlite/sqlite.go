// Package sqlite provides a SQLite persistence backend for the memory
// stores. It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode and
// stores each memory document as a single row, replaced wholesale on save,
// matching the full-state persistence model of the file backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/floofbot/floofbridge/internal/memory"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	memory.RegisterBackend("sqlite", Open)
}

const busyTimeoutMillis = 5000

// Document names for the two stores.
const (
	conversationsDoc = "conversations"
	userMemoriesDoc  = "user-memories"
)

// Open opens (or creates) the database at path and returns the two document
// stores backed by it, plus a closer for the shared connection. The database
// is created with WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes). The schema is migrated automatically.
func Open(path string) (threads, users memory.DocStore, closer func() error, err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	return &docStore{db: db, name: conversationsDoc},
		&docStore{db: db, name: userMemoriesDoc},
		db.Close,
		nil
}

// docStore stores one named document as a single row.
type docStore struct {
	db   *sql.DB
	name string
}

// Compile-time interface check.
var _ memory.DocStore = (*docStore)(nil)

// Load implements memory.DocStore. A missing row is an empty document.
func (s *docStore) Load() ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT body FROM documents WHERE name = ?", s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load document %s: %w", s.name, err)
	}
	return body, nil
}

// Save implements memory.DocStore.
func (s *docStore) Save(doc []byte) error {
	_, err := s.db.ExecContext(context.TODO(),
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.name, doc, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: save document %s: %w", s.name, err)
	}
	return nil
}
