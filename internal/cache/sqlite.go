// Package cache persists assembled document records in SQLite, keyed by
// source content, so repeated parses of the same bytes skip layout analysis.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/contractgest/internal/doctree"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	cache_key  TEXT PRIMARY KEY,
	metadata   BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// Store is a SQLite-backed document cache.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: %s: %w", stmt, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the cached record for key. A miss returns ok=false and no error.
func (s *Store) Get(ctx context.Context, key string) (*doctree.DocumentMetadata, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata FROM documents WHERE cache_key = ?`, key,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}

	meta := &doctree.DocumentMetadata{}
	if err := json.Unmarshal(blob, meta); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if meta.Sections == nil {
		meta.Sections = []doctree.Section{}
	}
	return meta, true, nil
}

// Put stores meta under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, meta *doctree.DocumentMetadata) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (cache_key, metadata, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET metadata = excluded.metadata, created_at = excluded.created_at`,
		key, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %s: %w", key, err)
	}
	return nil
}

// Len returns the number of cached records.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
