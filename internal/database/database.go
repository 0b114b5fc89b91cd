// Package database provides the local store: a persistent key-value namespace
// holding JSON documents under fixed keys, backed by an embedded SQLite file.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Well-known keys. The namespace is flat; these are the only keys the
// application reads or writes.
const (
	KeyUsers         = "users"
	KeyAuthUser      = "authUser"
	KeyEvents        = "events"
	KeyRegistrations = "registrations"
)

// Store is a synchronous key-value store of JSON documents. Get reports
// whether the key was present; when it is absent (or its value cannot be
// decoded) dst is left untouched so the caller's default stands. Writers are
// serialized, but interleaved read-modify-write sequences from separate
// callers still resolve last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SQLiteStore implements Store on a single kv table in an embedded SQLite
// database.
type SQLiteStore struct {
	mu    sync.Mutex
	sqlDB *sql.DB
}

// Open opens (creating if necessary) the store at the provided path.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(
		`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Get reads and decodes the JSON value stored under key. A malformed value is
// logged and reported as absent rather than failing the caller, so a
// hand-edited store degrades to empty collections instead of errors.
func (s *SQLiteStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("store: discarding malformed value under %q: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Set serializes v to JSON and upserts it under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key if present; deleting an absent key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

var _ Store = (*SQLiteStore)(nil)
