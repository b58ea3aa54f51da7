// Package storage persists application state as one JSON document per named
// key in an embedded SQLite table. Collections round-trip through it whole:
// callers read a full document, mutate in memory, and write the full document
// back.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Collection keys. Any key missing at startup is seeded by EnsureDefaults.
const (
	KeyMedicines    = "medicines"
	KeyDoctors      = "doctors"
	KeyAppointments = "appointments"
	KeyUsers        = "users"
	KeyCurrentUser  = "currentUser"
	KeyCart         = "cart"
	KeyActivities   = "activities"
	KeySettings     = "settings"
)

// Store is the key/value adapter over the kv table.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the backing database. Pass ":memory:" for an
// ephemeral store in tests.
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps :memory:
	// databases coherent across the pool.
	db.SetMaxOpenConns(1)

	// Migrations own schema changes; this only covers databases that have
	// never seen the migration runner (in-memory test stores).
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// DB exposes the underlying handle for the migration runner.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get loads the JSON document stored under key into dest. A missing key or an
// undecodable payload leaves dest at whatever default the caller supplied and
// is not an error; only driver failures propagate.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read key %q: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		s.log.Warn("Discarding undecodable stored value",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}

	return nil
}

// Set stores value under key, replacing whatever was there.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, payload)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	return nil
}

// Remove deletes the document stored under key. Removing an absent key is a
// no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// has reports whether key exists at all, regardless of payload validity.
func (s *Store) has(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv WHERE key = ?`, key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to probe key %q: %w", key, err)
	}
	return n > 0, nil
}
