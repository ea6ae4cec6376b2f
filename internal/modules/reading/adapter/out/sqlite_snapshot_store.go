package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	readingout "bookplus/internal/modules/reading/port/out"
	"bookplus/internal/platform/clock"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/sqlitedb"
)

// SQLiteSnapshotStore is a small key-value table for periodic session
// snapshots. Each Put replaces the previous payload for the key.
type SQLiteSnapshotStore struct {
	db    *sql.DB
	clock clock.Clock
}

func NewSQLiteSnapshotStore(dbPath string, clk clock.Clock) (readingout.SnapshotStore, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	store := &SQLiteSnapshotStore{db: db, clock: clk}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSnapshotStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Put(ctx context.Context, key string, payload []byte) error {
	const stmt = `
INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, key, payload, s.clock.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return payload, nil
}
