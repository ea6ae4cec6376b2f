package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookplus/internal/modules/profile/domain"
	profileout "bookplus/internal/modules/profile/port/out"
	"bookplus/internal/platform/sqlitedb"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (profileout.Store, error) {
	db, err := sqlitedb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS reading_patterns (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_key TEXT NOT NULL,
  content_type TEXT NOT NULL,
  wpm INTEGER NOT NULL,
  dwell_time_seconds REAL NOT NULL,
  recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reading_patterns_user ON reading_patterns(user_key, id);
CREATE TABLE IF NOT EXISTS baselines (
  user_key TEXT PRIMARY KEY,
  normal_wpm REAL,
  skim_wpm REAL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create profile tables: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendPattern(ctx context.Context, pattern domain.ReadingPattern) error {
	const stmt = `
INSERT INTO reading_patterns (user_key, content_type, wpm, dwell_time_seconds, recorded_at)
VALUES (?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		pattern.UserKey,
		pattern.ContentType,
		pattern.WPM,
		pattern.DwellTimeSeconds,
		pattern.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert reading pattern: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPatterns(ctx context.Context, userKey string, limit int) ([]domain.ReadingPattern, error) {
	query := `SELECT user_key, content_type, wpm, dwell_time_seconds, recorded_at FROM reading_patterns WHERE user_key = ? ORDER BY id DESC`
	args := []any{userKey}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reading patterns: %w", err)
	}
	defer rows.Close()

	var out []domain.ReadingPattern
	for rows.Next() {
		var (
			pattern    domain.ReadingPattern
			recordedAt string
		)
		if err := rows.Scan(&pattern.UserKey, &pattern.ContentType, &pattern.WPM, &pattern.DwellTimeSeconds, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan reading pattern: %w", err)
		}
		pattern.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		out = append(out, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reading patterns: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) LoadBaseline(ctx context.Context, userKey string) (domain.Baseline, bool, error) {
	var (
		normal, skim sql.NullFloat64
		updatedAt    string
	)
	err := s.db.QueryRowContext(ctx, `SELECT normal_wpm, skim_wpm, updated_at FROM baselines WHERE user_key = ?`, userKey).
		Scan(&normal, &skim, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Baseline{UserKey: userKey}, false, nil
	}
	if err != nil {
		return domain.Baseline{}, false, fmt.Errorf("query baseline: %w", err)
	}
	baseline := domain.Baseline{UserKey: userKey}
	if normal.Valid {
		v := normal.Float64
		baseline.NormalWPM = &v
	}
	if skim.Valid {
		v := skim.Float64
		baseline.SkimWPM = &v
	}
	baseline.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return baseline, true, nil
}

func (s *SQLiteStore) SaveBaseline(ctx context.Context, baseline domain.Baseline) error {
	const stmt = `
INSERT INTO baselines (user_key, normal_wpm, skim_wpm, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_key) DO UPDATE SET
  normal_wpm=excluded.normal_wpm,
  skim_wpm=excluded.skim_wpm,
  updated_at=excluded.updated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		baseline.UserKey,
		nullable(baseline.NormalWPM),
		nullable(baseline.SkimWPM),
		baseline.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
