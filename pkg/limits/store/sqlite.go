package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rate_windows (
	key        TEXT PRIMARY KEY,
	count      INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rate_windows_expires ON rate_windows(expires_at);
`

// SQLite is a Counter backed by a shared SQLite database file. Worker
// processes on the same host point at the same file; each increment runs
// in an immediate transaction so counts stay atomic across processes.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the counter database at path.
func NewSQLite(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open counter database %q: %w", path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize counter schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// IncrementWithTTL implements Counter.
//
// The whole operation is a single UPSERT so concurrent callers, including
// ones in other processes, never lose an increment. An expired window is
// restarted in place rather than deleted first.
func (s *SQLite) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := time.Now().UnixMilli()
	expiresAt := now + ttl.Milliseconds()

	var count int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rate_windows (key, count, expires_at) VALUES (?1, 1, ?3)
		 ON CONFLICT(key) DO UPDATE SET
			count      = CASE WHEN rate_windows.expires_at <= ?2 THEN 1 ELSE rate_windows.count + 1 END,
			expires_at = CASE WHEN rate_windows.expires_at <= ?2 THEN ?3 ELSE rate_windows.expires_at END
		 RETURNING count`,
		key, now, expiresAt,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment window: %w", err)
	}
	return count, nil
}

// TTL implements Counter.
func (s *SQLite) TTL(ctx context.Context, key string) (time.Duration, error) {
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM rate_windows WHERE key = ?`, key,
	).Scan(&expiresAt)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read window expiry: %w", err)
	}

	remaining := time.Until(time.UnixMilli(expiresAt))
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Cleanup removes expired windows. Called periodically by the audit
// pruning scheduler to keep the table small.
func (s *SQLite) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM rate_windows WHERE expires_at <= ?`, time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired windows: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close implements Counter.
func (s *SQLite) Close() error {
	return s.db.Close()
}
