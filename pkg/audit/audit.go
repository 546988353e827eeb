package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_log (
	id         TEXT PRIMARY KEY,
	at         INTEGER NOT NULL,
	event      TEXT NOT NULL,
	key_name   TEXT NOT NULL,
	model      TEXT,
	backend    TEXT,
	status     INTEGER NOT NULL,
	attempts   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_log_at ON usage_log(at);
CREATE INDEX IF NOT EXISTS idx_usage_log_key ON usage_log(key_name);
`

// Record is one usage log entry.
type Record struct {
	// Event classifies the entry: "request", "denied", "rate_limited".
	Event string

	// Key is the authenticated key name, empty when admission failed.
	Key string

	// Model is the served model, after auto-routing resolution.
	Model string

	// Backend is the backend that handled the request.
	Backend string

	// Status is the HTTP status returned to the client.
	Status int

	// Attempts is the number of backend attempts made.
	Attempts int

	// Duration is the end-to-end request duration.
	Duration time.Duration
}

// Sink writes records asynchronously to the usage log. Close drains the
// queue before returning.
type Sink struct {
	db      *sql.DB
	queue   chan Record
	dropped atomic.Int64
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewSink opens (or creates) the usage log at path and starts the
// writer goroutine.
func NewSink(path string, bufferSize int, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	s := &Sink{
		db:     db,
		queue:  make(chan Record, bufferSize),
		logger: logger.With(slog.String("component", "audit")),
		done:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Write enqueues a record. It never blocks; when the queue is full the
// record is dropped and the drop counter incremented.
func (s *Sink) Write(rec Record) {
	select {
	case s.queue <- rec:
	default:
		s.dropped.Add(1)
	}
}

// Dropped is the number of records lost to a full queue.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops the writer after draining queued records.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		close(s.queue)
		<-s.done
	})
	return s.db.Close()
}

func (s *Sink) run() {
	defer close(s.done)
	for rec := range s.queue {
		if err := s.insert(rec); err != nil {
			s.logger.Error("audit write failed", slog.Any("error", err))
		}
	}
}

func (s *Sink) insert(rec Record) error {
	_, err := s.db.Exec(
		`INSERT INTO usage_log (id, at, event, key_name, model, backend, status, attempts, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UnixMilli(), rec.Event, rec.Key,
		rec.Model, rec.Backend, rec.Status, rec.Attempts, rec.Duration.Milliseconds(),
	)
	return err
}

// Prune deletes records older than the retention window and reports how
// many were removed.
func (s *Sink) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM usage_log WHERE at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning usage log: %w", err)
	}
	return res.RowsAffected()
}

// Count reports the number of stored records. Used by tests and the
// health endpoint.
func (s *Sink) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usage_log`).Scan(&n)
	return n, err
}
