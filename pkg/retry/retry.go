package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// maxRecordedErrors bounds the per-attempt error ledger. Older entries are
// discarded first.
const maxRecordedErrors = 10

// Config controls the retry loop. All fields are validated by NewConfig.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	// The executor makes at most MaxRetries+1 attempts. Must be >= 0.
	MaxRetries int

	// TotalTimeout is the hard ceiling on the whole attempt chain,
	// including backoff sleeps. Must be > 0.
	TotalTimeout time.Duration

	// BaseDelay is the backoff delay before the second attempt. The delay
	// doubles on every subsequent failure: BaseDelay * 2^attempt.
	// Must be > 0.
	BaseDelay time.Duration
}

// NewConfig validates and returns a retry configuration.
func NewConfig(maxRetries int, totalTimeout, baseDelay time.Duration) (Config, error) {
	cfg := Config{
		MaxRetries:   maxRetries,
		TotalTimeout: totalTimeout,
		BaseDelay:    baseDelay,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative, got %d", c.MaxRetries)
	}
	if c.TotalTimeout <= 0 {
		return fmt.Errorf("total_timeout must be positive, got %s", c.TotalTimeout)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base_delay must be positive, got %s", c.BaseDelay)
	}
	return nil
}

// Result is the outcome of one retry chain.
type Result struct {
	// Success reports whether any attempt succeeded.
	Success bool

	// Attempts is the number of attempts performed.
	Attempts int

	// TotalDuration is the wall-clock time spent in the chain.
	TotalDuration time.Duration

	// Errors holds descriptions of the most recent failed attempts,
	// oldest first, capped at maxRecordedErrors.
	Errors []string
}

// Operation is a single backend call attempt.
type Operation func(ctx context.Context) error

// Permanent wraps an error to mark it as non-retryable. The executor stops
// immediately when an attempt returns a permanent error.
type Permanent struct {
	Err error
}

// Error implements the error interface.
func (p *Permanent) Error() string { return p.Err.Error() }

// Unwrap returns the wrapped error.
func (p *Permanent) Unwrap() error { return p.Err }

// Do runs op under the retry policy.
//
// The loop:
//  1. Before each attempt, stop if the elapsed time has reached the total
//     timeout or the context is cancelled.
//  2. Run the attempt. On success, stop.
//  3. On failure, record the error. If this was the final attempt, stop
//     without sleeping. Otherwise sleep BaseDelay * 2^attempt, capped to
//     the remaining budget, observing context cancellation.
func Do(ctx context.Context, cfg Config, name string, op Operation) Result {
	start := time.Now()
	var errs []string
	attempts := 0

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			recordError(&errs, attempts+1, err)
			break
		}

		elapsed := time.Since(start)
		if elapsed >= cfg.TotalTimeout {
			slog.Warn("retry budget exhausted before attempt",
				"operation", name,
				"attempts", attempts,
				"budget", cfg.TotalTimeout,
			)
			break
		}

		attempts++
		err := op(ctx)
		if err == nil {
			return Result{
				Success:       true,
				Attempts:      attempts,
				TotalDuration: time.Since(start),
				Errors:        errs,
			}
		}

		recordError(&errs, attempts, err)

		var perm *Permanent
		if errors.As(err, &perm) {
			slog.Debug("permanent error, not retrying",
				"operation", name,
				"attempt", attempts,
				"error", perm.Err,
			)
			break
		}

		if attempt == cfg.MaxRetries {
			break
		}

		remaining := cfg.TotalTimeout - time.Since(start)
		if remaining <= 0 {
			break
		}
		delay := cfg.BaseDelay << uint(attempt)
		// Doubling overflows past ~32 attempts; the budget cap applies anyway.
		if delay <= 0 || delay > remaining {
			delay = remaining
		}

		slog.Debug("backing off before retry",
			"operation", name,
			"attempt", attempts,
			"delay", delay,
		)

		if !sleep(ctx, delay) {
			break
		}
	}

	return Result{
		Success:       false,
		Attempts:      attempts,
		TotalDuration: time.Since(start),
		Errors:        errs,
	}
}

// recordError appends an attempt error, evicting the oldest entry when the
// ledger is full.
func recordError(errs *[]string, attempt int, err error) {
	entry := fmt.Sprintf("attempt %d: %v", attempt, err)
	if len(*errs) >= maxRecordedErrors {
		copy(*errs, (*errs)[1:])
		(*errs)[len(*errs)-1] = entry
		return
	}
	*errs = append(*errs, entry)
}

// sleep waits for d or until ctx is cancelled. Returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
