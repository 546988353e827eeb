package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name         string
		maxRetries   int
		totalTimeout time.Duration
		baseDelay    time.Duration
		wantErr      bool
	}{
		{
			name:         "valid config",
			maxRetries:   5,
			totalTimeout: 2 * time.Second,
			baseDelay:    50 * time.Millisecond,
			wantErr:      false,
		},
		{
			name:         "zero retries is valid",
			maxRetries:   0,
			totalTimeout: time.Second,
			baseDelay:    time.Millisecond,
			wantErr:      false,
		},
		{
			name:         "negative retries",
			maxRetries:   -1,
			totalTimeout: time.Second,
			baseDelay:    time.Millisecond,
			wantErr:      true,
		},
		{
			name:         "zero timeout",
			maxRetries:   3,
			totalTimeout: 0,
			baseDelay:    time.Millisecond,
			wantErr:      true,
		},
		{
			name:         "zero base delay",
			maxRetries:   3,
			totalTimeout: time.Second,
			baseDelay:    0,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.maxRetries, tt.totalTimeout, tt.baseDelay)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	cfg := Config{MaxRetries: 3, TotalTimeout: time.Second, BaseDelay: time.Millisecond}

	calls := 0
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		calls++
		return nil
	})

	if !result.Success {
		t.Error("expected success")
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want empty", result.Errors)
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	cfg := Config{MaxRetries: 5, TotalTimeout: 5 * time.Second, BaseDelay: time.Millisecond}

	calls := 0
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	if len(result.Errors) != 2 {
		t.Errorf("recorded %d errors, want 2", len(result.Errors))
	}
}

func TestDo_AlwaysFails(t *testing.T) {
	// Scenario from the retry contract: max_retries=5, base_delay=50ms,
	// total_timeout=2s against a backend that fails every attempt must
	// perform exactly 6 attempts with cumulative sleep under the budget.
	cfg := Config{MaxRetries: 5, TotalTimeout: 2 * time.Second, BaseDelay: 50 * time.Millisecond}

	calls := 0
	start := time.Now()
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("boom %d", calls)
	})
	elapsed := time.Since(start)

	if result.Success {
		t.Error("expected failure")
	}
	if result.Attempts != 6 {
		t.Errorf("Attempts = %d, want 6", result.Attempts)
	}
	if calls != 6 {
		t.Errorf("operation called %d times, want 6", calls)
	}
	// Sleeps: 50+100+200+400+800 = 1550ms, no sleep after the final attempt.
	if elapsed >= cfg.TotalTimeout+200*time.Millisecond {
		t.Errorf("elapsed %s exceeds budget %s", elapsed, cfg.TotalTimeout)
	}
	if len(result.Errors) != 6 {
		t.Errorf("recorded %d errors, want 6", len(result.Errors))
	}
	if !strings.Contains(result.Errors[0], "attempt 1") {
		t.Errorf("first error = %q, want attempt 1 prefix", result.Errors[0])
	}
}

func TestDo_NoFinalSleep(t *testing.T) {
	// With a large base delay, a single retry chain must not sleep after
	// the last attempt.
	cfg := Config{MaxRetries: 1, TotalTimeout: 10 * time.Second, BaseDelay: 20 * time.Millisecond}

	start := time.Now()
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		return errors.New("nope")
	})
	elapsed := time.Since(start)

	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
	// One sleep of 20ms between the two attempts; nothing after.
	if elapsed > 500*time.Millisecond {
		t.Errorf("elapsed %s suggests a sleep after the final attempt", elapsed)
	}
}

func TestDo_BudgetStopsAttempts(t *testing.T) {
	cfg := Config{MaxRetries: 100, TotalTimeout: 60 * time.Millisecond, BaseDelay: 30 * time.Millisecond}

	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		return errors.New("fail")
	})

	if result.Success {
		t.Error("expected failure")
	}
	// Budget allows the first attempt plus at most a couple of retries.
	if result.Attempts > 4 {
		t.Errorf("Attempts = %d, budget should have stopped the loop sooner", result.Attempts)
	}
	if result.Attempts < 1 {
		t.Error("expected at least one attempt")
	}
}

func TestDo_ZeroRetries(t *testing.T) {
	cfg := Config{MaxRetries: 0, TotalTimeout: time.Second, BaseDelay: time.Millisecond}

	calls := 0
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		calls++
		return errors.New("fail")
	})

	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	cfg := Config{MaxRetries: 10, TotalTimeout: 10 * time.Second, BaseDelay: 100 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	start := time.Now()
	result := Do(ctx, cfg, "test", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			// Cancel while the executor is in its first backoff sleep.
			go func() {
				time.Sleep(10 * time.Millisecond)
				cancel()
			}()
		}
		return errors.New("fail")
	})

	if result.Success {
		t.Error("expected failure")
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1 (cancelled during sleep)", calls)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation was not observed promptly")
	}
}

func TestDo_CancelledBeforeFirstAttempt(t *testing.T) {
	cfg := Config{MaxRetries: 3, TotalTimeout: time.Second, BaseDelay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	result := Do(ctx, cfg, "test", func(ctx context.Context) error {
		calls++
		return nil
	})

	if calls != 0 {
		t.Errorf("operation called %d times, want 0", calls)
	}
	if result.Success {
		t.Error("expected failure")
	}
}

func TestDo_PermanentErrorStopsRetries(t *testing.T) {
	cfg := Config{MaxRetries: 5, TotalTimeout: time.Second, BaseDelay: time.Millisecond}

	calls := 0
	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		calls++
		return &Permanent{Err: errors.New("bad request")}
	})

	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
	if result.Success {
		t.Error("expected failure")
	}
}

func TestDo_ErrorLedgerBounded(t *testing.T) {
	cfg := Config{MaxRetries: 30, TotalTimeout: time.Second, BaseDelay: time.Microsecond}

	result := Do(context.Background(), cfg, "test", func(ctx context.Context) error {
		return errors.New("fail")
	})

	if len(result.Errors) > maxRecordedErrors {
		t.Errorf("recorded %d errors, cap is %d", len(result.Errors), maxRecordedErrors)
	}
	// Most recent attempt is always last.
	last := result.Errors[len(result.Errors)-1]
	if !strings.Contains(last, fmt.Sprintf("attempt %d", result.Attempts)) {
		t.Errorf("last error = %q, want attempt %d", last, result.Attempts)
	}
}
