package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/limits/store"
)

// failingCounter simulates a counter store outage.
type failingCounter struct{}

func (f *failingCounter) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, errors.New("store unreachable")
}

func (f *failingCounter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, errors.New("store unreachable")
}

func (f *failingCounter) Close() error { return nil }

func TestCheck_AdmitsUnderLimit(t *testing.T) {
	l := NewLimiter(store.NewMemory(), true)
	policy := config.RatePolicy{Requests: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		d := l.Check(context.Background(), "alice", policy)
		if !d.Allowed {
			t.Fatalf("request %d rejected, want admitted", i+1)
		}
		if d.Remaining != 3-(i+1) {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, d.Remaining, 3-(i+1))
		}
	}
}

func TestCheck_RejectsOverLimit(t *testing.T) {
	l := NewLimiter(store.NewMemory(), true)
	policy := config.RatePolicy{Requests: 2, Window: time.Minute}

	l.Check(context.Background(), "alice", policy)
	l.Check(context.Background(), "alice", policy)

	d := l.Check(context.Background(), "alice", policy)
	if d.Allowed {
		t.Fatal("3rd request admitted, want rejected")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want (0, 1m]", d.RetryAfter)
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
}

func TestCheck_KeysTrackedIndependently(t *testing.T) {
	l := NewLimiter(store.NewMemory(), true)
	policy := config.RatePolicy{Requests: 1, Window: time.Minute}

	if d := l.Check(context.Background(), "alice", policy); !d.Allowed {
		t.Fatal("alice's first request rejected")
	}
	if d := l.Check(context.Background(), "alice", policy); d.Allowed {
		t.Fatal("alice's second request admitted")
	}
	if d := l.Check(context.Background(), "bob", policy); !d.Allowed {
		t.Error("bob rejected by alice's exhausted window")
	}
}

func TestCheck_PerKeyOverrideWindow(t *testing.T) {
	// A key with a custom 10-requests-per-5-minutes override is limited on
	// that window even when the global 100-per-minute window has capacity.
	l := NewLimiter(store.NewMemory(), true)

	override := &config.RatePolicy{Requests: 10, Window: 5 * time.Minute}
	global := config.RatePolicy{Requests: 100, Window: time.Minute}

	policy := PolicyFor(override, global)
	for i := 0; i < 10; i++ {
		if d := l.Check(context.Background(), "special", policy); !d.Allowed {
			t.Fatalf("request %d rejected under override", i+1)
		}
	}

	d := l.Check(context.Background(), "special", policy)
	if d.Allowed {
		t.Error("11th request admitted, want rejected by the override")
	}
	if d.Limit != 10 {
		t.Errorf("Limit = %d, want override limit 10", d.Limit)
	}
}

func TestPolicyFor(t *testing.T) {
	global := config.RatePolicy{Requests: 100, Window: time.Minute}
	override := &config.RatePolicy{Requests: 5, Window: time.Hour}

	if got := PolicyFor(nil, global); got != global {
		t.Errorf("PolicyFor(nil) = %+v, want global", got)
	}
	if got := PolicyFor(override, global); got != *override {
		t.Errorf("PolicyFor(override) = %+v, want override", got)
	}
}

func TestCheck_WindowExpiryResets(t *testing.T) {
	l := NewLimiter(store.NewMemory(), true)
	policy := config.RatePolicy{Requests: 1, Window: 40 * time.Millisecond}

	if d := l.Check(context.Background(), "alice", policy); !d.Allowed {
		t.Fatal("first request rejected")
	}
	if d := l.Check(context.Background(), "alice", policy); d.Allowed {
		t.Fatal("second request admitted inside window")
	}

	time.Sleep(60 * time.Millisecond)

	if d := l.Check(context.Background(), "alice", policy); !d.Allowed {
		t.Error("request after window expiry rejected")
	}
}

func TestCheck_FailOpen(t *testing.T) {
	l := NewLimiter(&failingCounter{}, true)
	policy := config.RatePolicy{Requests: 1, Window: time.Minute}

	d := l.Check(context.Background(), "alice", policy)
	if !d.Allowed {
		t.Error("fail-open limiter rejected on store failure")
	}
	if !d.FailedOpen {
		t.Error("FailedOpen not reported")
	}
}

func TestCheck_FailClosed(t *testing.T) {
	l := NewLimiter(&failingCounter{}, false)
	policy := config.RatePolicy{Requests: 1, Window: time.Minute}

	d := l.Check(context.Background(), "alice", policy)
	if d.Allowed {
		t.Error("fail-closed limiter admitted on store failure")
	}
	if d.RetryAfter != policy.Window {
		t.Errorf("RetryAfter = %v, want window length", d.RetryAfter)
	}
}
