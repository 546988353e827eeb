package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/limits/store"
)

// GlobalIdentity is the identity used for the shared global window.
const GlobalIdentity = "global"

// Decision is the outcome of one rate limit check.
type Decision struct {
	// Allowed reports whether the request is admitted.
	Allowed bool

	// RetryAfter is how long the caller should wait before retrying.
	// Zero when Allowed.
	RetryAfter time.Duration

	// Limit is the policy's request quota.
	Limit int

	// Remaining is the quota left in the current window, never negative.
	Remaining int

	// FailedOpen reports that the counter store was unreachable and the
	// request was admitted by the fail-open policy.
	FailedOpen bool
}

// Limiter enforces request quotas against the shared counter store.
type Limiter struct {
	counter  store.Counter
	failOpen bool
}

// NewLimiter creates a rate limiter.
func NewLimiter(counter store.Counter, failOpen bool) *Limiter {
	return &Limiter{
		counter:  counter,
		failOpen: failOpen,
	}
}

// Check atomically consumes one request from identity's window under the
// given policy and returns the admission decision.
//
// The counter key incorporates the window length, so changing a policy's
// window (live reload, per-key override) starts counting on a fresh
// window rather than misreading an old one.
func (l *Limiter) Check(ctx context.Context, identity string, policy config.RatePolicy) Decision {
	key := fmt.Sprintf("rate_limit:%s:%d", identity, int64(policy.Window.Seconds()))

	count, err := l.counter.IncrementWithTTL(ctx, key, policy.Window)
	if err != nil {
		if l.failOpen {
			slog.Error("counter store unavailable, admitting request (fail-open)",
				"identity", identity,
				"error", err,
			)
			return Decision{Allowed: true, Limit: policy.Requests, Remaining: policy.Requests, FailedOpen: true}
		}
		slog.Error("counter store unavailable, rejecting request (fail-closed)",
			"identity", identity,
			"error", err,
		)
		return Decision{Allowed: false, RetryAfter: policy.Window, Limit: policy.Requests}
	}

	remaining := policy.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	if count > int64(policy.Requests) {
		retryAfter, ttlErr := l.counter.TTL(ctx, key)
		if ttlErr != nil || retryAfter <= 0 {
			retryAfter = policy.Window
		}
		return Decision{
			Allowed:    false,
			RetryAfter: retryAfter,
			Limit:      policy.Requests,
			Remaining:  0,
		}
	}

	return Decision{
		Allowed:   true,
		Limit:     policy.Requests,
		Remaining: remaining,
	}
}

// PolicyFor resolves the effective policy for a key: the key's override
// when present, otherwise the global policy. Either way the window is
// tracked per key, so one caller exhausting its quota never starves the
// others.
func PolicyFor(override *config.RatePolicy, global config.RatePolicy) config.RatePolicy {
	if override != nil {
		return *override
	}
	return global
}
