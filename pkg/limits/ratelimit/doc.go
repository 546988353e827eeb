// Package ratelimit enforces request quotas over fixed expiry windows
// backed by the shared counter store.
//
// Each admitted request atomically increments the caller's window counter;
// the first increment of a fresh window starts its TTL. A per-key policy
// override takes precedence over the global policy; the override's window
// is tracked independently, so a key with a 5-minute window is limited on
// that window even when the global 1-minute window has capacity.
//
// When the counter store itself fails, the limiter's behavior is a
// deployment choice: the default is fail-open (admit and log), trading
// strictness for availability so a store outage cannot block all
// inference traffic. Operators who prefer strictness set fail_open: false.
package ratelimit
