// Package retry implements a bounded, exponentially backed-off retry
// executor for backend calls.
//
// The executor makes at most MaxRetries+1 attempts and never sleeps past
// the remaining total time budget. Each failed attempt is recorded; only
// the most recent errors are kept so a long retry chain cannot accumulate
// unbounded state.
//
// Retries wrap the connect/dispatch phase of a backend call only. Once a
// response has started streaming to a client the attempt is committed and
// must not be retried by the caller.
package retry
