// Package store provides the shared counter store that backs rate limiting.
//
// The store contract is a single atomic operation: increment a key and, if
// the increment created the key, start its expiry window. This is the one
// piece of gateway state that must be consistent across worker processes,
// so it lives behind the Counter interface with three implementations:
//
//   - Memory: per-process counters for tests and single-instance runs.
//   - SQLite: a shared database file for multiple processes on one host.
//   - Redis: the cross-host store of record (INCR + EXPIRE).
package store
