// Package audit records per-request usage to a SQLite log.
//
// Writes are asynchronous: the request path enqueues a record on a
// buffered channel and a single writer goroutine drains it. When the
// buffer is full the record is dropped and counted, never blocked on.
// The request path must not stall on audit I/O.
//
// A cron-scheduled pruner enforces the retention window.
package audit
