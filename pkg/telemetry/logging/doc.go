// Package logging provides structured logging for the gateway built on
// log/slog.
//
// The package wraps slog with level/format parsing from configuration and
// extraction of request-scoped fields (request ID, API key name, backend)
// from a context.Context, so every log line on the request path carries
// correlation fields.
package logging
