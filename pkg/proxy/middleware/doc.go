// Package middleware provides the HTTP middleware chain: request ID
// assignment, structured request logging, and panic recovery.
package middleware
