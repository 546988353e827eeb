// Package server owns the HTTP listener: route setup, the middleware
// chain, and graceful shutdown.
package server
