package store

import (
	"context"
	"fmt"
	"time"

	"stratus-gw/stratus/pkg/config"
)

// Counter is the shared counter store contract. Implementations must be
// safe for concurrent use by arbitrary callers across processes.
type Counter interface {
	// IncrementWithTTL atomically increments the counter for key and
	// returns the new count. When the increment creates a fresh window,
	// the window's expiry is set to ttl; an existing window's expiry is
	// left untouched.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// TTL returns the remaining lifetime of key's window. Returns zero
	// if the key does not exist or has expired.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases resources held by the store.
	Close() error
}

// New builds a Counter from configuration.
func New(cfg config.CounterStoreConfig) (Counter, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "redis":
		return NewRedis(cfg.Address, cfg.Password, cfg.DB), nil
	default:
		return nil, fmt.Errorf("unknown counter store type %q", cfg.Type)
	}
}
