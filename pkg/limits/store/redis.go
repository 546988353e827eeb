package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a Counter backed by a Redis instance, the store of record when
// gateway workers span hosts. Counting uses INCR; the first increment of a
// window sets its expiry with EXPIRE.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed counter store.
func NewRedis(addr, password string, db int) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// IncrementWithTTL implements Counter.
func (r *Redis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	return count, nil
}

// TTL implements Counter.
func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read window expiry: %w", err)
	}
	if d < 0 {
		// -1 (no expiry) or -2 (missing key).
		return 0, nil
	}
	return d, nil
}

// Close implements Counter.
func (r *Redis) Close() error {
	return r.client.Close()
}
