package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validPriorityModes = map[string]bool{
	"free":        true,
	"daily_drive": true,
	"advanced":    true,
	"luxury":      true,
}

var validStrategies = map[string]bool{
	"round_robin": true,
	"least_busy":  true,
}

var validStoreTypes = map[string]bool{
	"memory": true,
	"sqlite": true,
	"redis":  true,
}

// Validate checks the configuration for errors. It is called after
// ApplyDefaults, so zero values that have defaults are already filled.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address is required")
	}

	seen := make(map[string]bool)
	for i, b := range cfg.Backends {
		if b.Name == "" {
			return fmt.Errorf("backends[%d].name is required", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate backend name %q", i, b.Name)
		}
		seen[b.Name] = true
		if b.URL == "" {
			return fmt.Errorf("backends[%d].url is required", i)
		}
		u, err := url.Parse(b.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("backends[%d].url %q is not a valid URL", i, b.URL)
		}
	}

	names := make(map[string]bool)
	for i, k := range cfg.Auth.Keys {
		if k.Name == "" {
			return fmt.Errorf("auth.keys[%d].name is required", i)
		}
		if strings.Contains(k.Name, ":") {
			return fmt.Errorf("auth.keys[%d].name must not contain ':'", i)
		}
		if names[k.Name] {
			return fmt.Errorf("auth.keys[%d]: duplicate key name %q", i, k.Name)
		}
		names[k.Name] = true
		if len(k.KeyHash) != 64 {
			return fmt.Errorf("auth.keys[%d].key_hash must be a SHA-256 hex digest", i)
		}
		if k.RateLimit != nil {
			if k.RateLimit.Requests <= 0 {
				return fmt.Errorf("auth.keys[%d].rate_limit.requests must be positive", i)
			}
			if k.RateLimit.Window <= 0 {
				return fmt.Errorf("auth.keys[%d].rate_limit.window must be positive", i)
			}
		}
	}

	if cfg.RateLimit.Global.Requests <= 0 {
		return fmt.Errorf("rate_limit.global.requests must be positive")
	}
	if cfg.RateLimit.Global.Window <= 0 {
		return fmt.Errorf("rate_limit.global.window must be positive")
	}
	if !validStoreTypes[cfg.RateLimit.Store.Type] {
		return fmt.Errorf("rate_limit.store.type %q is not one of memory, sqlite, redis", cfg.RateLimit.Store.Type)
	}
	if cfg.RateLimit.Store.Type == "sqlite" && cfg.RateLimit.Store.Path == "" {
		return fmt.Errorf("rate_limit.store.path is required for the sqlite store")
	}
	if cfg.RateLimit.Store.Type == "redis" && cfg.RateLimit.Store.Address == "" {
		return fmt.Errorf("rate_limit.store.address is required for the redis store")
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be non-negative")
	}
	if cfg.Retry.TotalTimeout <= 0 {
		return fmt.Errorf("retry.total_timeout must be positive")
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive")
	}

	if !validPriorityModes[cfg.Routing.PriorityMode] {
		return fmt.Errorf("routing.priority_mode %q is not one of free, daily_drive, advanced, luxury", cfg.Routing.PriorityMode)
	}
	if !validStrategies[cfg.Routing.Strategy] {
		return fmt.Errorf("routing.strategy %q is not one of round_robin, least_busy", cfg.Routing.Strategy)
	}

	if cfg.Audit.BufferSize < 0 {
		return fmt.Errorf("audit.buffer_size must be non-negative")
	}

	return nil
}
