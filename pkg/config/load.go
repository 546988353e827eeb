package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides of the form STRATUS_SECTION_FIELD
// (e.g. STRATUS_SERVER_LISTEN_ADDRESS). Environment variables take
// precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("STRATUS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("STRATUS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("STRATUS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	if val := os.Getenv("STRATUS_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("STRATUS_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}

	if val := os.Getenv("STRATUS_RATE_LIMIT_GLOBAL_REQUESTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.RateLimit.Global.Requests = n
		}
	}
	if val := os.Getenv("STRATUS_RATE_LIMIT_GLOBAL_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RateLimit.Global.Window = d
		}
	}
	if val := os.Getenv("STRATUS_RATE_LIMIT_STORE_TYPE"); val != "" {
		cfg.RateLimit.Store.Type = val
	}
	if val := os.Getenv("STRATUS_RATE_LIMIT_STORE_ADDRESS"); val != "" {
		cfg.RateLimit.Store.Address = val
	}
	if val := os.Getenv("STRATUS_RATE_LIMIT_STORE_PASSWORD"); val != "" {
		cfg.RateLimit.Store.Password = val
	}

	if val := os.Getenv("STRATUS_RETRY_MAX_RETRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Retry.MaxRetries = n
		}
	}
	if val := os.Getenv("STRATUS_RETRY_TOTAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.TotalTimeout = d
		}
	}
	if val := os.Getenv("STRATUS_RETRY_BASE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retry.BaseDelay = d
		}
	}

	if val := os.Getenv("STRATUS_ROUTING_PRIORITY_MODE"); val != "" {
		cfg.Routing.PriorityMode = val
	}
	if val := os.Getenv("STRATUS_ROUTING_STRATEGY"); val != "" {
		cfg.Routing.Strategy = val
	}

	if val := os.Getenv("STRATUS_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("STRATUS_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
}
