package config

import "time"

// Config is the root configuration for the Stratus gateway.
type Config struct {
	// Server contains the HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log"`

	// Backends lists the inference servers the gateway fronts.
	Backends []BackendConfig `yaml:"backends"`

	// Auth contains API keys, IP lists, and the endpoint block-list.
	Auth AuthConfig `yaml:"auth"`

	// RateLimit contains global rate limiting policy and the shared
	// counter store selection.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Retry controls the per-backend retry loop.
	Retry RetryConfig `yaml:"retry"`

	// Routing controls model auto-routing and backend selection.
	Routing RoutingConfig `yaml:"routing"`

	// Registry controls the backend catalog refresh.
	Registry RegistryConfig `yaml:"registry"`

	// Audit controls the usage log sink.
	Audit AuditConfig `yaml:"audit"`

	// Metrics controls the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains the HTTP listener configuration.
type ServerConfig struct {
	// ListenAddress is "host:port" for the gateway to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response. Zero
	// disables it; streaming responses need it disabled or generous.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the graceful shutdown deadline.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// BackendConfig describes one inference server.
type BackendConfig struct {
	// Name identifies the backend in logs, metrics, and the audit log.
	Name string `yaml:"name"`

	// URL is the backend base URL, e.g. "http://10.0.0.5:11434".
	URL string `yaml:"url"`

	// Enabled controls whether the backend receives traffic.
	// Default: true
	Enabled *bool `yaml:"enabled"`
}

// AuthConfig contains admission configuration.
type AuthConfig struct {
	// Keys lists the API key records.
	Keys []KeyConfig `yaml:"keys"`

	// AllowedIPs is the IP allow-list (exact or glob patterns). When
	// non-empty, clients not matching any entry are denied.
	AllowedIPs []string `yaml:"allowed_ips"`

	// DeniedIPs is the IP deny-list. Always evaluated; deny wins over
	// an allow-list match.
	DeniedIPs []string `yaml:"denied_ips"`

	// BlockedEndpoints lists path patterns rejected for non-admin keys,
	// e.g. "/api/pull", "/api/delete", "/api/create".
	BlockedEndpoints []string `yaml:"blocked_endpoints"`
}

// KeyConfig is one API key record. The secret itself is never stored;
// only its SHA-256 hex digest.
type KeyConfig struct {
	// Name is the key's display name ("user" in the user:key credential).
	Name string `yaml:"name"`

	// KeyHash is the SHA-256 hex digest of the secret.
	KeyHash string `yaml:"key_hash"`

	// Admin grants administrative scope (bypasses the endpoint block-list).
	Admin bool `yaml:"admin"`

	// Disabled keys fail authentication the same as unknown ones.
	Disabled bool `yaml:"disabled"`

	// Revoked keys fail authentication the same as unknown ones.
	Revoked bool `yaml:"revoked"`

	// RateLimit, when set, overrides the global rate limit for this key.
	RateLimit *RatePolicy `yaml:"rate_limit"`
}

// RatePolicy is a request quota over a window.
type RatePolicy struct {
	// Requests is the number of requests admitted per window.
	Requests int `yaml:"requests"`

	// Window is the window length.
	Window time.Duration `yaml:"window"`
}

// RateLimitConfig contains the global rate limit policy and store selection.
type RateLimitConfig struct {
	// Enabled turns rate limiting on. Default: true
	Enabled *bool `yaml:"enabled"`

	// Global is the default policy for keys without an override.
	// Default: 100 requests / 1m
	Global RatePolicy `yaml:"global"`

	// FailOpen admits requests when the counter store is unreachable.
	// This trades strictness for availability: a store outage never
	// blocks inference traffic. Set false to fail closed.
	// Default: true
	FailOpen *bool `yaml:"fail_open"`

	// Store selects the shared counter store.
	Store CounterStoreConfig `yaml:"store"`
}

// CounterStoreConfig selects and configures the shared counter store.
type CounterStoreConfig struct {
	// Type is "memory", "sqlite", or "redis".
	// Memory counters are per-process; sqlite shares a file between
	// processes on one host; redis is the cross-host store.
	// Default: "memory"
	Type string `yaml:"type"`

	// Path is the sqlite database path (sqlite type only).
	Path string `yaml:"path"`

	// Address is the redis address (redis type only).
	Address string `yaml:"address"`

	// Password is the redis password (redis type only).
	Password string `yaml:"password"`

	// DB is the redis database number (redis type only).
	DB int `yaml:"db"`
}

// RetryConfig controls the per-backend retry loop.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	// Default: 5
	MaxRetries int `yaml:"max_retries"`

	// TotalTimeout is the hard ceiling on one backend's attempt chain.
	// Default: 2s
	TotalTimeout time.Duration `yaml:"total_timeout"`

	// BaseDelay is the initial backoff delay; it doubles per attempt.
	// Default: 50ms
	BaseDelay time.Duration `yaml:"base_delay"`
}

// RoutingConfig controls auto-routing and backend selection.
type RoutingConfig struct {
	// PriorityMode is "free", "daily_drive", "advanced", or "luxury".
	// Default: "free"
	PriorityMode string `yaml:"priority_mode"`

	// Strategy selects backends among those hosting the target model:
	// "round_robin" or "least_busy". Default: "round_robin"
	Strategy string `yaml:"strategy"`

	// CatalogPath points at the model metadata catalog (YAML). Empty
	// disables auto-routing; explicit model requests still work.
	CatalogPath string `yaml:"catalog_path"`

	// Penalties tunes the missing-capability score penalties. These are
	// policy constants, not physical ones; operators may rebalance them.
	Penalties PenaltyConfig `yaml:"penalties"`
}

// PenaltyConfig holds the missing-capability penalties applied by the
// model scorer. Zero values take the defaults.
type PenaltyConfig struct {
	// Images is subtracted when the request needs image input and the
	// model lacks it. Default: 50
	Images int `yaml:"images"`

	// ToolCalling is subtracted for a missing tool-calling capability.
	// Default: 50
	ToolCalling int `yaml:"tool_calling"`

	// Internet is subtracted for a missing internet/grounding capability.
	// Default: 50
	Internet int `yaml:"internet"`

	// Code is subtracted for a missing code capability. Default: 30
	Code int `yaml:"code"`

	// Thinking is subtracted for a missing reasoning capability.
	// Default: 30
	Thinking int `yaml:"thinking"`

	// Fast is subtracted for a missing low-latency capability.
	// Default: 20
	Fast int `yaml:"fast"`
}

// RegistryConfig controls the backend catalog refresh.
type RegistryConfig struct {
	// RefreshSchedule is a cron expression for periodic catalog refresh,
	// e.g. "@every 5m". Empty disables the scheduler.
	// Default: "@every 5m"
	RefreshSchedule string `yaml:"refresh_schedule"`

	// RefreshTimeout bounds one backend's catalog fetch. Default: 10s
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
}

// AuditConfig controls the usage log sink.
type AuditConfig struct {
	// Enabled turns the audit sink on. Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the sqlite database path for usage records.
	// Default: "stratus-audit.db"
	Path string `yaml:"path"`

	// BufferSize is the async writer queue depth. Records are dropped,
	// never blocked on, when the queue is full. Default: 1024
	BufferSize int `yaml:"buffer_size"`

	// Retention is how long usage records are kept. Default: 720h
	Retention time.Duration `yaml:"retention"`

	// PruneSchedule is a cron expression for retention pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on. Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}

// BackendEnabled reports the effective enabled state of a backend entry.
func (b BackendConfig) BackendEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// RateLimitEnabled reports the effective rate limiting state.
func (c RateLimitConfig) RateLimitEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// FailsOpen reports the effective store-failure policy.
func (c RateLimitConfig) FailsOpen() bool {
	return c.FailOpen == nil || *c.FailOpen
}

// AuditEnabled reports the effective audit sink state.
func (c AuditConfig) AuditEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MetricsEnabled reports the effective metrics endpoint state.
func (c MetricsConfig) MetricsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
