package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultGlobalRateRequests = 100
	DefaultGlobalRateWindow   = time.Minute
	DefaultCounterStoreType   = "memory"

	DefaultMaxRetries   = 5
	DefaultTotalTimeout = 2 * time.Second
	DefaultBaseDelay    = 50 * time.Millisecond

	DefaultPriorityMode = "free"
	DefaultStrategy     = "round_robin"

	DefaultPenaltyImages      = 50
	DefaultPenaltyToolCalling = 50
	DefaultPenaltyInternet    = 50
	DefaultPenaltyCode        = 30
	DefaultPenaltyThinking    = 30
	DefaultPenaltyFast        = 20

	DefaultRefreshSchedule = "@every 5m"
	DefaultRefreshTimeout  = 10 * time.Second

	DefaultAuditPath       = "stratus-audit.db"
	DefaultAuditBufferSize = 1024
	DefaultAuditRetention  = 720 * time.Hour
	DefaultPruneSchedule   = "0 3 * * *"

	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills unset fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.RateLimit.Global.Requests == 0 {
		cfg.RateLimit.Global.Requests = DefaultGlobalRateRequests
	}
	if cfg.RateLimit.Global.Window == 0 {
		cfg.RateLimit.Global.Window = DefaultGlobalRateWindow
	}
	if cfg.RateLimit.Store.Type == "" {
		cfg.RateLimit.Store.Type = DefaultCounterStoreType
	}

	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = DefaultMaxRetries
	}
	if cfg.Retry.TotalTimeout == 0 {
		cfg.Retry.TotalTimeout = DefaultTotalTimeout
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultBaseDelay
	}

	if cfg.Routing.PriorityMode == "" {
		cfg.Routing.PriorityMode = DefaultPriorityMode
	}
	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = DefaultStrategy
	}
	applyPenaltyDefaults(&cfg.Routing.Penalties)

	if cfg.Registry.RefreshSchedule == "" {
		cfg.Registry.RefreshSchedule = DefaultRefreshSchedule
	}
	if cfg.Registry.RefreshTimeout == 0 {
		cfg.Registry.RefreshTimeout = DefaultRefreshTimeout
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.Retention == 0 {
		cfg.Audit.Retention = DefaultAuditRetention
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

func applyPenaltyDefaults(p *PenaltyConfig) {
	if p.Images == 0 {
		p.Images = DefaultPenaltyImages
	}
	if p.ToolCalling == 0 {
		p.ToolCalling = DefaultPenaltyToolCalling
	}
	if p.Internet == 0 {
		p.Internet = DefaultPenaltyInternet
	}
	if p.Code == 0 {
		p.Code = DefaultPenaltyCode
	}
	if p.Thinking == 0 {
		p.Thinking = DefaultPenaltyThinking
	}
	if p.Fast == 0 {
		p.Fast = DefaultPenaltyFast
	}
}
