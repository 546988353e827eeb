package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"stratus-gw/stratus/pkg/audit"
	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/limits/ratelimit"
	"stratus-gw/stratus/pkg/limits/store"
	"stratus-gw/stratus/pkg/proxy"
	"stratus-gw/stratus/pkg/registry"
	"stratus-gw/stratus/pkg/routing"
	"stratus-gw/stratus/pkg/security/keys"
	"stratus-gw/stratus/pkg/server"
	"stratus-gw/stratus/pkg/telemetry/logging"
	"stratus-gw/stratus/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Stratus gateway",
	Long: `Start the gateway with the specified configuration.

The gateway listens on the configured address and proxies inference
requests to the configured backends through admission, rate limiting,
auto-routing, backend selection, and the retry loop.

Examples:
  # Start with default config
  stratus run

  # Start with custom config
  stratus run --config /etc/stratus/config.yaml

  # Override listen address
  stratus run --listen 0.0.0.0:8080

  # Validate config without starting
  stratus run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Log.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared counter store and rate limiter
	counter, err := store.New(cfg.RateLimit.Store)
	if err != nil {
		return fmt.Errorf("failed to open counter store: %w", err)
	}
	defer counter.Close()
	limiter := ratelimit.NewLimiter(counter, cfg.RateLimit.FailsOpen())

	// Backend registry and catalog refresher
	reg := registry.New(cfg.Backends)
	refresher := registry.NewRefresher(reg, cfg.Registry, nil, logger)
	if err := refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start registry refresher: %w", err)
	}
	defer refresher.Stop()

	// Model metadata catalog. An empty catalog disables auto-routing;
	// explicit model requests still work.
	catalog := routing.NewCatalog(nil)
	if cfg.Routing.CatalogPath != "" {
		models, err := routing.LoadCatalog(cfg.Routing.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load model catalog: %w", err)
		}
		catalog.Replace(models)
		logger.Info("model catalog loaded",
			slog.String("path", cfg.Routing.CatalogPath),
			slog.Int("models", len(models)),
		)
	} else {
		logger.Warn("no model catalog configured, auto-routing disabled")
	}

	strategy, err := routing.ParseStrategy(cfg.Routing.Strategy)
	if err != nil {
		return err
	}
	selector := routing.NewSelector(strategy)

	// Usage audit sink and retention pruner
	var sink *audit.Sink
	var auditDropped func() int64
	if cfg.Audit.AuditEnabled() {
		sink, err = audit.NewSink(cfg.Audit.Path, cfg.Audit.BufferSize, logger)
		if err != nil {
			return fmt.Errorf("failed to open audit sink: %w", err)
		}
		defer sink.Close()
		auditDropped = sink.Dropped

		pruner := audit.NewPruner(sink, cfg.Audit.PruneSchedule, cfg.Audit.Retention, logger)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start audit pruner", slog.Any("error", err))
		}
	}

	var collector *metrics.Collector
	if cfg.Metrics.MetricsEnabled() {
		collector = metrics.NewCollector(auditDropped)
	}

	handler := proxy.NewHandler(proxy.Options{
		Config:    cfg,
		Keys:      keys.NewStore(cfg.Auth.Keys),
		Limiter:   limiter,
		Registry:  reg,
		Catalog:   catalog,
		Selector:  selector,
		Forwarder: proxy.NewForwarder(nil, logger),
		Audit:     sink,
		Metrics:   collector,
		Logger:    logger,
	})

	// Live reload of operator settings
	watcher, err := config.NewWatcher(cfgFile, cfg)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	watcher.OnReload(func(next *config.Config) {
		handler.ApplyConfig(next)
		if next.Routing.CatalogPath != "" {
			models, err := routing.LoadCatalog(next.Routing.CatalogPath)
			if err != nil {
				logger.Error("model catalog reload failed", slog.Any("error", err))
				return
			}
			catalog.Replace(models)
		}
	})
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			logger.Warn("config watcher stopped", slog.Any("error", err))
		}
	}()
	defer watcher.Stop()

	var metricsHandler http.Handler
	if collector != nil {
		metricsHandler = collector.Handler()
	}

	srv := server.New(server.Options{
		Config:      cfg.Server,
		Gateway:     handler,
		Registry:    reg,
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	})

	return srv.Start(ctx)
}
