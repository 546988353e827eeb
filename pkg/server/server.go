package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/proxy/middleware"
	"stratus-gw/stratus/pkg/registry"
)

// Options wires the server's handlers. Gateway handles everything the
// dedicated routes don't. Metrics may be nil when disabled.
type Options struct {
	Config   config.ServerConfig
	Gateway  http.Handler
	Registry *registry.Registry
	Metrics  http.Handler
	// MetricsPath defaults to /metrics.
	MetricsPath string
	Logger      *slog.Logger
}

// Server is the gateway's HTTP front end.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
	logger     *slog.Logger

	shutdownOnce sync.Once
}

// New assembles the route table and middleware chain.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler(opts.Registry))
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, opts.Metrics)
	}
	mux.Handle("/", opts.Gateway)

	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return &Server{
		cfg: opts.Config,
		httpServer: &http.Server{
			Addr:         opts.Config.ListenAddress,
			Handler:      handler,
			ReadTimeout:  opts.Config.ReadTimeout,
			WriteTimeout: opts.Config.WriteTimeout,
			IdleTimeout:  opts.Config.IdleTimeout,
		},
		logger: logger,
	}
}

// Handler exposes the assembled handler chain for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the listener and blocks until the context is cancelled, a
// termination signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", slog.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
		return s.Shutdown()
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		return s.Shutdown()
	case err := <-errChan:
		return err
	}
}

// Shutdown drains in-flight requests within the configured deadline.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
		if err != nil {
			s.logger.Error("graceful shutdown failed", slog.Any("error", err))
			return
		}
		s.logger.Info("server stopped")
	})
	return err
}

// healthHandler reports per-backend state.
func healthHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := reg.Statuses()
		healthy := false
		for _, st := range statuses {
			if st.Active {
				healthy = true
				break
			}
		}
		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   state,
			"backends": statuses,
		})
	}
}
