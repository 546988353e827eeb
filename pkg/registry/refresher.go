package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"stratus-gw/stratus/pkg/config"
)

// Refresher pulls each backend's model catalog on a cron schedule and
// keeps the health flags current. A backend that fails its catalog
// fetch is marked unhealthy until a later fetch succeeds.
type Refresher struct {
	registry *Registry
	client   *http.Client
	schedule string
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewRefresher creates a refresher over the registry. A nil client
// uses a default with the configured timeout.
func NewRefresher(reg *Registry, cfg config.RegistryConfig, client *http.Client, logger *slog.Logger) *Refresher {
	if client == nil {
		client = &http.Client{Timeout: cfg.RefreshTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		registry: reg,
		client:   client,
		schedule: cfg.RefreshSchedule,
		timeout:  cfg.RefreshTimeout,
		logger:   logger.With(slog.String("component", "registry.refresher")),
		cron:     cron.New(),
	}
}

// Start runs one immediate refresh and then schedules the periodic one.
// An empty schedule disables the periodic refresh.
func (r *Refresher) Start(ctx context.Context) error {
	r.RefreshAll(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("refresh schedule not configured, periodic refresh disabled")
		return nil
	}
	if _, err := r.cron.AddFunc(r.schedule, func() { r.RefreshAll(ctx) }); err != nil {
		return fmt.Errorf("scheduling catalog refresh: %w", err)
	}
	r.cron.Start()
	r.running = true
	r.logger.Info("catalog refresher started", slog.String("schedule", r.schedule))

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop halts the periodic refresh. A refresh already in flight finishes.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.cron.Stop()
	r.running = false
	r.logger.Info("catalog refresher stopped")
}

// RefreshAll fetches every enabled backend's catalog concurrently.
func (r *Refresher) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, b := range r.registry.List() {
		if !b.Enabled() {
			continue
		}
		wg.Add(1)
		go func(b *Backend) {
			defer wg.Done()
			if err := r.refreshOne(ctx, b); err != nil {
				b.SetHealthy(false)
				r.logger.Warn("catalog refresh failed",
					slog.String("backend", b.Name()),
					slog.Any("error", err))
				return
			}
			b.SetHealthy(true)
		}(b)
	}
	wg.Wait()
}

// tagsResponse is the catalog endpoint's wire shape.
type tagsResponse struct {
	Models []struct {
		Name    string `json:"name"`
		Details struct {
			ParameterSize     string `json:"parameter_size"`
			QuantizationLevel string `json:"quantization_level"`
			Family            string `json:"family"`
			ContextLength     int64  `json:"context_length"`
		} `json:"details"`
	} `json:"models"`
}

func (r *Refresher) refreshOne(ctx context.Context, b *Backend) error {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, b.BaseURL()+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("building catalog request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("catalog endpoint returned %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decoding catalog: %w", err)
	}

	models := make(map[string]ModelDetails, len(tags.Models))
	for _, m := range tags.Models {
		models[m.Name] = ModelDetails{
			ParameterSize:     m.Details.ParameterSize,
			QuantizationLevel: m.Details.QuantizationLevel,
			Family:            m.Details.Family,
			ContextLength:     m.Details.ContextLength,
		}
	}
	b.SetModels(models, time.Now())

	r.logger.Debug("catalog refreshed",
		slog.String("backend", b.Name()),
		slog.Int("models", len(models)))
	return nil
}
