package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner runs retention pruning on a cron schedule.
type Pruner struct {
	sink      *Sink
	schedule  string
	retention time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewPruner creates a pruner over the sink.
func NewPruner(sink *Sink, schedule string, retention time.Duration, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		sink:      sink,
		schedule:  schedule,
		retention: retention,
		logger:    logger.With(slog.String("component", "audit.pruner")),
		cron:      cron.New(),
	}
}

// Start schedules pruning. An empty schedule or non-positive retention
// disables it.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" || p.retention <= 0 {
		p.logger.Info("audit pruning not configured, skipping")
		return nil
	}
	if _, err := p.cron.AddFunc(p.schedule, func() { p.runOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling audit pruning: %w", err)
	}
	p.cron.Start()
	p.running = true
	p.logger.Info("audit pruner started",
		slog.String("schedule", p.schedule),
		slog.Duration("retention", p.retention))

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

// Stop halts scheduled pruning.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cron.Stop()
	p.running = false
}

func (p *Pruner) runOnce(ctx context.Context) {
	deleted, err := p.sink.Prune(ctx, p.retention)
	if err != nil {
		p.logger.Error("scheduled audit prune failed", slog.Any("error", err))
		return
	}
	p.logger.Info("audit prune complete", slog.Int64("deleted", deleted))
}
