package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration file on change and publishes validated
// snapshots. The request path reads the current snapshot via Current(),
// which is lock-free; a reload that fails validation keeps the previous
// snapshot in place.
type Watcher struct {
	path     string
	current  atomic.Pointer[Config]
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	onSwap  []func(*Config)
	stopCh  chan struct{}
	stopped sync.Once
}

// NewWatcher creates a watcher seeded with an already-loaded configuration.
func NewWatcher(path string, initial *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fw,
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}
	w.current.Store(initial)
	return w, nil
}

// Current returns the latest validated configuration snapshot.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

// OnReload registers a callback invoked with each new snapshot. Callbacks
// run on the watcher goroutine and must not block.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onSwap = append(w.onSwap, fn)
}

// Watch observes the config file until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %q: %w", w.path, err)
	}

	slog.Info("configuration watcher started", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopCh:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			// Editors replace files rather than writing in place; re-add
			// the path so renames keep the watch alive.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = w.watcher.Add(w.path)
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Error("configuration watcher error", "error", err)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.stopped.Do(func() { close(w.stopCh) })
	return w.watcher.Close()
}

// scheduleReload debounces rapid write events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadConfigWithEnvOverrides(w.path)
	if err != nil {
		slog.Error("configuration reload failed, keeping previous snapshot",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.current.Store(cfg)
	slog.Info("configuration reloaded", "path", w.path)

	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.onSwap))
	copy(callbacks, w.onSwap)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}
