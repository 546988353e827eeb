package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Counter. Windows expire lazily on access and are
// swept periodically so idle keys do not accumulate.
//
// Memory counters are not shared between processes; use the sqlite or
// redis stores when more than one gateway worker must agree on quota
// consumption.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	done    chan struct{}
	once    sync.Once
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// NewMemory creates an in-process counter store.
func NewMemory() *Memory {
	m := &Memory{
		windows: make(map[string]*memoryWindow),
		done:    make(chan struct{}),
	}
	go m.sweep()
	return m
}

// IncrementWithTTL implements Counter.
func (m *Memory) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok || now.After(w.expiresAt) {
		m.windows[key] = &memoryWindow{count: 1, expiresAt: now.Add(ttl)}
		return 1, nil
	}

	w.count++
	return w.count, nil
}

// TTL implements Counter.
func (m *Memory) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok {
		return 0, nil
	}
	remaining := time.Until(w.expiresAt)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// Close implements Counter.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

// sweep drops expired windows once a minute.
func (m *Memory) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, w := range m.windows {
				if now.After(w.expiresAt) {
					delete(m.windows, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
