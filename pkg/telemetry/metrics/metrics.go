// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "stratus"
	subsystem = "gateway"
)

// Collector owns every Prometheus metric the gateway records. All
// methods are safe for concurrent use and cheap enough for the request
// path.
type Collector struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	duration     prometheus.Histogram
	attempts     prometheus.Histogram
	rateLimited  prometheus.Counter
	degraded     prometheus.Counter
	streamAborts prometheus.Counter
	forwards     *prometheus.CounterVec
	auditDropped prometheus.CounterFunc
}

// NewCollector registers the gateway metrics on a fresh registry.
// auditDropped reports the audit sink's drop counter; pass nil when
// auditing is disabled.
func NewCollector(auditDropped func() int64) *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{registry: registry}

	c.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Requests by final outcome.",
	}, []string{"outcome"})

	c.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "End-to-end request duration.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	c.attempts = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_attempts",
		Help:      "Backend attempts made per request.",
		Buckets:   []float64{1, 2, 3, 4, 6, 8, 12},
	})

	c.rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected by the rate limiter.",
	})

	c.degraded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "degraded_selections_total",
		Help:      "Auto-routing selections that ignored the score filter or fell back arbitrarily.",
	})

	c.streamAborts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "stream_aborts_total",
		Help:      "Streams dropped by the backend after the first byte.",
	})

	c.forwards = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_forwards_total",
		Help:      "Requests forwarded per backend.",
	}, []string{"backend"})

	registry.MustRegister(c.requests, c.duration, c.attempts,
		c.rateLimited, c.degraded, c.streamAborts, c.forwards)

	if auditDropped != nil {
		c.auditDropped = prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "audit_dropped_total",
			Help:      "Audit records dropped to a full queue.",
		}, func() float64 { return float64(auditDropped()) })
		registry.MustRegister(c.auditDropped)
	}

	return c
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a finished request.
func (c *Collector) RecordRequest(outcome string, duration time.Duration, attempts int) {
	c.requests.WithLabelValues(outcome).Inc()
	c.duration.Observe(duration.Seconds())
	if attempts > 0 {
		c.attempts.Observe(float64(attempts))
	}
}

// RecordRateLimited counts a rate limiter rejection.
func (c *Collector) RecordRateLimited() { c.rateLimited.Inc() }

// RecordDegradedSelection counts a degraded auto-routing selection.
func (c *Collector) RecordDegradedSelection() { c.degraded.Inc() }

// RecordStreamAbort counts a mid-stream backend drop.
func (c *Collector) RecordStreamAbort() { c.streamAborts.Inc() }

// RecordForward counts a request forwarded to a backend.
func (c *Collector) RecordForward(backend string) {
	c.forwards.WithLabelValues(backend).Inc()
}
