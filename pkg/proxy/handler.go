package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"stratus-gw/stratus/pkg/admission"
	"stratus-gw/stratus/pkg/analyzer"
	"stratus-gw/stratus/pkg/audit"
	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/limits/ratelimit"
	"stratus-gw/stratus/pkg/registry"
	"stratus-gw/stratus/pkg/retry"
	"stratus-gw/stratus/pkg/routing"
	"stratus-gw/stratus/pkg/security/keys"
	"stratus-gw/stratus/pkg/telemetry/logging"
	"stratus-gw/stratus/pkg/telemetry/metrics"
)

// Options wires the handler's collaborators. Config, Keys, Registry,
// Catalog, Selector, and Forwarder are required; Audit and Metrics may
// be nil when disabled.
type Options struct {
	Config    *config.Config
	Keys      *keys.Store
	Limiter   *ratelimit.Limiter
	Registry  *registry.Registry
	Catalog   *routing.Catalog
	Selector  *routing.Selector
	Forwarder *Forwarder
	Audit     *audit.Sink
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}

// Handler runs the inference request pipeline: admission, rate
// limiting, analysis, auto-routing, backend selection, the retry loop,
// and the streaming relay.
type Handler struct {
	cfg    atomic.Pointer[config.Config]
	filter atomic.Pointer[admission.Filter]
	router atomic.Pointer[routing.Router]

	keys      *keys.Store
	limiter   *ratelimit.Limiter
	registry  *registry.Registry
	catalog   *routing.Catalog
	selector  *routing.Selector
	forwarder *Forwarder
	audit     *audit.Sink
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewHandler creates the pipeline handler and applies the initial
// configuration.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		keys:      opts.Keys,
		limiter:   opts.Limiter,
		registry:  opts.Registry,
		catalog:   opts.Catalog,
		selector:  opts.Selector,
		forwarder: opts.Forwarder,
		audit:     opts.Audit,
		metrics:   opts.Metrics,
		logger:    logger,
	}
	h.ApplyConfig(opts.Config)
	return h
}

// ApplyConfig installs a configuration snapshot: key records, the
// admission filter, and the auto-router. Called at startup and from the
// reload watcher; in-flight requests keep the snapshot they started
// with.
func (h *Handler) ApplyConfig(cfg *config.Config) {
	h.cfg.Store(cfg)
	h.keys.Replace(cfg.Auth.Keys)

	ips := admission.NewIPFilter(cfg.Auth.AllowedIPs, cfg.Auth.DeniedIPs)
	h.filter.Store(admission.New(ips, h.keys, cfg.Auth.BlockedEndpoints, h.logger))

	mode, err := routing.ParseMode(cfg.Routing.PriorityMode)
	if err != nil {
		mode = routing.ModeFree
	}
	h.router.Store(routing.NewRouter(mode, cfg.Routing.Penalties, h.logger))
}

// ServeHTTP implements http.Handler for the inference endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cfg := h.cfg.Load()
	filter := h.filter.Load()

	ip := clientIP(r)
	if err := filter.CheckIP(ip); err != nil {
		h.deny(w, start, audit.Record{Event: "denied", Status: http.StatusForbidden}, "ip denied")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.deny(w, start, audit.Record{Event: "denied", Status: http.StatusBadRequest}, "unreadable request body")
		return
	}
	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	cred, ok := admission.CredentialFromRequest(r)
	if !ok {
		if raw, found := payload["apiKey"].(string); found {
			cred, ok = admission.ParseCredential(raw)
		}
	}
	if !ok {
		h.deny(w, start, audit.Record{Event: "denied", Status: http.StatusUnauthorized}, "authentication required")
		return
	}
	info, err := filter.Authenticate(cred)
	if err != nil {
		h.deny(w, start, audit.Record{Event: "denied", Status: http.StatusUnauthorized}, "authentication required")
		return
	}
	ctx := logging.WithAPIKeyName(r.Context(), info.Name)
	r = r.WithContext(ctx)

	if err := filter.CheckEndpoint(r.URL.Path, info); err != nil {
		h.deny(w, start, audit.Record{Event: "denied", Key: info.Name, Status: http.StatusForbidden}, "endpoint blocked")
		return
	}

	if cfg.RateLimit.RateLimitEnabled() {
		policy := ratelimit.PolicyFor(info.RateLimit, cfg.RateLimit.Global)
		decision := h.limiter.Check(ctx, info.Name, policy)
		if !decision.Allowed {
			if h.metrics != nil {
				h.metrics.RecordRateLimited()
			}
			h.record(audit.Record{
				Event:    "rate_limited",
				Key:      info.Name,
				Status:   http.StatusTooManyRequests,
				Duration: time.Since(start),
			}, "rate_limited", start, 0)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", decision.RetryAfter)
			return
		}
	}

	// The federated model list is served by the gateway itself, after
	// the same admission and rate-limit checks as inference traffic.
	if r.Method == http.MethodGet && r.URL.Path == "/api/tags" {
		h.serveTags(w, info, start)
		return
	}

	model, _ := payload["model"].(string)
	if model == "auto" {
		routed, ok := h.autoRoute(w, r, payload, info, start)
		if !ok {
			return
		}
		model = routed
		payload["model"] = routed
		if body, err = json.Marshal(payload); err != nil {
			h.deny(w, start, audit.Record{Event: "denied", Key: info.Name, Status: http.StatusBadRequest}, "invalid request payload")
			return
		}
	}
	if model == "" {
		h.deny(w, start, audit.Record{Event: "denied", Key: info.Name, Status: http.StatusBadRequest}, "model is required")
		return
	}

	resp, backend, attempts, err := h.dispatch(r, model, body)
	if err != nil {
		var unavailable *BackendUnavailableError
		status := http.StatusBadGateway
		msg := "no backend available"
		if errors.As(err, &unavailable) {
			h.logger.Error("all backends exhausted",
				slog.String("model", model),
				slog.Int("attempts", attempts),
				slog.Any("error", err))
		} else if errors.Is(err, routing.ErrNoBackendForModel) {
			status = http.StatusNotFound
			msg = fmt.Sprintf("model %q is not available", model)
		}
		h.record(audit.Record{
			Event:    "request",
			Key:      info.Name,
			Model:    model,
			Status:   status,
			Attempts: attempts,
			Duration: time.Since(start),
		}, "backend_unavailable", start, attempts)
		writeError(w, status, msg, 0)
		return
	}
	defer backend.Release()

	if h.metrics != nil {
		h.metrics.RecordForward(backend.Name())
	}

	outcome := "success"
	if _, err := h.forwarder.Relay(w, resp); err != nil {
		outcome = "stream_aborted"
		if h.metrics != nil {
			h.metrics.RecordStreamAbort()
		}
		h.logger.Warn("backend dropped mid-stream",
			slog.String("backend", backend.Name()),
			slog.String("model", model),
			slog.Any("error", err))
	}

	h.record(audit.Record{
		Event:    "request",
		Key:      info.Name,
		Model:    model,
		Backend:  backend.Name(),
		Status:   resp.StatusCode,
		Attempts: attempts,
		Duration: time.Since(start),
	}, outcome, start, attempts)
}

// serveTags returns the merged model list across all active backends.
func (h *Handler) serveTags(w http.ResponseWriter, info *keys.Info, start time.Time) {
	tags := h.registry.FederatedTags()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"models": tags})
	h.record(audit.Record{
		Event:    "request",
		Key:      info.Name,
		Status:   http.StatusOK,
		Duration: time.Since(start),
	}, "success", start, 0)
}

// autoRoute resolves model "auto" to a concrete model via the analyzer
// and the auto-router. Returns false after writing the error response.
func (h *Handler) autoRoute(w http.ResponseWriter, r *http.Request, payload map[string]any, info *keys.Info, start time.Time) (string, bool) {
	profile := analyzer.Analyze(payload)
	available := h.catalog.Available(h.registry.FederatedModels())

	selection, err := h.router.Load().Select(available, profile)
	if err != nil {
		h.record(audit.Record{
			Event:    "request",
			Key:      info.Name,
			Model:    "auto",
			Status:   http.StatusServiceUnavailable,
			Duration: time.Since(start),
		}, "no_models", start, 0)
		writeError(w, http.StatusServiceUnavailable, "auto-routing unavailable: no models in catalog", 0)
		return "", false
	}
	if selection.Degraded && h.metrics != nil {
		h.metrics.RecordDegradedSelection()
	}
	return selection.Model.Name, true
}

// dispatch walks the ordered candidate backends, running the retry
// executor against each until one yields a committed response. The
// returned backend is held (Acquire) and must be released by the
// caller after the relay.
func (h *Handler) dispatch(r *http.Request, model string, body []byte) (*http.Response, *registry.Backend, int, error) {
	cfg := h.cfg.Load()

	candidates := h.registry.CandidatesFor(model)
	views := make([]routing.Backend, len(candidates))
	byName := make(map[string]*registry.Backend, len(candidates))
	for i, b := range candidates {
		views[i] = b
		byName[b.Name()] = b
	}
	ordered, err := h.selector.Order(model, views)
	if err != nil {
		return nil, nil, 0, err
	}

	retryCfg := retry.Config{
		MaxRetries:   cfg.Retry.MaxRetries,
		TotalTimeout: cfg.Retry.TotalTimeout,
		BaseDelay:    cfg.Retry.BaseDelay,
	}

	attempts := 0
	var attemptErrs []string
	for _, view := range ordered {
		backend := byName[view.Name()]
		backend.Acquire()

		var resp *http.Response
		result := retry.Do(r.Context(), retryCfg, backend.Name(), func(ctx context.Context) error {
			got, err := h.forwarder.Dispatch(ctx, backend, r, body)
			if err != nil {
				return err
			}
			resp = got
			return nil
		})
		attempts += result.Attempts
		if result.Success {
			return resp, backend, attempts, nil
		}
		backend.Release()
		attemptErrs = append(attemptErrs, result.Errors...)
		h.logger.Warn("backend exhausted, advancing to next candidate",
			slog.String("backend", backend.Name()),
			slog.String("model", model),
			slog.Int("attempts", result.Attempts))
	}
	return nil, nil, attempts, &BackendUnavailableError{Model: model, Attempts: attemptErrs}
}

// deny writes an admission failure and accounts for it.
func (h *Handler) deny(w http.ResponseWriter, start time.Time, rec audit.Record, msg string) {
	rec.Duration = time.Since(start)
	h.record(rec, "denied", start, 0)
	writeError(w, rec.Status, msg, 0)
}

// record sends the audit record and the request metric for a finished
// request.
func (h *Handler) record(rec audit.Record, outcome string, start time.Time, attempts int) {
	if rec.Duration == 0 {
		rec.Duration = time.Since(start)
	}
	if h.audit != nil {
		h.audit.Write(rec)
	}
	if h.metrics != nil {
		h.metrics.RecordRequest(outcome, time.Since(start), attempts)
	}
}

// clientIP strips the port from the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
