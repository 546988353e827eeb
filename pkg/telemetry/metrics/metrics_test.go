package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollector_RecordsAndServes(t *testing.T) {
	c := NewCollector(func() int64 { return 3 })

	c.RecordRequest("success", 250*time.Millisecond, 2)
	c.RecordRequest("rate_limited", 5*time.Millisecond, 0)
	c.RecordRateLimited()
	c.RecordDegradedSelection()
	c.RecordStreamAbort()
	c.RecordForward("alpha")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	text := string(body)

	for _, want := range []string{
		`stratus_gateway_requests_total{outcome="success"} 1`,
		`stratus_gateway_requests_total{outcome="rate_limited"} 1`,
		`stratus_gateway_rate_limit_rejections_total 1`,
		`stratus_gateway_degraded_selections_total 1`,
		`stratus_gateway_stream_aborts_total 1`,
		`stratus_gateway_backend_forwards_total{backend="alpha"} 1`,
		`stratus_gateway_audit_dropped_total 3`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollector_NoAuditCounterWhenNil(t *testing.T) {
	c := NewCollector(nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	if strings.Contains(string(body), "audit_dropped_total") {
		t.Error("audit counter registered without a source")
	}
}
