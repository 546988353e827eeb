package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stratus-gw/stratus/pkg/config"
	"stratus-gw/stratus/pkg/registry"
)

func testBackend(t *testing.T, url string) *registry.Backend {
	t.Helper()
	reg := registry.New([]config.BackendConfig{{Name: "test", URL: url}})
	b, _ := reg.Get("test")
	return b
}

func TestForwarder_Dispatch(t *testing.T) {
	var seen *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(context.Background())
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"model":"llama3"}` {
			t.Errorf("backend got body %q", body)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewForwarder(nil, slog.New(slog.DiscardHandler))
	req := httptest.NewRequest("POST", "/api/chat?stream=true", strings.NewReader("ignored"))
	req.Header.Set("Authorization", "Bearer alice:secret")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("X-Custom", "kept")

	resp, err := f.Dispatch(context.Background(), testBackend(t, srv.URL), req, []byte(`{"model":"llama3"}`))
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	defer resp.Body.Close()

	if seen.URL.Path != "/api/chat" || seen.URL.RawQuery != "stream=true" {
		t.Errorf("backend saw %s?%s", seen.URL.Path, seen.URL.RawQuery)
	}
	if got := seen.Header.Get("Authorization"); got != "" {
		t.Errorf("gateway credential leaked to backend: %q", got)
	}
	if got := seen.Header.Get("Connection"); got != "" {
		t.Errorf("hop-by-hop header forwarded: %q", got)
	}
	if got := seen.Header.Get("X-Custom"); got != "kept" {
		t.Errorf("X-Custom = %q, want kept", got)
	}
}

func TestForwarder_DispatchServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewForwarder(nil, slog.New(slog.DiscardHandler))
	req := httptest.NewRequest("POST", "/api/chat", nil)
	if _, err := f.Dispatch(context.Background(), testBackend(t, srv.URL), req, nil); err == nil {
		t.Fatal("Dispatch() = nil error for 503, want error")
	}
}

func TestForwarder_DispatchClientErrorIsCommitted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewForwarder(nil, slog.New(slog.DiscardHandler))
	req := httptest.NewRequest("POST", "/api/chat", nil)
	resp, err := f.Dispatch(context.Background(), testBackend(t, srv.URL), req, nil)
	if err != nil {
		t.Fatalf("Dispatch() error for 400: %v (4xx must pass through)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestForwarder_Relay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"chunk":1}` + "\n"))
		w.Write([]byte(`{"chunk":2}` + "\n"))
	}))
	defer srv.Close()

	f := NewForwarder(nil, slog.New(slog.DiscardHandler))
	req := httptest.NewRequest("POST", "/api/chat", nil)
	resp, err := f.Dispatch(context.Background(), testBackend(t, srv.URL), req, nil)
	if err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}

	rec := httptest.NewRecorder()
	written, err := f.Relay(rec, resp)
	if err != nil {
		t.Fatalf("Relay() error: %v", err)
	}
	if written == 0 {
		t.Fatal("Relay() wrote nothing")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Connection"); got != "" {
		t.Errorf("hop-by-hop header relayed: %q", got)
	}
	if !strings.Contains(rec.Body.String(), `{"chunk":2}`) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("Relay never flushed")
	}
}

func TestForwarder_RelayStreamAborted(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(io.MultiReader(strings.NewReader("partial"), &failingReader{})),
	}

	f := NewForwarder(nil, slog.New(slog.DiscardHandler))
	rec := httptest.NewRecorder()
	written, err := f.Relay(rec, resp)
	if !errors.Is(err, ErrStreamAborted) {
		t.Fatalf("Relay() = %v, want ErrStreamAborted", err)
	}
	if written != int64(len("partial")) {
		t.Fatalf("written = %d, want %d", written, len("partial"))
	}
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}
