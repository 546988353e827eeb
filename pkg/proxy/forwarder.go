package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stratus-gw/stratus/pkg/registry"
)

// hopHeaders are stripped before forwarding in either direction, per
// RFC 9110 section 7.6.1.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder dispatches requests to backends and relays their
// responses without buffering whole bodies.
type Forwarder struct {
	client *http.Client
	logger *slog.Logger
}

// NewForwarder creates a forwarder. A nil client uses a default with
// no overall timeout; streamed completions can legitimately run for
// minutes, so cancellation comes from the request context instead.
func NewForwarder(client *http.Client, logger *slog.Logger) *Forwarder {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{client: client, logger: logger}
}

// Dispatch sends the client's request to one backend and returns the
// backend's response with its body unread. This is the retryable phase:
// no client-visible side effect has happened yet. The caller owns the
// response body.
//
// A 5xx from the backend is converted to an error so the retry loop
// treats it as a failed attempt. Any other status, including 4xx, is a
// committed response to relay as-is.
func (f *Forwarder) Dispatch(ctx context.Context, backend *registry.Backend, r *http.Request, body []byte) (*http.Response, error) {
	target := backend.BaseURL() + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building backend request: %w", err)
	}
	copyHeaders(req.Header, r.Header)
	req.ContentLength = int64(len(body))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatching to %s: %w", backend.Name(), err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("backend %s returned %d", backend.Name(), resp.StatusCode)
	}
	return resp, nil
}

// Relay streams the backend response to the client, flushing after
// every chunk so streamed completions arrive as they are produced.
// Returns the bytes written and ErrStreamAborted (wrapped) when the
// backend drops after the first byte.
func (f *Forwarder) Relay(w http.ResponseWriter, resp *http.Response) (int64, error) {
	defer resp.Body.Close()

	header := w.Header()
	for name, values := range resp.Header {
		if isHopHeader(name) {
			continue
		}
		header[name] = values
	}
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.(http.Flusher)
	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += int64(wn)
			if werr != nil {
				// The client went away; nothing left to relay.
				return written, nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("%w: %v", ErrStreamAborted, err)
		}
	}
}

// copyHeaders copies client headers to the backend request, dropping
// hop-by-hop headers and the gateway credential. Host is set from the
// target URL by the transport.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopHeader(name) || name == "Authorization" || name == "Host" {
			continue
		}
		dst[name] = values
	}
}

func isHopHeader(name string) bool {
	for _, h := range hopHeaders {
		if http.CanonicalHeaderKey(name) == h {
			return true
		}
	}
	return false
}
