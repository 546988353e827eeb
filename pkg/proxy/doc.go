// Package proxy implements the request pipeline and the streaming
// forwarder.
//
// A request flows admission, rate limiting, analysis (for model
// "auto"), auto-routing, backend selection, and then a retry loop that
// drives the forwarder. The retry loop only wraps the connect and
// dispatch phase: once response headers have been forwarded to the
// client the attempt is committed, and a mid-stream backend drop
// terminates the stream rather than retrying it.
package proxy
