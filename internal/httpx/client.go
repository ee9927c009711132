// Package httpx builds the HTTP clients shared by the streaming adapters and
// the backend REST client: connection pooling, HTTP/2 for long-lived event
// streams, and per-request header injection.
package httpx

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewClient returns an HTTP client suited for request/response calls. The
// timeout bounds the whole round trip.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

// NewStreamingClient returns an HTTP client for long-lived streaming
// responses. No overall timeout: the response body stays open for the
// lifetime of the stream. Callers bound the request with a context.
func NewStreamingClient() *http.Client {
	return &http.Client{
		Transport: newTransport(),
	}
}

func newTransport() *http.Transport {
	tr := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}
	// Streamed server events benefit from HTTP/2 flow control; fall back to
	// HTTP/1.1 transparently when the server does not speak it.
	if err := http2.ConfigureTransport(tr); err == nil {
		tr.ForceAttemptHTTP2 = true
	}
	return tr
}

// ApplyHeaders copies headers onto a request without clobbering ones the
// caller already set.
func ApplyHeaders(req *http.Request, headers http.Header) {
	for key, values := range headers {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
}
