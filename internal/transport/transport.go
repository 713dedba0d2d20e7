// Package transport defines the pluggable HTTP collaborator the
// provider dispatch layer consumes. The run loop never opens a socket
// itself; callers supply an implementation (a real HTTP client, a
// recording fake for tests, or a rate-limited wrapper).
package transport

import "context"

// Response is a completed HTTP response. Implementations MUST either
// return a Response or an error; a partial response MUST NOT be
// returned.
type Response struct {
	Status int
	Body   []byte
}

// Transport is the consumed contract: post a JSON body and get a raw
// body back, or issue a bare GET. Headers are caller-supplied so auth
// and content-type live with the dispatcher, not the transport.
type Transport interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (Response, error)
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
