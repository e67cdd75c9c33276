package protocol

import (
	"context"
	"net/http"
)

// Request is an engine request.
type Request struct {
	// Scheme is "http" or "https".
	Scheme string

	// Authority is the connection-level authority (host[:port]), taken from
	// the request line or the :authority pseudo header.
	Authority string

	Method string

	// Path is the request target including any query string.
	Path string

	// Version is the protocol version, e.g. "HTTP/1.1".
	Version string

	Headers *Headers
	Body    Body

	// Protocol lists the requested upgrade protocols, if any.
	Protocol []string

	// RemoteAddr is the peer address in host:port form, when known.
	RemoteAddr string

	ctx context.Context
}

// Context returns the request context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r using ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// IsHead reports whether the request method is HEAD.
func (r *Request) IsHead() bool {
	return r.Method == http.MethodHead
}
