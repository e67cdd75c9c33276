package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Extract returns ctx carrying the trace context found in the W3C
// traceparent and tracestate headers, if any.
func (t *Tracer) Extract(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers.
func (t *Tracer) Inject(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// HTTP span attribute keys.
const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPTarget     = "http.target"
	AttrHTTPScheme     = "http.scheme"
	AttrHTTPHost       = "net.host.name"
	AttrHTTPStatusCode = "http.status_code"
	AttrRequestID      = "bridge.request_id"
)

// StartHTTP starts a server span for an incoming request, continuing any
// trace propagated in its headers.
func (t *Tracer) StartHTTP(r *http.Request) (context.Context, trace.Span) {
	ctx := t.Extract(r.Context(), r.Header)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return t.Start(ctx, "HTTP "+r.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, r.Method),
			attribute.String(AttrHTTPTarget, r.URL.RequestURI()),
			attribute.String(AttrHTTPScheme, scheme),
			attribute.String(AttrHTTPHost, r.Host),
		),
	)
}

// SetHTTPStatus records the response status. 5xx responses mark the span
// as failed.
func SetHTTPStatus(span trace.Span, status int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, status))
	if status >= 500 {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
