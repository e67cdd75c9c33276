package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"mercator-hq/bridge/pkg/telemetry/logging"
	"mercator-hq/bridge/pkg/telemetry/tracing"
)

// Tracing starts a server span per request and puts its trace and span IDs
// in the request context for log correlation. The response status is
// recorded on the span when the handler returns.
func Tracing(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tracer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.StartHTTP(r)
			defer span.End()

			if id := logging.GetRequestID(ctx); id != "" {
				span.SetAttributes(attribute.String(tracing.AttrRequestID, id))
			}
			if traceID := tracing.TraceID(ctx); traceID != "" {
				ctx = logging.WithTrace(ctx, traceID, tracing.SpanID(ctx))
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))
			tracing.SetHTTPStatus(span, rw.statusCode)
		})
	}
}
