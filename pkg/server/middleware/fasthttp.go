package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/bridge/pkg/telemetry/logging"
	"mercator-hq/bridge/pkg/telemetry/tracing"
	fasthttpadapter "mercator-hq/bridge/pkg/transport/fasthttp"
)

// FastHTTP wraps a fasthttp handler with the same request ID, tracing,
// logging, metrics and panic recovery that the net/http chain provides.
// tracer and recorder may be nil.
//
// Streamed response bodies are written after next returns, so the recorded
// latency covers the time to the response head.
func FastHTTP(next fasthttp.RequestHandler, logger *slog.Logger, tracer *tracing.Tracer, recorder RequestRecorder) fasthttp.RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		method := string(ctx.Method())
		path := string(ctx.Path())

		requestID := string(ctx.Request.Header.Peek(RequestIDHeader))
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		ctx.Response.Header.Set(RequestIDHeader, requestID)
		c := logging.WithRequestID(fasthttpadapter.RequestContext(ctx), requestID)

		var span trace.Span
		if tracer != nil {
			header := http.Header{}
			ctx.Request.Header.VisitAll(func(k, v []byte) {
				header.Add(string(k), string(v))
			})
			c, span = tracer.Start(tracer.Extract(c, header), "HTTP "+method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String(tracing.AttrHTTPMethod, method),
					attribute.String(tracing.AttrHTTPTarget, string(ctx.RequestURI())),
					attribute.String(tracing.AttrHTTPHost, string(ctx.Host())),
					attribute.String(tracing.AttrRequestID, requestID),
				),
			)
			defer span.End()
			if traceID := tracing.TraceID(c); traceID != "" {
				c = logging.WithTrace(c, traceID, tracing.SpanID(c))
			}
		}
		fasthttpadapter.WithRequestContext(ctx, c)

		if recorder != nil {
			recorder.RequestStarted()
			defer recorder.RequestFinished()
		}

		func() {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(c, "panic in handler",
						"error", err,
						"method", method,
						"path", path,
						"stack", string(debug.Stack()),
					)
					ctx.Response.Reset()
					ctx.Response.Header.Set(RequestIDHeader, requestID)
					ctx.Error(http.StatusText(http.StatusInternalServerError), fasthttp.StatusInternalServerError)
				}
			}()
			next(ctx)
		}()

		status := ctx.Response.StatusCode()
		latency := time.Since(start)
		if span != nil {
			tracing.SetHTTPStatus(span, status)
		}
		if recorder != nil {
			recorder.RecordRequest(method, status, latency)
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		logger.Log(c, level, "request completed",
			"method", method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"request_id", requestID,
			"remote_addr", ctx.RemoteAddr().String(),
		)
	}
}
