package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/bridge/pkg/telemetry/logging"
)

// RequestRecorder receives per-request measurements. metrics.Collector
// implements it.
type RequestRecorder interface {
	RequestStarted()
	RequestFinished()
	RecordRequest(method string, status int, duration time.Duration)
}

// Logging logs each request with structured logging and reports it to
// recorder, which may be nil.
//
// Log format (JSON):
//
//	{
//	  "time": "2026-03-02T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "GET",
//	  "path": "/stream",
//	  "status": 200,
//	  "bytes": 1024,
//	  "latency_ms": 12,
//	  "request_id": "8f14e45f-ceea-467e-a5c4-3c2a4e1c9d1b",
//	  "remote_addr": "192.168.1.100:54321"
//	}
//
// 5xx responses log at error level and 4xx at warn.
func Logging(logger *slog.Logger, recorder RequestRecorder) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			rw := newResponseWriter(w)

			if recorder != nil {
				recorder.RequestStarted()
				defer recorder.RequestFinished()
			}

			logger.DebugContext(ctx, "request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(rw, r)

			latency := time.Since(start)
			if recorder != nil {
				recorder.RecordRequest(r.Method, rw.statusCode, latency)
			}

			level := slog.LevelInfo
			if rw.statusCode >= 500 {
				level = slog.LevelError
			} else if rw.statusCode >= 400 {
				level = slog.LevelWarn
			}

			logger.Log(ctx, level, "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"latency_ms", latency.Milliseconds(),
				"request_id", logging.GetRequestID(ctx),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
