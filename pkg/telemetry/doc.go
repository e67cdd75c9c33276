// Package telemetry groups the observability packages of the bridge server.
//
// # Components
//
//   - logging: slog logger construction, request-scoped fields and
//     credential redaction
//   - metrics: Prometheus request and adapter metrics
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	srv, err := server.New(cfg, app,
//	    server.WithLogger(logger.Slog()),
//	    server.WithCollector(collector),
//	    server.WithTracer(tracer),
//	)
//
// The metrics collector is also the adapter's observer, so body kinds,
// stripped hop headers, application errors and completion callbacks are
// counted alongside request totals.
package telemetry
