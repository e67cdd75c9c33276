// Package server runs an application behind the environment adapter on a
// net/http or fasthttp engine.
//
// # Basic Usage
//
//	cfg := config.GetConfig()
//
//	srv, err := server.New(cfg, app,
//	    server.WithLogger(logger.Slog()),
//	    server.WithCollector(collector),
//	    server.WithTracer(tracer),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return srv.Start(ctx)
//
// # Request Path
//
// Every application request flows through:
//
//	engine -> middleware -> rack.Rewindable -> rack.Adapter -> app
//
// The middleware assigns a request ID, starts a trace span, logs the request,
// records metrics and recovers from panics in the transport. The rewindable
// layer is present when adapter.rewindable is true.
//
// # Routes
//
// Besides the application, the server answers:
//
//   - GET /health - Liveness probe (telemetry.health.liveness_path)
//   - GET /ready - Readiness probe, 503 while draining (telemetry.health.readiness_path)
//   - GET /version - Build information
//   - GET /metrics - Prometheus metrics (telemetry.metrics.path)
//
// These paths are matched exactly and never reach the application.
//
// # TLS
//
// With server.tls.enabled the listener is wrapped in TLS for either engine.
// The certificate pair is checked on the server.tls.reload_schedule cron
// schedule and renewed files are served without a restart. Readiness fails once the
// served certificate has expired.
//
// # Graceful Shutdown
//
// Cancelling the Start context or calling Stop or Shutdown:
//  1. Marks readiness as draining
//  2. Stops accepting new connections
//  3. Waits for in-flight requests up to server.shutdown_timeout
package server
