// Package tracing provides OpenTelemetry distributed tracing for the bridge
// server.
//
// Each HTTP request gets a server span. An incoming W3C traceparent header
// makes the span a child of the caller's trace:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// Spans are exported over OTLP gRPC. Sampling is "always", "never" or
// "ratio", always respecting the parent's decision.
//
// # Usage
//
//	tracer, err := tracing.New(cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.StartHTTP(r)
//	defer span.End()
//
// When tracing is disabled, New returns a noop tracer.
package tracing
