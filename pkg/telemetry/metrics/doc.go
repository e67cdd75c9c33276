// Package metrics provides Prometheus metrics for the bridge server.
//
// # Metrics Categories
//
//   - Request Metrics: HTTP request count, duration and in-flight gauge
//   - Adapter Metrics: body kinds, response classes, stripped hop headers,
//     synthesised application errors and completion callbacks
//
// # Usage
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	adapter, err := rack.New(app, rack.WithObserver(collector))
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// All metric names carry the configured namespace and subsystem, e.g.
// bridge_adapter_bodies_total.
package metrics
