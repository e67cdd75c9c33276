package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/bridge/pkg/config"
)

// AdapterMetrics tracks the environment adapter.
//
// Metrics:
//   - bridge_adapter_bodies_total: responses by body kind
//   - bridge_adapter_responses_total: responses by status class
//   - bridge_adapter_hop_headers_stripped_total: removed hop headers by name
//   - bridge_adapter_application_errors_total: synthesised 500s by error name
//   - bridge_adapter_completion_callbacks_total: callbacks run, by result
type AdapterMetrics struct {
	bodiesTotal     *prometheus.CounterVec
	responsesTotal  *prometheus.CounterVec
	hopHeadersTotal *prometheus.CounterVec
	appErrorsTotal  *prometheus.CounterVec
	callbacksTotal  *prometheus.CounterVec
}

// NewAdapterMetrics creates and registers adapter metrics with the provided registry.
func NewAdapterMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *AdapterMetrics {
	am := &AdapterMetrics{
		bodiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bodies_total",
				Help:      "Total number of response bodies by kind",
			},
			[]string{"kind"},
		),

		responsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "responses_total",
				Help:      "Total number of responses assembled by status class",
			},
			[]string{"code"},
		),

		hopHeadersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "hop_headers_stripped_total",
				Help:      "Total number of hop-by-hop headers removed from responses",
			},
			[]string{"header"},
		),

		appErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "application_errors_total",
				Help:      "Total number of application failures turned into 500 responses",
			},
			[]string{"error"},
		),

		callbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "completion_callbacks_total",
				Help:      "Total number of completion callbacks run",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		am.bodiesTotal,
		am.responsesTotal,
		am.hopHeadersTotal,
		am.appErrorsTotal,
		am.callbacksTotal,
	)

	return am
}

// RecordBody counts a response body of the given kind.
func (am *AdapterMetrics) RecordBody(kind string) {
	am.bodiesTotal.WithLabelValues(kind).Inc()
}

// RecordResponse counts an assembled response.
func (am *AdapterMetrics) RecordResponse(status int) {
	am.responsesTotal.WithLabelValues(statusClass(status)).Inc()
}

// RecordHopHeaders counts removed hop headers.
func (am *AdapterMetrics) RecordHopHeaders(names []string) {
	for _, name := range names {
		am.hopHeadersTotal.WithLabelValues(strings.ToLower(name)).Inc()
	}
}

// RecordApplicationError counts a synthesised 500.
func (am *AdapterMetrics) RecordApplicationError(name string) {
	am.appErrorsTotal.WithLabelValues(name).Inc()
}

// RecordCallbacks counts completion callbacks by outcome.
func (am *AdapterMetrics) RecordCallbacks(total, failed int) {
	if ok := total - failed; ok > 0 {
		am.callbacksTotal.WithLabelValues("ok").Add(float64(ok))
	}
	if failed > 0 {
		am.callbacksTotal.WithLabelValues("failed").Add(float64(failed))
	}
}
