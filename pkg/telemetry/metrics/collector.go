package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/bridge/pkg/config"
	"mercator-hq/bridge/pkg/rack"
)

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Collector owns the bridge's Prometheus metrics. It is the adapter's
// rack.Observer and records request metrics for the HTTP middleware.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics *RequestMetrics
	adapterMetrics *AdapterMetrics

	// errorNames bounds the application_errors_total label set; error names
	// come from application types.
	errorNames *CardinalityLimiter
}

var _ rack.Observer = (*Collector)(nil)

// NewCollector creates a metrics collector. If registry is nil, a new
// registry is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		requestMetrics: NewRequestMetrics(cfg, registry),
		adapterMetrics: NewAdapterMetrics(cfg, registry),
		errorNames:     NewCardinalityLimiter(100),
	}
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool { return c.config.Enabled }

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(method, status, duration)
}

// RequestStarted increments the in-flight gauge.
func (c *Collector) RequestStarted() {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.inFlight.Inc()
}

// RequestFinished decrements the in-flight gauge.
func (c *Collector) RequestFinished() {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.inFlight.Dec()
}

// BodyWrapped implements rack.Observer.
func (c *Collector) BodyWrapped(kind string) {
	if !c.config.Enabled {
		return
	}
	c.adapterMetrics.RecordBody(kind)
}

// HopHeadersStripped implements rack.Observer.
func (c *Collector) HopHeadersStripped(names []string) {
	if !c.config.Enabled {
		return
	}
	c.adapterMetrics.RecordHopHeaders(names)
}

// ResponseAssembled implements rack.Observer.
func (c *Collector) ResponseAssembled(status int) {
	if !c.config.Enabled {
		return
	}
	c.adapterMetrics.RecordResponse(status)
}

// ApplicationFailed implements rack.Observer.
func (c *Collector) ApplicationFailed(reason string) {
	if !c.config.Enabled {
		return
	}
	if !c.errorNames.Allow(reason) {
		reason = otherLabel
	}
	c.adapterMetrics.RecordApplicationError(reason)
}

// CallbacksFired implements rack.Observer.
func (c *Collector) CallbacksFired(total, failed int) {
	if !c.config.Enabled {
		return
	}
	c.adapterMetrics.RecordCallbacks(total, failed)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter bounds the number of distinct values seen for a label.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the
// limit, tracking it in the latter case.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
