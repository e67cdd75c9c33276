package config

import (
	"io"
	"os"
	"time"
)

// Config is the root configuration structure for the bridge server.
type Config struct {
	// Server contains listener and engine configuration.
	Server ServerConfig `yaml:"server"`

	// Adapter contains configuration for the environment adapter that sits
	// between the engine and the application.
	Adapter AdapterConfig `yaml:"adapter"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:9292", "0.0.0.0:9292").
	// Default: "127.0.0.1:9292"
	ListenAddress string `yaml:"listen_address"`

	// Engine selects the HTTP engine.
	// Options: "nethttp", "fasthttp"
	// Default: "nethttp"
	Engine string `yaml:"engine"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero value means no timeout.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Streaming responses are cut off when it expires.
	// Default: 0 (no timeout)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of the request line and headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxRequestBodySize limits request bodies on the fasthttp engine, which
	// buffers them before the application runs.
	// Default: 4194304 (4MB)
	MaxRequestBodySize int `yaml:"max_request_body_size"`

	// TLS serves HTTPS on the listener when enabled.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains certificate configuration for HTTPS.
type TLSConfig struct {
	// Enabled serves TLS on the listen address.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM-encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version to accept.
	// Options: "1.2", "1.3"
	// Default: "1.3"
	MinVersion string `yaml:"min_version"`

	// ReloadSchedule is the cron schedule on which the certificate files
	// are checked for changes. Renewed certificates are served without a
	// restart. Standard five-field expressions and descriptors such as
	// "@every 5m" or "@hourly" are accepted; "none" disables reloading.
	// Default: "@every 5m"
	ReloadSchedule string `yaml:"reload_schedule"`

	// ClientCAFile enables client certificate verification against the
	// PEM-encoded CAs in this file.
	ClientCAFile string `yaml:"client_ca_file"`

	// ClientAuth controls client certificates when ClientCAFile is set.
	// Options: "require", "request", "verify_if_given"
	// Default: "require"
	ClientAuth string `yaml:"client_auth"`
}

// AdapterConfig contains environment adapter configuration.
type AdapterConfig struct {
	// Rewindable wraps form and multipart request bodies so the application
	// can rewind rack.input.
	// Default: true
	Rewindable bool `yaml:"rewindable"`

	// ErrorSink is where rack.errors writes.
	// Options: "stderr", "stdout", "discard"
	// Default: "stderr"
	ErrorSink string `yaml:"error_sink"`
}

// ErrorWriter returns the writer named by ErrorSink.
func (c AdapterConfig) ErrorWriter() io.Writer {
	switch c.ErrorSink {
	case "stdout":
		return os.Stdout
	case "discard":
		return io.Discard
	default:
		return os.Stderr
	}
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains liveness and readiness probe configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials (authorization headers, cookies, tokens) in
	// log attributes.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "bridge"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "adapter"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "bridge"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether the probe endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the HTTP path for the liveness probe.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the HTTP path for the readiness probe. It answers 503
	// while the server drains during shutdown.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
