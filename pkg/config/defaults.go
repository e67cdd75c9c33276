package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress      = "127.0.0.1:9292"
	DefaultEngine             = EngineNetHTTP
	DefaultReadTimeout        = 30 * time.Second
	DefaultIdleTimeout        = 120 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultMaxHeaderBytes     = 1048576 // 1MB
	DefaultMaxRequestBodySize = 4194304 // 4MB

	// TLS defaults
	DefaultTLSMinVersion     = "1.3"
	DefaultTLSReloadSchedule = "@every 5m"
	DefaultTLSClientAuth     = "require"

	// Adapter defaults
	DefaultRewindable = true
	DefaultErrorSink  = "stderr"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogRedact = true

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "bridge"
	DefaultMetricsSubsystem = "adapter"

	// Tracing defaults
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "bridge"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second

	// Health defaults
	DefaultHealthEnabled       = true
	DefaultHealthLivenessPath  = "/health"
	DefaultHealthReadinessPath = "/ready"
	DefaultHealthCheckTimeout  = 5 * time.Second
)

// TLSReloadDisabled as server.tls.reload_schedule turns certificate
// reloading off.
const TLSReloadDisabled = "none"

// Engine names.
const (
	EngineNetHTTP  = "nethttp"
	EngineFastHTTP = "fasthttp"
)

// NewDefaultConfig returns a configuration with every field set to its
// default. Boolean defaults can only be expressed here, so LoadConfig decodes
// the file on top of this value.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:      DefaultListenAddress,
			Engine:             DefaultEngine,
			ReadTimeout:        DefaultReadTimeout,
			IdleTimeout:        DefaultIdleTimeout,
			ShutdownTimeout:    DefaultShutdownTimeout,
			MaxHeaderBytes:     DefaultMaxHeaderBytes,
			MaxRequestBodySize: DefaultMaxRequestBodySize,
			TLS: TLSConfig{
				MinVersion:     DefaultTLSMinVersion,
				ReloadSchedule: DefaultTLSReloadSchedule,
				ClientAuth:     DefaultTLSClientAuth,
			},
		},
		Adapter: AdapterConfig{
			Rewindable: DefaultRewindable,
			ErrorSink:  DefaultErrorSink,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
				Redact: DefaultLogRedact,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Path:      DefaultMetricsPath,
				Namespace: DefaultMetricsNamespace,
				Subsystem: DefaultMetricsSubsystem,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingSampleRatio,
				ServiceName: DefaultTracingServiceName,
				OTLP: OTLPConfig{
					Insecure: DefaultOTLPInsecure,
					Timeout:  DefaultOTLPTimeout,
				},
			},
			Health: HealthConfig{
				Enabled:       DefaultHealthEnabled,
				LivenessPath:  DefaultHealthLivenessPath,
				ReadinessPath: DefaultHealthReadinessPath,
				CheckTimeout:  DefaultHealthCheckTimeout,
			},
		},
	}
}

// ApplyDefaults fills zero-valued string, numeric and duration fields that
// an explicit empty value in the file left unset. Boolean fields are left
// alone; their defaults come from NewDefaultConfig.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.Engine == "" {
		cfg.Server.Engine = DefaultEngine
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxRequestBodySize == 0 {
		cfg.Server.MaxRequestBodySize = DefaultMaxRequestBodySize
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadSchedule == "" {
		cfg.Server.TLS.ReloadSchedule = DefaultTLSReloadSchedule
	}
	if cfg.Server.TLS.ClientAuth == "" {
		cfg.Server.TLS.ClientAuth = DefaultTLSClientAuth
	}

	// Adapter defaults
	if cfg.Adapter.ErrorSink == "" {
		cfg.Adapter.ErrorSink = DefaultErrorSink
	}

	// Logging defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	// Metrics defaults
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Tracing defaults
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	// Health defaults
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultHealthLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultHealthReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
