package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "BRIDGE_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields the file omits keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the default configuration and applies
// defaults to fields left empty. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention BRIDGE_SECTION_FIELD (e.g., BRIDGE_SERVER_LISTEN_ADDRESS) and
// always take precedence over the file.
//
// An empty path skips the file and starts from the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Malformed values are reported as validation errors.
func applyEnvOverrides(cfg *Config) error {
	o := envOverrides{}

	// Server overrides
	o.string("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	o.string("SERVER_ENGINE", &cfg.Server.Engine)
	o.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	o.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	o.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	o.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	o.int("SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)
	o.int("SERVER_MAX_REQUEST_BODY_SIZE", &cfg.Server.MaxRequestBodySize)
	o.bool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	o.string("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	o.string("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)

	// Adapter overrides
	o.bool("ADAPTER_REWINDABLE", &cfg.Adapter.Rewindable)
	o.string("ADAPTER_ERROR_SINK", &cfg.Adapter.ErrorSink)

	// Telemetry overrides
	o.string("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.string("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.bool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	o.bool("TELEMETRY_LOGGING_REDACT", &cfg.Telemetry.Logging.Redact)
	o.bool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	o.string("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	o.bool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	o.string("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	o.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	o.string("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	o.string("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	o.bool("TELEMETRY_HEALTH_ENABLED", &cfg.Telemetry.Health.Enabled)

	if len(o.errs) > 0 {
		return ValidationError{Errors: o.errs}
	}
	return nil
}

// envOverrides reads BRIDGE_* variables into configuration fields,
// collecting parse failures.
type envOverrides struct {
	errs []FieldError
}

func (o *envOverrides) lookup(name string) (string, bool) {
	val := os.Getenv(EnvPrefix + name)
	return val, val != ""
}

func (o *envOverrides) fail(name, kind, val string) {
	o.errs = append(o.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid %s %q", kind, val),
	})
}

func (o *envOverrides) string(name string, dst *string) {
	if val, ok := o.lookup(name); ok {
		*dst = val
	}
}

func (o *envOverrides) duration(name string, dst *time.Duration) {
	if val, ok := o.lookup(name); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			o.fail(name, "duration", val)
			return
		}
		*dst = d
	}
}

func (o *envOverrides) int(name string, dst *int) {
	if val, ok := o.lookup(name); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			o.fail(name, "integer", val)
			return
		}
		*dst = i
	}
}

func (o *envOverrides) float(name string, dst *float64) {
	if val, ok := o.lookup(name); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			o.fail(name, "number", val)
			return
		}
		*dst = f
	}
}

func (o *envOverrides) bool(name string, dst *bool) {
	if val, ok := o.lookup(name); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			o.fail(name, "boolean", val)
			return
		}
		*dst = b
	}
}
