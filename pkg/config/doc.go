// Package config provides configuration management for the bridge server.
//
// Configuration is loaded from a YAML file, completed with defaults,
// overridden from the environment and validated.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("bridge.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("bridge.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BRIDGE_SECTION_FIELD:
//
//   - BRIDGE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - BRIDGE_SERVER_ENGINE overrides server.engine
//   - BRIDGE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// A Watcher follows the file on disk and hands each successfully reloaded
// configuration to a callback. Only settings that can change at runtime,
// such as the log level, take effect without a restart.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:9292"
//	  engine: "fasthttp"
//	  tls:
//	    enabled: true
//	    cert_file: "/etc/bridge/tls.crt"
//	    key_file: "/etc/bridge/tls.key"
//
//	adapter:
//	  rewindable: true
//	  error_sink: "stderr"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//	  metrics:
//	    enabled: true
//	    path: "/metrics"
package config
