// Package logging builds the process logger.
//
// # Overview
//
// The logging package wraps log/slog to provide:
//   - JSON, text and console output
//   - Credential redaction in attributes (authorization headers, cookies, tokens)
//   - Request and trace IDs taken from the context
//   - A minimum level that can change while the server runs
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//	log := logger.Slog()
//
//	ctx = logging.WithRequestID(ctx, id)
//	log.InfoContext(ctx, "request completed", "status", 200)
//
//	// after a configuration reload
//	_ = logger.SetLevel("debug")
package logging
