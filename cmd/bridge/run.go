package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"mercator-hq/bridge/internal/demo"
	"mercator-hq/bridge/pkg/cli"
	"mercator-hq/bridge/pkg/config"
	"mercator-hq/bridge/pkg/server"
	"mercator-hq/bridge/pkg/telemetry/logging"
	"mercator-hq/bridge/pkg/telemetry/metrics"
	"mercator-hq/bridge/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	engine        string
	logLevel      string
	fileRoot      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bridge server",
	Long: `Start the bridge server with the demo application.

The demo application answers "/", dumps the environment on "/env", streams
ticks on "/stream", echoes request bodies on "/echo", serves files below
--file-root on "/files/" and takes over the connection on "/upgrade".

Examples:
  # Start with default config
  bridge run

  # Start with custom config, reloading the log level when it changes
  bridge run --config /etc/bridge/config.yaml

  # Override listen address and engine
  bridge run --listen 0.0.0.0:8080 --engine fasthttp

  # Validate config without starting server
  bridge run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.engine, "engine", "", "override engine (nethttp, fasthttp)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.fileRoot, "file-root", ".", "directory served on /files/")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// loadConfig loads the configuration named by --config and applies the run
// flag overrides.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.engine != "" {
		cfg.Server.Engine = runFlags.engine
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Slog().Warn("tracer shutdown failed", "error", err)
		}
	}()

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	srv, err := server.New(cfg, demo.New(demo.WithFileRoot(runFlags.fileRoot)),
		server.WithLogger(logger.Slog()),
		server.WithCollector(collector),
		server.WithTracer(tracer),
		server.WithBuildInfo(buildInfo()),
	)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, 0, logger.Slog())
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		watchCtx, cancelWatch := context.WithCancel(ctx)
		defer cancelWatch()

		wg.Go(func() {
			if err := watcher.Watch(watchCtx, reloadHandler(logger, cfg.Server)); err != nil {
				logger.Slog().Error("config watcher failed", "error", err)
			}
		})
	}

	logger.Slog().Info("starting bridge",
		"version", Version,
		"address", cfg.Server.ListenAddress,
		"engine", cfg.Server.Engine,
		"config", cfgFile,
	)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}

	logger.Slog().Info("bridge stopped")
	return nil
}

// reloadHandler applies a reloaded configuration. Only the log level takes
// effect immediately; server settings need a restart.
func reloadHandler(logger *logging.Logger, running config.ServerConfig) func(*config.Config) {
	return func(cfg *config.Config) {
		if err := logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
			logger.Slog().Warn("ignoring reloaded log level", "level", cfg.Telemetry.Logging.Level, "error", err)
		} else {
			logger.Slog().Info("log level reloaded", "level", cfg.Telemetry.Logging.Level)
		}
		if cfg.Server != running {
			logger.Slog().Warn("server settings changed, restart to apply")
		}
	}
}
