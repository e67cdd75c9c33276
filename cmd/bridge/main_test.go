package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/bridge/pkg/cli"
	"mercator-hq/bridge/pkg/config"
	"mercator-hq/bridge/pkg/telemetry/logging"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile = ""
	validateFlags.format = "yaml"
	runFlags.dryRun = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"run", "validate", "version", "completion"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered (err = %v)", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	for _, want := range []string{"Bridge " + Version, "Git Commit: " + GitCommit, "Go Version: go"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuildInfo(t *testing.T) {
	info := buildInfo()
	if info.Version != Version || info.Commit != GitCommit || info.BuildTime != BuildDate {
		t.Errorf("buildInfo() = %+v", info)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:8080"
  engine: fasthttp
telemetry:
  logging:
    level: debug
`)

	out, err := executeCommand(t, "validate", "--config", path)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	for _, want := range []string{
		"0.0.0.0:8080",
		"engine: fasthttp",
		"level: debug",
		"read_timeout: 30s",
		"liveness_path: /health",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateCommand_Errors(t *testing.T) {
	invalid := writeConfig(t, "server:\n  engine: bogus\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"invalid config", []string{"validate", "--config", invalid}, cli.ExitConfig},
		{"missing file", []string{"validate", "--config", filepath.Join(t.TempDir(), "missing.yaml")}, cli.ExitConfig},
		{"unknown format", []string{"validate", "--format", "csv"}, cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := cli.ExitCode(err); got != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d (err = %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestRunCommand_DryRun(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	out, err := executeCommand(t, "run", "--dry-run", "--engine", "fasthttp")
	if err != nil {
		t.Fatalf("run --dry-run error = %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Errorf("output = %q", out)
	}
	if got := config.GetConfig().Server.Engine; got != config.EngineFastHTTP {
		t.Errorf("engine override = %q", got)
	}
}

func TestReloadHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}

	running := config.NewDefaultConfig()
	reloaded := config.NewDefaultConfig()
	reloaded.Telemetry.Logging.Level = "debug"
	reloaded.Server.ListenAddress = "127.0.0.1:9999"

	reloadHandler(logger, running.Server)(reloaded)

	if logger.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", logger.Level())
	}
	if !strings.Contains(buf.String(), "restart to apply") {
		t.Errorf("expected restart warning, got:\n%s", buf.String())
	}

	buf.Reset()
	reloaded.Telemetry.Logging.Level = "loud"
	reloadHandler(logger, reloaded.Server)(reloaded)

	if logger.Level() != slog.LevelDebug {
		t.Errorf("invalid level changed logger to %v", logger.Level())
	}
	if !strings.Contains(buf.String(), "ignoring reloaded log level") {
		t.Errorf("expected warning, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "restart to apply") {
		t.Errorf("unexpected restart warning:\n%s", buf.String())
	}
}
