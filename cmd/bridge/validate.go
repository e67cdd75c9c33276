package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/bridge/pkg/cli"
	"mercator-hq/bridge/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load and validate the configuration, then print it with defaults and
environment overrides applied.

Examples:
  # Validate the defaults plus BRIDGE_* environment variables
  bridge validate

  # Validate a file and print it as YAML
  bridge validate --config config.yaml --format yaml`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "yaml", "output format: text, json, yaml")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(validateFlags.format))
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	return formatter.FormatTo(cmd.OutOrStdout(), cfg)
}
