package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/bridge/pkg/cli"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge - HTTP server for environment-protocol applications",
	Long: `Bridge serves applications written against the environment protocol.

Each HTTP request is translated into an environment map, the application is
called with it, and the returned status, headers and body are written back
to the client on either the net/http or the fasthttp engine.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code for its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
}
