/*
Package cli provides helpers shared by the bridge command.

Output Formatting:

Command results are written as text, JSON or YAML:

	formatter, err := cli.NewFormatter(cli.FormatYAML)
	if err != nil {
		return err
	}
	return formatter.FormatTo(os.Stdout, cfg)

Errors and Exit Codes:

Configuration failures are wrapped in ConfigError and exit with code 2;
other command failures exit with code 1:

	os.Exit(cli.ExitCode(err))

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
