/*
Package cli provides command-line utilities shared by the ruler
command: output formatters, typed command errors, and signal handling.

Output Formatting:

Commands that emit structured results support text and JSON output:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	<-sigChan
*/
package cli
