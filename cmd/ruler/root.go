package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ruler",
	Short: "Ruler - declarative expense-rule evaluation service",
	Long: `Ruler evaluates expense submissions against a declarative rulebook.

Each rulebook clause declares its required fields and a constraint tree
(amount ceilings, date windows, frequency caps, approval requirements).
Ruler checks submitted data against the clause and returns an OK/NG
verdict with reason codes drawn from a shared taxonomy, expanded into
human-readable diagnostics.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
