package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dsssim",
		Short: "Direct-sequence spread-spectrum link simulator",
		Long: `dsssim simulates a DSSS communication link end to end.

A text message is coded, spread with a secret-derived chip sequence,
modulated onto a carrier, pushed through a noisy channel, and recovered
with an independently regenerated chip sequence. Six pipeline taps are
captured per run for waveform and spectrum inspection.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
