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
	Use:   "saturn",
	Short: "Saturn - drift and governance decision engine",
	Long: `Saturn is a governance decision engine for ML model promotion.

It tracks prediction samples per model, computes distribution drift (PSI and
KS statistics) and fairness disparity, aggregates both into a composite risk
score, and evaluates the active governance policy to decide whether a model
is approved, at risk, or blocked. Every lifecycle transition is audited.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
