// Package main provides the pulse CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pulse",
		Short: "Client health scoring and operational alerts for the agency",
		Long: `Pulse scores every active client's health from deliverables, invoices,
tasks and content, tracks how scores move between runs, and sweeps the
book of business for overdue work, unpaid invoices and expiring contracts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: search for .pulse/config.yaml)")

	rootCmd.AddCommand(
		newScoreCmd(),
		newSweepCmd(),
		newMigrateCmd(),
		newExportCmd(),
	)
	return rootCmd
}
