// Package main provides the entry point for the fleetver CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for fleetver.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleetver",
		Short: "Report which users run a given client version across all organizations",
		Long: `fleetver queries a multi-tenant device-management API and reports every
user device whose client version matches a target pattern.

The credential comes from the API_KEY environment variable; the target
pattern from APP_VERSION or --app-version. Matching is substring
containment, so "5.5.09" selects the whole 5.5.09.x family.`,
		Version:       resolveBuildInfo().version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. Any error escaping a subcommand lands
// here, is printed once, and terminates the process with a failure status.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
