package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for agentbench
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentbench",
		Short: "CRM agent test orchestration engine",
		Long: `Agentbench runs a catalog of CRM analysis agents (sentiment, churn,
segmentation) against connected platform backends and records the outcome
of every agent/platform pair.

Live platform integrations are called first where an endpoint is
configured; failed live calls degrade to a locally simulated analysis so
a run always resolves. Results accumulate across sessions and can be
inspected, exported, and cleared.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewSweepCommand())
	cmd.AddCommand(NewResultsCommand())
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewClearCommand())
	cmd.AddCommand(NewPlatformsCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
