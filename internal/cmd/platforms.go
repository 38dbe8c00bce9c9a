package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPlatformsCommand creates the platforms command
func NewPlatformsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Show platform connection status",
		Long: `Show the connection status and record count estimate for every known
platform. The native platform is always connected; a live integration is
connected when an analysis endpoint is configured for it.

Examples:
  agentbench platforms
  agentbench platforms --check
  agentbench platforms --config custom.yaml`,
		Args: cobra.NoArgs,
		RunE: platformsCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().Bool("check", false, "Re-probe platform connections before display")

	return cmd
}

// platformsCommand implements the platforms command logic
func platformsCommand(cmd *cobra.Command, _ []string) error {
	a, err := newViewApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.OutOrStdout()
	if check, _ := cmd.Flags().GetBool("check"); check {
		if err := a.registry.Check(cmd.Context(), a.prober); err != nil {
			return fmt.Errorf("platform check failed: %w", err)
		}
		fmt.Fprintf(w, "Connection status refreshed.\n\n")
	}
	fmt.Fprintf(w, "Platforms:\n")
	for _, info := range a.registry.Snapshot() {
		if info.Connected() {
			fmt.Fprintf(w, "  %-12s %-14s %d record(s)\n", info.Platform, info.Status, info.RecordCount)
		} else {
			fmt.Fprintf(w, "  %-12s %s\n", info.Platform, info.Status)
		}
	}
	fmt.Fprintf(w, "\n%d of %d connected\n", a.registry.ConnectedCount(), len(a.registry.Snapshot()))
	return nil
}
