package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhollis/agentbench/internal/models"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <agent-id>",
		Short: "Run one agent on its platform",
		Long: `Run a single agent from the catalog against every platform it is
eligible for. Fixed-platform agents run exactly once.

The run is recorded in the results store, replacing any prior result for
the same agent/platform pair. Configuration is loaded from
.agentbench/config.yaml if present; CLI flags override it.

Examples:
  agentbench run sentiment-native
  agentbench run churn-salesforce --user alice
  agentbench run segmentation-hubspot --disable-fallback
  agentbench run sentiment-native --sample-size 10 --timeout 30s`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	addConfigFlags(cmd)
	addRunFlags(cmd)

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	agentID := args[0]

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.orch.RunAgent(cmd.Context(), agentID)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printResults(cmd, out)
	printSummary(cmd, a.manager.Summary())
	return nil
}

// printResults writes one line per terminal result.
func printResults(cmd *cobra.Command, results []models.TestResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n")
	for _, r := range results {
		switch r.Status {
		case models.RunCompleted:
			fmt.Fprintf(w, "  %-24s %-12s completed  confidence=%.2f  records=%d  %dms\n",
				r.AgentID, r.Platform, r.Confidence, r.RecordsProcessed, r.ExecutionTimeMs)
		case models.RunFailed:
			fmt.Fprintf(w, "  %-24s %-12s failed     %s\n", r.AgentID, r.Platform, r.Error)
		}
	}
}
