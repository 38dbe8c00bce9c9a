package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhollis/agentbench/internal/models"
	"github.com/mhollis/agentbench/internal/results"
)

// NewResultsCommand creates the results command
func NewResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show accumulated test results",
		Long: `Show every recorded agent/platform result in completion order, followed
by the aggregate summary: totals, records processed, actions executed,
mean confidence over completed runs, and per-platform success rates.

Statistics are recomputed from the stored result set on demand.

Examples:
  agentbench results
  agentbench results --store /tmp/results.json`,
		Args: cobra.NoArgs,
		RunE: resultsCommand,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("store", "", "Path to the results store file")

	return cmd
}

// resultsCommand implements the results command logic
func resultsCommand(cmd *cobra.Command, _ []string) error {
	a, err := newViewApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	set := a.manager.Snapshot()
	if len(set) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No results recorded yet. Run an agent first.\n")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Recent executions:\n")
	for _, r := range set {
		switch r.Status {
		case models.RunCompleted:
			fmt.Fprintf(w, "  %-24s %-12s completed  confidence=%.2f  records=%d  actions=%d  risk=%s\n",
				r.AgentID, r.Platform, r.Confidence, r.RecordsProcessed, r.ActionsExecuted, r.RiskLevel)
		case models.RunFailed:
			fmt.Fprintf(w, "  %-24s %-12s failed     %s\n", r.AgentID, r.Platform, r.Error)
		default:
			fmt.Fprintf(w, "  %-24s %-12s %s\n", r.AgentID, r.Platform, r.Status)
		}
	}

	printSummary(cmd, a.manager.Summary())
	return nil
}

// printSummary writes the aggregate statistics block.
func printSummary(cmd *cobra.Command, s results.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Total runs: %d\n", s.Total)
	fmt.Fprintf(w, "  Completed: %d\n", s.Completed)
	fmt.Fprintf(w, "  Failed: %d\n", s.Failed)
	fmt.Fprintf(w, "  Records processed: %d\n", s.TotalRecords)
	fmt.Fprintf(w, "  Actions executed: %d\n", s.TotalActions)
	fmt.Fprintf(w, "  Avg confidence: %.2f\n", s.AvgConfidence)

	if len(s.PlatformRates) > 0 {
		fmt.Fprintf(w, "\nPlatform success rates:\n")
		for _, p := range models.AllPlatforms() {
			rate, ok := s.PlatformRates[p]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-12s %d/%d (%.0f%%)\n", p, rate.Completed, rate.Total, rate.SuccessRate*100)
		}
	}
}
