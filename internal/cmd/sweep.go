package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mhollis/agentbench/internal/orchestrator"
)

// NewSweepCommand creates the sweep command
func NewSweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every prototype on every connected platform",
		Long: `Run the full comparison sweep: every agent prototype against every
platform, sequentially, pacing between runs so progress is observable.

The sweep is rejected when no platform is connected. Ctrl-C stops the
sweep cooperatively: the pair in flight finishes and is recorded, no
further pairs start, and the partial results are kept.

Examples:
  agentbench sweep
  agentbench sweep --user alice --timeout 2m
  agentbench sweep --disable-fallback`,
		Args: cobra.NoArgs,
		RunE: sweepCommand,
	}

	addConfigFlags(cmd)
	addRunFlags(cmd)

	return cmd
}

// sweepCommand implements the sweep command logic
func sweepCommand(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Ctrl-C requests a cooperative stop rather than killing the process,
	// so the in-flight pair still resolves and persists.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer func() {
		signal.Stop(sigCh)
		close(sigCh)
	}()
	go func() {
		if _, ok := <-sigCh; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "\nStopping after the current run...\n")
			a.orch.Stop()
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Sweeping %d agent/platform pairs...\n", a.catalog.PairCount())

	out, err := a.orch.RunSweep(cmd.Context())
	stopped := errors.Is(err, orchestrator.ErrStopped)
	if err != nil && !stopped {
		return fmt.Errorf("sweep failed: %w", err)
	}

	printResults(cmd, out)
	printSummary(cmd, a.manager.Summary())

	if stopped {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSweep stopped after %d of %d pairs.\n",
			len(out), a.catalog.PairCount())
	}
	return nil
}
