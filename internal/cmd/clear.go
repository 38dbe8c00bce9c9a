package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewClearCommand creates the clear command
func NewClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all accumulated results",
		Long: `Delete every recorded result and reset aggregate statistics to zero.
The persisted store file is removed; clearing an already-empty store
succeeds.

Examples:
  # Clear with confirmation prompt
  agentbench clear

  # Clear without prompting
  agentbench clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClear(cmd, yes)
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().String("store", "", "Path to the results store file")

	return cmd
}

// runClear implements the clear command logic
func runClear(cmd *cobra.Command, yes bool) error {
	output := cmd.OutOrStdout()

	a, err := newViewApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	count := a.manager.Len()
	if count == 0 {
		fmt.Fprintf(output, "No results to clear.\n")
		return nil
	}

	if !yes {
		fmt.Fprintf(output, "This will delete %d recorded result(s).\n", count)
		if !confirmAction(cmd) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	if err := a.manager.Clear(); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}

	fmt.Fprintf(output, "Cleared %d result(s).\n", count)
	return nil
}

// confirmAction prompts the user for confirmation
func confirmAction(cmd *cobra.Command) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "Continue? [y/N]: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
