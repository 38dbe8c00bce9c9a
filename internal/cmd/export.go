package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhollis/agentbench/internal/results"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export results as a JSON document",
		Long: `Export the complete engine state as a single JSON document: the
platform connection snapshot, the full result set, and the aggregate
summary. Exporting reads state without mutating it, so two exports with
no intervening runs differ only in document id and timestamp.

If no output file is specified, the document is written to stdout.

Examples:
  agentbench export
  agentbench export --output report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExportResults(cmd, output)
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (stdout if not specified)")
	cmd.Flags().String("store", "", "Path to the results store file")

	return cmd
}

// runExportResults implements the export command logic
func runExportResults(cmd *cobra.Command, output string) error {
	a, err := newViewApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	doc := results.BuildExport(a.manager.Snapshot(), a.registry.Snapshot())

	var writer io.Writer
	if output == "" {
		writer = cmd.OutOrStdout()
	} else {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	if err := doc.WriteJSON(writer); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d result(s) to %s\n", len(doc.Results), output)
	}
	return nil
}
