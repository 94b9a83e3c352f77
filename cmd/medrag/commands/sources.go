// ABOUTME: CLI command to list ingested documents
// ABOUTME: One row per source with its chunk count and a short summary
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List ingested documents",
		Long: `List every ingested document with its chunk count and a
summary taken from its first chunk.

Examples:
  medrag sources
  medrag sources --format json`,
		Args: cobra.NoArgs,
		RunE: runSources,
	}

	return cmd
}

func runSources(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sources := a.Reporter.Sources()

	if jsonOutput() {
		jsonData, err := json.MarshalIndent(sources, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(sources) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No documents ingested\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SOURCE\tCHUNKS\tSUMMARY\n")
	fmt.Fprintf(w, "------\t------\t-------\n")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%d\t%s\n", truncate(s.Name, 40), s.Chunks, truncate(oneLine(s.Summary), 60))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d document(s)\n", len(sources))
	}
	return nil
}
