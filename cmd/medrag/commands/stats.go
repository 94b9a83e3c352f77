// ABOUTME: CLI command to show the dashboard summary
// ABOUTME: Document and chunk counts plus the most recently ingested sources
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Long: `Show how many documents and chunks are indexed and which
sources were ingested most recently.

Questions asked today are counted per process, so this command
always reports zero; query a running server for the live count.

Examples:
  medrag stats
  medrag stats --format json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.Reporter.Stats()

	if jsonOutput() {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documents: %d\n", stats.Docs)
	fmt.Fprintf(cmd.OutOrStdout(), "Chunks:    %d\n", stats.Chunks)
	if len(stats.Recent) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Recent:\n")
		for _, name := range stats.Recent {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
		}
	}
	return nil
}
