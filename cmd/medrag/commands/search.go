// ABOUTME: CLI command to search the index without generating an answer
// ABOUTME: Shows the nearest chunks and their distances for a query
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/medrag/internal/storage"
)

var searchLimit int

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the index for matching chunks",
		Long: `Search the index for the chunks nearest to a query.

Runs the same semantic retrieval as "ask" but skips the chat model,
which makes it handy for checking what context a question would get.

Examples:
  medrag search "insulin dosing"
  medrag search --limit 10 "blood pressure targets"
  medrag search --format json "asthma inhaler"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	query := args[0]
	results, err := a.Engine.Search(cmd.Context(), query, searchLimit)
	if errors.Is(err, storage.ErrNotReady) || errors.Is(err, storage.ErrNoMetadata) {
		return fmt.Errorf("no index yet; run \"medrag ingest <file>\" first")
	}
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No chunks found for query: %s\n", query)
		}
		return nil
	}

	if jsonOutput() {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DISTANCE\tSOURCE\tPOS\tTEXT\n")
	fmt.Fprintf(w, "--------\t------\t---\t----\n")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%d\t%s\n", r.Distance, truncate(r.SourceName(), 30), r.Position, truncate(oneLine(r.Text), 60))
	}
	w.Flush()

	return nil
}
