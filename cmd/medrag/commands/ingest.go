// ABOUTME: Ingest command runs the extraction, chunking and indexing pipeline in-process
// ABOUTME: Useful for seeding an index before starting the server
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ingestChunkSize int
	ingestOverlap   int
	ingestRebuild   bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a PDF into the index",
		Long: `Ingest a PDF (or plain text / markdown) file into the index.

The file is split into overlapping character windows, embedded, and
appended to the index. Chunks previously ingested from a file with the
same name are replaced. Use --rebuild to discard the existing index.

A running server picks up the new index automatically.

Examples:
  medrag ingest data/raw/diabetes.pdf
  medrag ingest --chunk-size 800 --overlap 100 guide.pdf
  medrag ingest --rebuild --format json guide.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "Characters per chunk (default from config, 1000)")
	cmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "Characters shared by consecutive chunks (default from config, 200)")
	cmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "Replace the whole index instead of appending")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	req := a.Request(args[0])
	if cmd.Flags().Changed("chunk-size") {
		req.ChunkSize = ingestChunkSize
	}
	if cmd.Flags().Changed("overlap") {
		req.Overlap = ingestOverlap
	}
	req.Rebuild = ingestRebuild

	result, err := a.Ingest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", args[0], err)
	}

	if jsonOutput() {
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if result.Chunks == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No text extracted from %s; nothing indexed.\n", result.Source)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d chunks from %s (%d pages)\n", result.Chunks, result.Source, result.Pages)
	if !quiet {
		if result.Replaced > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced %d earlier chunks\n", result.Replaced)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Index now holds %d chunks\n", result.Total)
	}
	return nil
}
