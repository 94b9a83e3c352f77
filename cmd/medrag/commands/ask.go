// ABOUTME: Ask command answers a question from the indexed documents
// ABOUTME: Prints the answer followed by the chunks it was based on
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askShowSources bool

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ingested documents",
		Long: `Ask a question about the ingested documents.

Retrieves the closest chunks from the index and sends them with the
question to the configured chat model (Gemini by default).

Examples:
  medrag ask "What is the first-line treatment for type 2 diabetes?"
  medrag ask --sources "How is hypertension diagnosed?"
  medrag ask --format json "What are the symptoms of asthma?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().BoolVar(&askShowSources, "sources", false, "Print the retrieved chunks after the answer")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	answer := a.Engine.Ask(cmd.Context(), strings.Join(args, " "))

	if jsonOutput() {
		jsonData, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", answer.Text)

	if askShowSources && len(answer.Contexts) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSources:\n")
		for i, c := range answer.Contexts {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s #%d: %s\n", i+1, c.SourceName(), c.Position, truncate(oneLine(c.Text), 80))
		}
	}
	return nil
}
