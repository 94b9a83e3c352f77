// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents ask questions and queue ingestion via stdio
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs medrag as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to answer questions from your documents,
read the dashboard, and queue ingestion via stdio.

Logs go to stderr so they never mix with the protocol on stdout.`,
		Args: cobra.NoArgs,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  medrag mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "medrag": {
  #       "command": "medrag",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("error during shutdown", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Logger.Info("MCP server starting on stdio", "index_ready", a.Storage.Ready())

	if err := a.ServeMCP(ctx, versionInfo.Version); err != nil {
		return err
	}

	a.Logger.Info("shutdown complete")
	return nil
}
