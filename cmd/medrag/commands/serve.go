// ABOUTME: Serve command runs the web UI and JSON API
// ABOUTME: Starts the ingestion worker and index watcher alongside the HTTP server
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and HTTP API",
		Long: `Run the web UI and HTTP API.

Serves the chat page at / and the JSON endpoints under /api. Uploads and
ingestion runs are queued to a background worker; the index is reloaded
whenever its files change on disk.

Examples:
  medrag serve
  medrag serve --addr :9000
  MEDRAG_CHAT_RATE=2 medrag serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Warn("error during shutdown", "err", err)
		}
	}()

	if serveAddr != "" {
		a.Config.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Serve(ctx); err != nil {
		return err
	}

	a.Logger.Info("shutdown complete")
	return nil
}
