// ABOUTME: Standalone entry point for the medrag HTTP server
// ABOUTME: Same wiring as "medrag serve" without the CLI, for containers and process managers
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harper/medrag/internal/app"
	"github.com/harper/medrag/internal/config"
	"github.com/harper/medrag/internal/logging"
)

func main() {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Default().Fatal("invalid configuration", "err", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := a.Serve(ctx)
	if err := a.Close(); err != nil {
		logger.Warn("error during shutdown", "err", err)
	}
	if serveErr != nil {
		logger.Fatal("server error", "err", serveErr)
	}
	logger.Info("shutdown complete")
}
