// ABOUTME: Long-running transports: the HTTP server with index watcher, and MCP over stdio
// ABOUTME: Both block until the context is cancelled, then drain in-flight work
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/medrag/internal/mcp"
	"github.com/harper/medrag/internal/storage"
)

// ShutdownTimeout bounds how long in-flight HTTP requests may take to finish
const ShutdownTimeout = 10 * time.Second

// Serve runs the HTTP API on the configured address until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.Config.Addr, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener runs the HTTP API on ln until ctx is cancelled
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	if err := a.StartJobs(); err != nil {
		return err
	}

	if a.Config.WatchIndex {
		watcher, err := storage.NewWatcher(a.Storage, a.Logger)
		if err != nil {
			a.Logger.Warn("index watcher disabled", "err", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	httpServer := &http.Server{
		Handler:           a.APIServer().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("http shutdown", "err", err)
		}
	}()

	a.Logger.Info("serving", "addr", ln.Addr().String(), "index_ready", a.Storage.Ready(), "embedder", a.Embedder.Model())

	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeMCP runs the MCP tools over stdio until ctx is cancelled or stdin closes
func (a *App) ServeMCP(ctx context.Context, version string) error {
	if err := a.StartJobs(); err != nil {
		return err
	}

	server := mcp.NewServer(version, a.MCPHandlers())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
