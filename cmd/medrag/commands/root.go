// ABOUTME: Root command, global flags, and shared service setup for the CLI
// ABOUTME: Every subcommand loads config and logging the same way through loadApp
package commands

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/medrag/internal/app"
	"github.com/harper/medrag/internal/config"
	"github.com/harper/medrag/internal/logging"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
███╗   ███╗███████╗██████╗ ██████╗  █████╗  ██████╗
████╗ ████║██╔════╝██╔══██╗██╔══██╗██╔══██╗██╔════╝
██╔████╔██║█████╗  ██║  ██║██████╔╝███████║██║  ███╗
██║╚██╔╝██║██╔══╝  ██║  ██║██╔══██╗██╔══██║██║   ██║
██║ ╚═╝ ██║███████╗██████╔╝██║  ██║██║  ██║╚██████╔╝
╚═╝     ╚═╝╚══════╝╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "medrag",
		Short: "Healthcare document assistant backed by retrieval over your PDFs",
		Long: banner + `
Ingest healthcare PDFs into a local vector index and ask questions
answered from their contents.

Run "medrag serve" for the web UI and JSON API, "medrag mcp" to expose
the same tools to LLM agents, or use the commands below directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default: $MEDRAG_CONFIG or ./medrag.toml)")

	cmd.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewAskCmd(),
		NewSearchCmd(),
		NewStatsCmd(),
		NewSourcesCmd(),
		NewJobsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, then the config file and environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path = os.Getenv("MEDRAG_CONFIG")
	}
	return config.LoadFrom(path)
}

// newLogger honours the config level, overridden by --verbose or --quiet
func newLogger(cfg *config.Config) *log.Logger {
	logger := logging.New(os.Stderr, cfg.LogLevel)
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

// loadApp builds the shared services for a subcommand
func loadApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, newLogger(cfg))
}

func jsonOutput() bool {
	return outputFormat == "json"
}
