// ABOUTME: Composition root wiring config into storage, ingestion, querying and transports
// ABOUTME: Shared by the medrag CLI subcommands and the standalone server binary
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/api"
	"github.com/harper/medrag/internal/config"
	"github.com/harper/medrag/internal/core"
	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/mcp"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
	"github.com/harper/medrag/internal/storage/sqlite"
)

// App holds the long-lived services for one process
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Storage  *storage.Storage
	Embedder llm.Embedder
	Counter  *core.QueryCounter
	Ingestor *core.Ingestor
	Engine   *core.QueryEngine
	Reporter *core.Reporter

	// Jobs and DB are nil until StartJobs is called
	Jobs *core.JobQueue
	DB   *sqlite.DB
}

// New builds the services described by cfg and loads whatever index is on
// disk. A missing index is not an error; the app starts in the not-ready state.
func New(cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	store := storage.New(cfg.IndexPath(), cfg.MetadataPath(), logger)
	if err := store.Load(); err != nil {
		if errors.Is(err, storage.ErrNotReady) {
			logger.Info("no index on disk yet; ingest a document to enable answers", "path", cfg.IndexPath())
		} else {
			logger.Warn("failed to load index", "path", cfg.IndexPath(), "err", err)
		}
	}

	counter := core.NewQueryCounter()
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Storage:  store,
		Embedder: embedder,
		Counter:  counter,
		Ingestor: core.NewIngestor(store, embedder, cfg.EmbeddingBatchSize, cfg.EmbeddingConcurrency, logger),
		Engine:   core.NewQueryEngine(store, embedder, NewGenerator(cfg, logger), counter, cfg.TopK, logger),
		Reporter: core.NewReporter(store.Metadata(), counter, cfg.SummaryLength, cfg.RecentSources, logger),
	}
	return a, nil
}

// NewEmbedder picks the embedding backend named by the config
func NewEmbedder(cfg *config.Config) (llm.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		embedder, err := llm.NewOpenAIEmbedderWithConfig(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimension,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing OpenAI embedder: %w", err)
		}
		return embedder, nil
	case config.ProviderHash, "":
		return llm.NewHashEmbedder(cfg.EmbeddingDimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// NewGenerator returns the chat generator, or a stand-in that reports the
// missing key on every question so the server can still start.
func NewGenerator(cfg *config.Config, logger *log.Logger) llm.Generator {
	gen, err := llm.NewChatGenerator(llm.GeneratorConfig{
		APIKey:  cfg.LLMKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		if logger != nil {
			logger.Warn("answer generation disabled", "err", err)
		}
		return llm.UnavailableGenerator{Err: err}
	}
	return gen
}

// StartJobs opens the job database and starts the ingestion worker
func (a *App) StartJobs() error {
	if a.Jobs != nil {
		return nil
	}
	if err := os.MkdirAll(a.Config.DataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	db, err := sqlite.Open(a.Config.JobsDBPath())
	if err != nil {
		return fmt.Errorf("opening job database: %w", err)
	}
	jobs, err := core.NewJobQueue(sqlite.NewJobStore(db), a.Ingestor, core.DefaultQueueSize, a.Logger)
	if err != nil {
		_ = db.Close()
		return err
	}
	a.DB = db
	a.Jobs = jobs
	return nil
}

// APIServer builds the HTTP surface over the app's services. StartJobs must
// have been called.
func (a *App) APIServer() *api.Server {
	return api.NewServer(a.Engine, a.Reporter, a.Jobs, a.Storage, api.Options{
		UploadDir:      a.Config.UploadDir(),
		MaxUploadBytes: a.Config.MaxUploadBytes(),
		ChatRate:       a.Config.ChatRate,
		ChatBurst:      a.Config.ChatBurst,
		ChunkSize:      a.Config.ChunkSize,
		ChunkOverlap:   a.Config.ChunkOverlap,
	}, a.Logger)
}

// MCPHandlers builds the MCP tool handlers. StartJobs must have been called.
func (a *App) MCPHandlers() *mcp.Handlers {
	return mcp.NewHandlers(a.Engine, a.Reporter, a.Jobs, a.Config.ChunkSize, a.Config.ChunkOverlap)
}

// Request builds an ingestion request using the configured chunking
func (a *App) Request(path string) models.IngestRequest {
	return models.IngestRequest{
		Path:      path,
		ChunkSize: a.Config.ChunkSize,
		Overlap:   a.Config.ChunkOverlap,
	}
}

// Ingest runs the pipeline synchronously, bypassing the job queue
func (a *App) Ingest(ctx context.Context, req models.IngestRequest) (*core.IngestResult, error) {
	return a.Ingestor.Run(ctx, req)
}

// Close stops the job worker and releases the database
func (a *App) Close() error {
	var errs []error
	if a.Jobs != nil {
		errs = append(errs, a.Jobs.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
