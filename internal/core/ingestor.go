// ABOUTME: Ingestion pipeline: extract, chunk, embed, write index and metadata, reload
// ABOUTME: Each step reports failures as a StageError so job records carry the stage
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/index"
	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

// IngestResult summarises a finished ingestion run
type IngestResult struct {
	Source   string `json:"source"`
	Pages    int    `json:"pages"`
	Chunks   int    `json:"chunks"`
	Replaced int    `json:"replaced"`
	Total    int    `json:"total"`
}

// Ingestor turns a document into index vectors and metadata records
type Ingestor struct {
	storage     *storage.Storage
	extractor   *PDFExtractor
	embedder    llm.Embedder
	batchSize   int
	concurrency int
	logger      *log.Logger
	mu          sync.Mutex // one run at a time per process
}

// NewIngestor creates an Ingestor writing through store
func NewIngestor(store *storage.Storage, embedder llm.Embedder, batchSize, concurrency int, logger *log.Logger) *Ingestor {
	return &Ingestor{
		storage:     store,
		extractor:   NewPDFExtractor(logger),
		embedder:    embedder,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logging.Component(logger, "ingest"),
	}
}

// ValidateRequest checks chunking parameters and that the file exists
func ValidateRequest(req models.IngestRequest) error {
	if req.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidChunking)
	}
	if req.Overlap < 0 {
		return fmt.Errorf("%w: overlap cannot be negative", ErrInvalidChunking)
	}
	if req.Overlap >= req.ChunkSize {
		return fmt.Errorf("%w: overlap must be smaller than chunk_size", ErrInvalidChunking)
	}
	if req.Path == "" {
		return ErrFileNotFound
	}
	info, err := os.Stat(req.Path)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, req.Path)
	}
	return nil
}

// Run ingests one document. In append mode records previously ingested from
// the same source are replaced and everything else is kept; in rebuild mode
// the document becomes the whole corpus. A document with no text succeeds
// with zero chunks and leaves the stored files untouched.
func (in *Ingestor) Run(ctx context.Context, req models.IngestRequest) (*IngestResult, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if err := ValidateRequest(req); err != nil {
		stage := StageExtract
		if errors.Is(err, ErrInvalidChunking) {
			stage = StageChunk
		}
		return nil, stageErr(stage, err)
	}

	result := &IngestResult{Source: filepath.Base(req.Path)}
	logger := in.logger.With("source", result.Source)

	pages, err := in.extractor.Extract(req.Path)
	if err != nil {
		return nil, stageErr(StageExtract, err)
	}
	result.Pages = len(pages)

	chunks := NewChunkEngine(req.ChunkSize, req.Overlap).Chunk(JoinPages(pages), req.Path)
	if len(chunks) == 0 {
		logger.Warn("no text extracted; nothing to index", "pages", len(pages))
		return result, nil
	}
	result.Chunks = len(chunks)

	var (
		kept     []models.Chunk
		keptVecs [][]float32
	)
	if !req.Rebuild {
		kept, keptVecs, result.Replaced, err = in.retained(result.Source)
		if err != nil {
			return nil, err
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := llm.EmbedAll(ctx, in.embedder, texts, in.batchSize, in.concurrency)
	if err != nil {
		return nil, stageErr(StageEmbed, err)
	}

	dim := in.embedder.Dimension()
	if dim == 0 {
		dim = len(vectors[0])
	}
	idx := index.NewFlat(dim, in.embedder.Model())
	if err := idx.Add(keptVecs...); err != nil {
		return nil, stageErr(StageEmbed, fmt.Errorf("%w: %v; re-run with rebuild", ErrDimensionMismatch, err))
	}
	if err := idx.Add(vectors...); err != nil {
		return nil, stageErr(StageEmbed, fmt.Errorf("embedder returned inconsistent vectors: %w", err))
	}

	records := make([]models.Chunk, 0, len(kept)+len(chunks))
	records = append(records, kept...)
	records = append(records, chunks...)
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, stageErr(StageIndexWrite, fmt.Errorf("%s chunk %d: %w", rec.SourceName(), rec.Position, err))
		}
	}
	result.Total = len(records)

	if err := in.storage.Write(idx, records); err != nil {
		return nil, stageErr(StageIndexWrite, err)
	}
	if err := in.storage.Load(); err != nil {
		return nil, stageErr(StageReload, err)
	}

	logger.Info("ingestion complete",
		"pages", result.Pages, "chunks", result.Chunks,
		"replaced", result.Replaced, "total", result.Total, "rebuild", req.Rebuild)
	return result, nil
}

// retained loads the stored corpus and returns the records and vectors not
// belonging to source, plus how many records were dropped
func (in *Ingestor) retained(source string) ([]models.Chunk, [][]float32, int, error) {
	idx, err := index.Load(in.storage.IndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, 0, nil
	}
	if err != nil {
		return nil, nil, 0, stageErr(StageIndexWrite, fmt.Errorf("failed to read existing index: %w", err))
	}
	if idx.Len() == 0 {
		return nil, nil, 0, nil
	}

	// an embedder that has not reported its dimension yet is checked when vectors are added
	dimKnown := in.embedder.Dimension() > 0
	if (dimKnown && idx.Dimension() != in.embedder.Dimension()) || idx.Model() != in.embedder.Model() {
		return nil, nil, 0, stageErr(StageEmbed, fmt.Errorf("%w: index built with %s (%d dims), embedder is %s (%d dims); re-run with rebuild",
			ErrDimensionMismatch, idx.Model(), idx.Dimension(), in.embedder.Model(), in.embedder.Dimension()))
	}

	records, err := in.storage.Metadata().Load()
	if err != nil {
		return nil, nil, 0, stageErr(StageIndexWrite, fmt.Errorf("existing index has no readable metadata; re-run with rebuild: %w", err))
	}
	if len(records) != idx.Len() {
		return nil, nil, 0, stageErr(StageIndexWrite, fmt.Errorf("%w: re-run with rebuild", storage.ErrCorrespondence))
	}

	var (
		kept     []models.Chunk
		vecs     [][]float32
		replaced int
	)
	for i, rec := range records {
		if rec.SourceName() == source {
			replaced++
			continue
		}
		v, _ := idx.Vector(i)
		kept = append(kept, rec)
		vecs = append(vecs, v)
	}
	return kept, vecs, replaced, nil
}
