// ABOUTME: QueryEngine answers questions from the indexed documents via the LLM
// ABOUTME: Every failure comes back as a user-facing message rather than an error
package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

// Messages returned instead of an answer
const (
	MsgEmptyQuestion = "Please enter a question."
	MsgNotReady      = "⚠ Ingestion not done. Upload and ingest documents first."
	MsgNoMetadata    = "⚠ No metadata found. Run ingestion first."
	msgEmbedError    = "⚠ Error embedding question: "
	msgModelError    = "⚠ Error calling model: "
)

// DefaultTopK is how many chunks are retrieved per question
const DefaultTopK = 3

const promptTemplate = `
You are a professional healthcare assistant.
Answer briefly in 3–4 lines. Keep it medically accurate.

Question: %s

Context from documents:
%s
`

// QueryEngine performs retrieval and generation for one question at a time
type QueryEngine struct {
	storage   *storage.Storage
	embedder  llm.Embedder
	generator llm.Generator
	counter   *QueryCounter
	topK      int
	logger    *log.Logger
}

// NewQueryEngine wires the engine. topK <= 0 uses DefaultTopK.
func NewQueryEngine(store *storage.Storage, embedder llm.Embedder, generator llm.Generator, counter *QueryCounter, topK int, logger *log.Logger) *QueryEngine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryEngine{
		storage:   store,
		embedder:  embedder,
		generator: generator,
		counter:   counter,
		topK:      topK,
		logger:    logging.Component(logger, "query"),
	}
}

// Counter exposes the shared query counter
func (q *QueryEngine) Counter() *QueryCounter {
	return q.counter
}

// Ask answers question. The returned Answer always has Text set.
func (q *QueryEngine) Ask(ctx context.Context, question string) models.Answer {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Answer{Text: MsgEmptyQuestion}
	}

	q.counter.Increment()

	snap := q.storage.Snapshot()
	if snap == nil || q.embedder == nil {
		return models.Answer{Text: MsgNotReady}
	}

	vecs, err := q.embedder.Embed(ctx, []string{question})
	if err == nil && len(vecs) != 1 {
		err = fmt.Errorf("embedder returned %d vectors for 1 input", len(vecs))
	}
	if err != nil {
		q.logger.Error("question embedding failed", "err", err)
		return models.Answer{Text: msgEmbedError + err.Error()}
	}

	hits, err := snap.Index.Search(vecs[0], q.topK)
	if err != nil {
		q.logger.Error("index search failed", "err", err)
		return models.Answer{Text: msgEmbedError + err.Error()}
	}

	if !snap.HasMetadata() {
		return models.Answer{Text: MsgNoMetadata}
	}

	contexts := Retrieve(snap.Metadata, hits)
	texts := make([]string, len(contexts))
	for i, c := range contexts {
		texts[i] = c.Text
	}

	answer, err := q.generator.Generate(ctx, BuildPrompt(question, strings.Join(texts, "\n\n")))
	if err != nil {
		q.logger.Error("model call failed", "err", err)
		return models.Answer{Text: msgModelError + err.Error(), Contexts: contexts}
	}

	return models.Answer{Text: strings.TrimSpace(answer), Contexts: contexts}
}

// Search returns the k nearest chunks without calling the model or counting
// the query. Results are ordered by ascending distance.
func (q *QueryEngine) Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuestion
	}
	if k <= 0 {
		k = q.topK
	}

	snap := q.storage.Snapshot()
	if snap == nil || q.embedder == nil {
		return nil, storage.ErrNotReady
	}
	if !snap.HasMetadata() {
		return nil, storage.ErrNoMetadata
	}

	vecs, err := q.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 input", len(vecs))
	}

	hits, err := snap.Index.Search(vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var out []models.ScoredChunk
	for _, h := range hits {
		if !h.IsMatch() || h.ID >= len(snap.Metadata) {
			continue
		}
		out = append(out, models.ScoredChunk{Chunk: snap.Metadata[h.ID], Distance: h.Distance})
	}
	return out, nil
}

// Retrieve maps search hits to metadata records, dropping hits that are
// the no-match sentinel or fall outside the metadata list
func Retrieve(metadata []models.Chunk, hits []models.SearchHit) []models.Chunk {
	var out []models.Chunk
	for _, h := range hits {
		if !h.IsMatch() || h.ID >= len(metadata) {
			continue
		}
		out = append(out, metadata[h.ID])
	}
	return out
}

// BuildPrompt fills the answer template
func BuildPrompt(question, context string) string {
	return fmt.Sprintf(promptTemplate, question, context)
}
