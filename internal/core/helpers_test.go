// ABOUTME: Shared test doubles and fixtures for the core package
// ABOUTME: Offline embedder/generator fakes and temp-dir storage setup

package core

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harper/medrag/internal/index"
	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// countingEmbedder wraps an embedder and counts Embed calls
type countingEmbedder struct {
	llm.Embedder
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.calls++
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.Embedder.Embed(ctx, texts)
}

func (c *countingEmbedder) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	dir := t.TempDir()
	return storage.New(filepath.Join(dir, "index", "medrag.index"), filepath.Join(dir, "index", "medrag_metadata.json"), logging.Discard())
}

func writeDoc(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// seedCorpus writes records and their hash embeddings straight to disk and loads them
func seedCorpus(t *testing.T, s *storage.Storage, e llm.Embedder, records []models.Chunk) {
	t.Helper()
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	vecs, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	idx := index.NewFlat(e.Dimension(), e.Model())
	if err := idx.Add(vecs...); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(idx, records); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
}

var fixtureRecords = []models.Chunk{
	{Text: "Metformin is a first-line medication for type 2 diabetes.", Source: "diabetes.pdf", Position: 0},
	{Text: "Insulin therapy may be required when oral agents fail.", Source: "diabetes.pdf", Position: 1},
	{Text: "Hypertension is diagnosed when blood pressure stays above 130/80.", Source: "cardio.pdf", Position: 0},
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
}
