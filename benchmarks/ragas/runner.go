// ABOUTME: Benchmark runner - ingests scenario documents into a scratch index and asks the question
// ABOUTME: Runs offline with the hash embedder and an extractive generator unless live clients are given

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/medrag/internal/core"
	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage"
)

// contextMarker precedes the retrieved chunks in the answer prompt
const contextMarker = "Context from documents:\n"

// BenchmarkRunner executes benchmark tests
type BenchmarkRunner struct {
	embedder  llm.Embedder
	generator llm.Generator
	metrics   *MetricsCalculator
	topK      int
	logger    *log.Logger
	verbose   bool
}

// NewBenchmarkRunner creates a runner. A nil embedder selects the hash
// embedder and a nil generator selects ExtractiveGenerator.
func NewBenchmarkRunner(embedder llm.Embedder, generator llm.Generator, verbose bool) *BenchmarkRunner {
	if embedder == nil {
		embedder = llm.NewHashEmbedder(0)
	}
	if generator == nil {
		generator = ExtractiveGenerator{}
	}
	logger := logging.Discard()
	if verbose {
		logger = logging.New(os.Stderr, "debug")
	}
	return &BenchmarkRunner{
		embedder:  embedder,
		generator: generator,
		metrics:   NewMetricsCalculator(),
		topK:      core.DefaultTopK,
		logger:    logger,
		verbose:   verbose,
	}
}

// RunTest executes a single scenario against a fresh index
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	dir, err := os.MkdirTemp("", "medrag-bench-*")
	if err != nil {
		return TestResult{}, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	store := storage.New(filepath.Join(dir, "index", "medrag.index"), filepath.Join(dir, "index", "medrag_metadata.json"), r.logger)
	ingestor := core.NewIngestor(store, r.embedder, 0, 1, r.logger)

	for i, doc := range scenario.Documents {
		// Each revision lives in its own directory so same-named documents replace each other
		path := filepath.Join(dir, "docs", fmt.Sprintf("%02d", i), doc.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return TestResult{}, err
		}
		if err := os.WriteFile(path, []byte(doc.Text), 0644); err != nil {
			return TestResult{}, fmt.Errorf("failed to write %s: %w", doc.Name, err)
		}
		if _, err := ingestor.Run(ctx, models.IngestRequest{
			Path:      path,
			ChunkSize: core.DefaultChunkSize,
			Overlap:   core.DefaultChunkOverlap,
		}); err != nil {
			return TestResult{}, fmt.Errorf("failed to ingest %s: %w", doc.Name, err)
		}
	}

	engine := core.NewQueryEngine(store, r.embedder, r.generator, core.NewQueryCounter(), r.topK, r.logger)

	start := time.Now()
	answer := engine.Ask(ctx, scenario.Question)
	elapsed := time.Since(start)

	texts := make([]string, len(answer.Contexts))
	sources := make([]string, len(answer.Contexts))
	for i, c := range answer.Contexts {
		texts[i] = c.Text
		sources[i] = c.SourceName()
	}

	r.logger.Debug("scenario answered", "id", scenario.ID, "answer", answer.Text, "sources", sources, "took", elapsed)

	result := r.metrics.EvaluateTest(scenario, answer.Text, texts, sources)
	result.Details["latency_ms"] = elapsed.Milliseconds()
	return result, nil
}

// RunAllTests executes all benchmark tests
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Summary is the exported results document
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Results    []TestResult `json:"results"`
}

// Summarize counts passes and failures
func Summarize(results []TestResult) Summary {
	s := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		if result.Status == "PASS" {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// ExportResults writes the results summary as JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// ExtractiveGenerator answers with the first context chunk in the prompt,
// giving a deterministic stand-in for the chat model
type ExtractiveGenerator struct{}

func (ExtractiveGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := strings.Index(prompt, contextMarker)
	if i < 0 {
		return "", fmt.Errorf("prompt has no context section")
	}
	contextText := prompt[i+len(contextMarker):]
	first, _, _ := strings.Cut(contextText, "\n\n")
	return strings.TrimSpace(first), nil
}
