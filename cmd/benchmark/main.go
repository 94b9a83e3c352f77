// ABOUTME: Command-line benchmark runner for retrieval and answer quality
// ABOUTME: Executes scenarios against scratch indexes and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/harper/medrag/benchmarks/ragas"
	"github.com/harper/medrag/internal/app"
	"github.com/harper/medrag/internal/config"
	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
)

func main() {
	testID := flag.String("test", "", "Run a single scenario by ID. If empty, runs all scenarios.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	live := flag.Bool("live", false, "Use the configured embedder and chat model instead of offline stand-ins")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	logger := logging.Default()
	_ = godotenv.Load()

	var embedder llm.Embedder
	var generator llm.Generator
	if *live {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("invalid configuration", "err", err)
		}
		if cfg.LLMKey == "" {
			logger.Fatal("GEMINI_API_KEY (or LLM_API_KEY) is required for --live")
		}
		embedder, err = app.NewEmbedder(cfg)
		if err != nil {
			logger.Fatal("failed to create embedder", "err", err)
		}
		generator = app.NewGenerator(cfg, logger)
	}

	fmt.Println("========================================")
	fmt.Println("MedRAG Benchmarks")
	fmt.Println("========================================")

	runner := ragas.NewBenchmarkRunner(embedder, generator, *verbose)
	ctx := context.Background()

	var results []ragas.TestResult
	if *testID == "" {
		var err error
		results, err = runner.RunAllTests(ctx)
		if err != nil {
			logger.Fatal("benchmark failed", "err", err)
		}
	} else {
		scenario, ok := ragas.GetTest(*testID)
		if !ok {
			ids := make([]string, 0)
			for _, s := range ragas.GetAllTests() {
				ids = append(ids, s.ID)
			}
			logger.Fatal("unknown test ID", "id", *testID, "valid", strings.Join(ids, ", "))
		}

		fmt.Printf("Running test: %s\n", scenario.Name)
		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			logger.Fatal("test failed", "id", *testID, "err", err)
		}
		results = []ragas.TestResult{result}
	}

	summary := ragas.Summarize(results)
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Faithfulness:   %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Overall:        %.2f\n", result.OverallScore)
		fmt.Printf("  Status:         %s\n", result.Status)
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	fmt.Printf("Passed: %d\n", summary.Passed)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		logger.Fatal("failed to export results", "err", err)
	}
	fmt.Printf("Results exported to: %s\n", *outputPath)

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
