// ABOUTME: Embedder contract plus batched, order-preserving bulk embedding
// ABOUTME: Every embedder returns L2-normalised float32 vectors of a fixed dimension
package llm

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Embedder converts text into fixed-length vectors. Ingestion and querying
// must use the same embedder configuration or distances are meaningless.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// EmbedAll embeds texts in batches of batchSize, running up to concurrency
// batches at once. The result is index-aligned with texts.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize, concurrency int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			vecs, err := e.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding batch [%d:%d]: %w", start, end, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embedding batch [%d:%d]: got %d vectors for %d inputs", start, end, len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
