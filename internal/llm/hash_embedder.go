// ABOUTME: Deterministic offline embedder based on signed feature hashing
// ABOUTME: Used when no embedding API is configured and throughout the tests
package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultHashDimension is used when no dimension is configured
const DefaultHashDimension = 384

// HashEmbedder maps lower-cased word tokens into a fixed number of buckets.
// The same text always yields the same vector.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash embedder; dim <= 0 selects DefaultHashDimension
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDimension
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimension() int { return h.dim }

func (h *HashEmbedder) Model() string { return fmt.Sprintf("hash-%d", h.dim) }

// Embed never fails unless the context is already cancelled
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dim)
	for _, tok := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		sum := f.Sum32()
		bucket := int(sum % uint32(h.dim))
		// top bit of the hash picks the sign
		if sum&0x80000000 != 0 {
			v[bucket]--
		} else {
			v[bucket]++
		}
	}
	return Normalize(v)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
