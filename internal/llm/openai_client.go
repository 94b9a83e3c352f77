// ABOUTME: OpenAI embedding client used for chunk and question vectors
// ABOUTME: Uses text-embedding-3-small by default; one attempt per call, no retries
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is the default model for embeddings
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// Native dimensions for OpenAI embedding models
var modelDimensions = map[string]int{
	string(openai.SmallEmbedding3): 1536,
	string(openai.LargeEmbedding3): 3072,
	string(openai.AdaEmbeddingV2):  1536,
}

// ClientConfig holds configuration for the OpenAI embedding client
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions requests shortened vectors from text-embedding-3-* models; 0 keeps the native size
	Dimensions int
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey: apiKey,
		Model:  DefaultEmbeddingModel,
	}
}

// OpenAIEmbedder wraps the OpenAI embeddings API. For models it does not
// know, the dimension is taken from the first successful response.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	requestDim int

	mu         sync.RWMutex
	dimensions int
}

// NewOpenAIEmbedder creates an embedder with the given API key using default configuration
func NewOpenAIEmbedder(apiKey string) (*OpenAIEmbedder, error) {
	return NewOpenAIEmbedderWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIEmbedderWithConfig creates an embedder with custom configuration
func NewOpenAIEmbedderWithConfig(config *ClientConfig) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := config.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	dim := config.Dimensions
	requestDim := 0
	if dim > 0 && strings.HasPrefix(model, "text-embedding-3") {
		requestDim = dim
	} else {
		var ok bool
		if dim, ok = modelDimensions[model]; !ok {
			dim = config.Dimensions
		}
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dim,
		requestDim: requestDim,
	}, nil
}

// Dimension returns the expected vector length, or 0 while it is still unknown
func (e *OpenAIEmbedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimensions
}

func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed generates one normalised vector per input, in input order
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.requestDim,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		out[item.Index] = Normalize(item.Embedding)
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
		if len(v) != len(out[0]) {
			return nil, fmt.Errorf("invalid embedding dimension: input 0 has %d, input %d has %d", len(out[0]), i, len(v))
		}
	}
	if err := e.checkDimension(len(out[0])); err != nil {
		return nil, err
	}
	return out, nil
}

// checkDimension compares n with the known dimension, recording it if unset
func (e *OpenAIEmbedder) checkDimension(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimensions == 0 {
		e.dimensions = n
		return nil
	}
	if n != e.dimensions {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d", e.dimensions, n)
	}
	return nil
}
