// ABOUTME: Answer generation over any OpenAI-compatible chat completions API
// ABOUTME: Defaults to Gemini's compatibility endpoint; single attempt, optional timeout
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator turns a fully assembled prompt into answer text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoAPIKey is returned by a generator constructed without credentials
var ErrNoAPIKey = errors.New("LLM API key not configured")

// GeneratorConfig holds configuration for the chat generator
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatGenerator sends the prompt as a single user message
type ChatGenerator struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewChatGenerator builds a generator. The SDK's automatic retries are
// disabled; every question reaches the model at most once.
func NewChatGenerator(cfg GeneratorConfig) (*ChatGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("LLM model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ChatGenerator{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Model returns the configured chat model name
func (g *ChatGenerator) Model() string { return g.model }

// Generate returns the trimmed text of the first completion choice
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// UnavailableGenerator always fails with the configured reason. It stands in
// when no API key is set so questions degrade to an error string.
type UnavailableGenerator struct {
	Err error
}

func (u UnavailableGenerator) Generate(context.Context, string) (string, error) {
	if u.Err == nil {
		return "", ErrNoAPIKey
	}
	return "", u.Err
}
