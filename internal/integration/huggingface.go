package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/valter-silva-au/iar/internal/core"
)

// DefaultHuggingFaceURL is the OpenAI-compatible Hugging Face inference router.
const DefaultHuggingFaceURL = "https://router.huggingface.co/v1"

// ErrMissingAPIKey is returned when a hosted backend is built without a key.
var ErrMissingAPIKey = errors.New("hosted inference API key is not set")

// HostedConfig configures a HostedBackend.
type HostedConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default transport. Used by tests.
	HTTPClient *http.Client
}

// HostedBackend sends prompts to a hosted chat-completions endpoint, by
// default the Hugging Face router.
type HostedBackend struct {
	client openai.Client
	model  string
}

// NewHostedBackend creates a HostedBackend. An empty API key is an error
// since the hosted tier is only enabled when a credential is configured.
func NewHostedBackend(cfg HostedConfig) (*HostedBackend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	model := cfg.Model
	if model == "" {
		model = "meta-llama/Llama-3.1-8B-Instruct:novita"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(1),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &HostedBackend{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name implements core.EnhancerBackend.
func (b *HostedBackend) Name() string {
	return "hosted:" + b.model
}

// RetryOnFailure keeps the hosted backend enabled after errors; network
// hiccups are retried on the next task.
func (b *HostedBackend) RetryOnFailure() bool {
	return true
}

// Generate implements core.EnhancerBackend.
func (b *HostedBackend) Generate(ctx context.Context, prompt string, opts core.GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxOutputTokens))
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("hosted chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in hosted response")
	}
	return resp.Choices[0].Message.Content, nil
}
