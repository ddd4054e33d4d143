package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var _ Provider = (*OpenAICompatible)(nil)

// OpenAICompatible speaks the chat completions API. It serves both OpenAI
// and DeepSeek, which differ only in base URL and model.
type OpenAICompatible struct {
	name        string
	model       string
	temperature float32
	client      *openai.Client
}

// OpenAICompatibleOptions configures an OpenAICompatible provider.
type OpenAICompatibleOptions struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// HTTPClient overrides the default client. Optional.
	HTTPClient *http.Client
}

// NewOpenAICompatible creates the adapter. An empty APIKey yields an
// unconfigured provider.
func NewOpenAICompatible(opts OpenAICompatibleOptions) *OpenAICompatible {
	p := &OpenAICompatible{
		name:        opts.Name,
		model:       opts.Model,
		temperature: opts.Temperature,
	}
	if opts.APIKey == "" {
		return p
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	p.client = openai.NewClientWithConfig(cfg)
	return p
}

// Name implements Provider.
func (p *OpenAICompatible) Name() string { return p.name }

// Configured implements Provider.
func (p *OpenAICompatible) Configured() bool { return p.client != nil }

// Complete implements Provider.
func (p *OpenAICompatible) Complete(ctx context.Context, msgs []Message) (string, error) {
	if p.client == nil {
		return "", ErrNotConfigured
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
