package ai

import (
	"context"
	"fmt"

	"github.com/darkjarvis/darkjarvis/internal/config"
)

// NewRegistryFromConfig builds a registry with every supported provider.
// Providers without credentials are registered unconfigured.
func NewRegistryFromConfig(ctx context.Context, cfg config.AIConfig) (*Registry, error) {
	gemini, err := NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("gemini provider: %w", err)
	}
	ollama, err := NewOllama(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Temperature, nil)
	if err != nil {
		return nil, fmt.Errorf("ollama provider: %w", err)
	}

	return NewRegistry(
		NewOpenAICompatible(OpenAICompatibleOptions{
			Name:        "openai",
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.Temperature,
		}),
		NewOpenAICompatible(OpenAICompatibleOptions{
			Name:        "deepseek",
			APIKey:      cfg.DeepSeek.APIKey,
			BaseURL:     cfg.DeepSeek.BaseURL,
			Model:       cfg.DeepSeek.Model,
			Temperature: cfg.Temperature,
		}),
		gemini,
		ollama,
	), nil
}
