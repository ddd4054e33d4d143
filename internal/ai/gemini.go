package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var _ Provider = (*Gemini)(nil)

// Gemini adapts the Google GenAI SDK.
type Gemini struct {
	model       string
	temperature float32
	client      *genai.Client
}

// NewGemini creates the adapter. An empty apiKey yields an unconfigured
// provider and no SDK client is built.
func NewGemini(ctx context.Context, apiKey, model string, temperature float32) (*Gemini, error) {
	g := &Gemini{model: model, temperature: temperature}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

// Configured implements Provider.
func (g *Gemini) Configured() bool { return g.client != nil }

// Complete implements Provider. System messages become the system
// instruction and assistant turns use the model role.
func (g *Gemini) Complete(ctx context.Context, msgs []Message) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}

	system, contents := geminiContents(msgs)
	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}

func geminiContents(msgs []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
