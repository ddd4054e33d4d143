package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
)

var _ Provider = (*Ollama)(nil)

// Ollama adapts a self-hosted Ollama server. Its credential is the host URL.
type Ollama struct {
	model       string
	temperature float32
	client      *ollama.Client
}

// NewOllama creates the adapter. An empty host yields an unconfigured provider.
func NewOllama(host, model string, temperature float32, hc *http.Client) (*Ollama, error) {
	o := &Ollama{model: model, temperature: temperature}
	if host == "" {
		return o, nil
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	o.client = ollama.NewClient(u, hc)
	return o, nil
}

// Name implements Provider.
func (o *Ollama) Name() string { return "ollama" }

// Configured implements Provider.
func (o *Ollama) Configured() bool { return o.client != nil }

// Complete implements Provider.
func (o *Ollama) Complete(ctx context.Context, msgs []Message) (string, error) {
	if o.client == nil {
		return "", ErrNotConfigured
	}

	chat := make([]ollama.Message, 0, len(msgs))
	for _, m := range msgs {
		chat = append(chat, ollama.Message{Role: m.Role, Content: m.Content})
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.model,
		Messages: chat,
		Stream:   &stream,
		Options:  map[string]any{"temperature": o.temperature},
	}

	var reply strings.Builder
	err := o.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		reply.WriteString(cr.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return reply.String(), nil
}
