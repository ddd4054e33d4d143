// Package ai dispatches chat completions to the configured AI provider.
//
// Each provider is an adapter registered by name in a Registry. The
// Dispatcher picks the adapter from the live provider selection, applies the
// per-call timeout and turns failures into user-facing fallback text.
package ai

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrUnknownProvider is returned for provider names with no registered adapter.
	ErrUnknownProvider = errors.New("unknown AI provider")
	// ErrNotConfigured is returned when the provider has no credential.
	ErrNotConfigured = errors.New("AI provider not configured")
	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("AI provider returned an empty response")
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Provider is an AI backend adapter.
type Provider interface {
	// Name is the registry key, e.g. "openai".
	Name() string
	// Configured reports whether a credential is present. Complete must not
	// be called on an unconfigured provider.
	Configured() bool
	// Complete returns the assistant's reply to msgs.
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// Registry maps provider names to adapters.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry holding the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get looks up a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
