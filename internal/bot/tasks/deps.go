// Package tasks implements the scheduled jobs of the bot: daily group posts,
// periodic autosave and expiry of abandoned admin flows.
package tasks

import (
	"context"
	"log/slog"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/broadcast"
	"github.com/darkjarvis/darkjarvis/internal/flow"
	"github.com/darkjarvis/darkjarvis/internal/persona"
	"github.com/darkjarvis/darkjarvis/internal/session"
	"github.com/darkjarvis/darkjarvis/internal/store"
)

// Generator reports AI failures so a task can skip the affected chat.
type Generator interface {
	TryComplete(ctx context.Context, msgs []ai.Message) (string, error)
}

// Broadcaster delivers per-chat generated text.
type Broadcaster interface {
	SendEach(ctx context.Context, source string, targets []int64, gen broadcast.Generator) broadcast.Result
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger      *slog.Logger
	Session     *session.State
	Store       store.Store
	AI          Generator
	Persona     persona.Persona
	Broadcaster Broadcaster
	Flows       *flow.Manager
}
