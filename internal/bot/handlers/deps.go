package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/broadcast"
	"github.com/darkjarvis/darkjarvis/internal/config"
	"github.com/darkjarvis/darkjarvis/internal/flow"
	"github.com/darkjarvis/darkjarvis/internal/metrics"
	"github.com/darkjarvis/darkjarvis/internal/persona"
	"github.com/darkjarvis/darkjarvis/internal/session"
	"github.com/darkjarvis/darkjarvis/internal/store"
	"github.com/darkjarvis/darkjarvis/internal/weather"
)

// Sender is the subset of the Telegram API the handlers use. *bot.Bot
// satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

var _ Sender = (*bot.Bot)(nil)

// Completer produces AI replies.
type Completer interface {
	// Complete always returns text to show, falling back on failure.
	Complete(ctx context.Context, msgs []ai.Message) string
	// TryComplete reports failures to the caller.
	TryComplete(ctx context.Context, msgs []ai.Message) (string, error)
}

// WeatherClient looks up current weather.
type WeatherClient interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// Broadcaster delivers one text to many chats.
type Broadcaster interface {
	Send(ctx context.Context, source string, targets []int64, text string) broadcast.Result
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Session     *session.State
	Store       store.Store
	AI          Completer
	Persona     persona.Persona
	Flows       *flow.Manager
	Weather     WeatherClient
	Broadcaster Broadcaster
	Metrics     *metrics.Metrics
	// BotInfo identifies the bot for mention detection. It is filled from
	// getMe at startup.
	BotInfo *models.User
}
