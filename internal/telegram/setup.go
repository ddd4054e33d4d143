// Package telegram creates the go-telegram/bot client and registers the
// handler table on it.
package telegram

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-telegram/bot"

	"github.com/darkjarvis/darkjarvis/internal/bot/handlers"
)

// Registrar is the registration half of *bot.Bot.
type Registrar interface {
	RegisterHandler(handlerType bot.HandlerType, pattern string, matchType bot.MatchType, f bot.HandlerFunc, m ...bot.Middleware) string
}

var _ Registrar = (*bot.Bot)(nil)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

// RegisterHandlers registers every handler with its middleware applied.
// Handlers are registered in key order so logs are stable between runs.
func RegisterHandlers(r Registrar, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if r == nil {
		return errors.New("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	keys := make([]string, 0, len(registeredHandlers))
	for k := range registeredHandlers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	registered := 0
	for _, key := range keys {
		rh := registeredHandlers[key]
		if rh.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", rh.Pattern)
			continue
		}

		final := handlers.Chain(rh.Handler, rh.Middleware...).Bot()
		r.RegisterHandler(rh.HandlerType, rh.Pattern, rh.MatchType, final)
		registered++
		log.Debug("Registered handler", "name", key, "pattern", rh.Pattern, "match_type", rh.MatchType, "middleware_count", len(rh.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", registered)
	return nil
}
