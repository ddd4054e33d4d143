package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot/models"

	"github.com/darkjarvis/darkjarvis/internal/weather"
)

// NewWeatherHandler returns a handler for /weather <city>.
func NewWeatherHandler(deps HandlerDeps) HandlerFunc {
	return weatherHandler{deps}.Handle
}

type weatherHandler struct {
	deps HandlerDeps
}

func (h weatherHandler) Handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "weather")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	city := commandArgs(update.Message.Text)
	if city == "" {
		reply(ctx, s, log, chatID, msgs.WeatherUsage, "", nil)
		return
	}

	report, err := h.deps.Weather.Current(ctx, city)
	if err != nil {
		text := msgs.GeneralError
		switch {
		case errors.Is(err, weather.ErrNotConfigured):
			text = msgs.NotConfigured
		case errors.Is(err, weather.ErrCityNotFound):
			text = msgs.WeatherNotFound
		case errors.Is(err, weather.ErrInvalidKey):
			log.ErrorContext(ctx, "Weather API rejected the key", "error", err)
			text = msgs.WeatherInvalidKey
		default:
			log.ErrorContext(ctx, "Weather lookup failed", "city", city, "error", err)
		}
		reply(ctx, s, log, chatID, text, "", nil)
		return
	}

	reply(ctx, s, log, chatID, h.deps.Persona.Sign(report.Format()), "", nil)
}
