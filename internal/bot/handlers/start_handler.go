package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and shows the main menu.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", userID)

	reply(ctx, s, log, update.Message.Chat.ID,
		h.deps.Persona.Sign(welcomeText(h.deps)),
		models.ParseModeHTML,
		mainKeyboard(h.deps.Session.IsUnfiltered(userID)),
	)
}

func welcomeText(deps HandlerDeps) string {
	return fmt.Sprintf(deps.Config.Messages.Welcome, html.EscapeString(deps.Persona.Name))
}
