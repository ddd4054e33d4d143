package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// reply sends a new message. An empty parseMode sends plain text.
func reply(ctx context.Context, s Sender, log *slog.Logger, chatID int64, text string, parseMode models.ParseMode, markup models.ReplyMarkup) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// callbackTarget returns the chat and message the callback button belongs to.
func callbackTarget(cq *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID, cq.Message.Message.ID, true
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID, cq.Message.InaccessibleMessage.MessageID, true
	}
	return 0, 0, false
}

// answer acknowledges a callback so the client stops its spinner.
func answer(ctx context.Context, s Sender, log *slog.Logger, cq *models.CallbackQuery, text string, alert bool) {
	_, err := s.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err, "callback_query_id", cq.ID)
	}
}

// respond answers a callback by replacing the text of the message holding
// the button. It falls back to a new message when editing fails.
func respond(ctx context.Context, s Sender, log *slog.Logger, cq *models.CallbackQuery, text string, parseMode models.ParseMode, markup models.ReplyMarkup) {
	chatID, messageID, ok := callbackTarget(cq)
	if !ok {
		chatID = cq.From.ID
	}
	if ok && messageID != 0 {
		_, err := s.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ParseMode:   parseMode,
			ReplyMarkup: markup,
		})
		if err == nil {
			return
		}
		log.WarnContext(ctx, "Failed to edit message, sending a new one", "error", err, "chat_id", chatID)
	}
	reply(ctx, s, log, chatID, text, parseMode, markup)
}

// commandArgs returns the text after the command word.
func commandArgs(text string) string {
	_, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(args)
}
