// Package handlers contains Telegram bot command, callback and message
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly rejects updates from anyone but the configured admin. Messages
// get a forbidden reply and callbacks a forbidden alert. An unset admin id
// rejects everyone.
func AdminOnly(deps HandlerDeps) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, s Sender, update *models.Update) {
			log := deps.Logger.With("middleware", "AdminOnly")

			userID, ok := senderID(update)
			if ok && deps.Config.IsAdmin(userID) {
				next(ctx, s, update)
				return
			}

			log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID)
			switch {
			case update.CallbackQuery != nil:
				_, err := s.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
					CallbackQueryID: update.CallbackQuery.ID,
					Text:            deps.Config.Messages.Forbidden,
					ShowAlert:       true,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to answer unauthorized callback", "error", err)
				}
			case update.Message != nil:
				_, err := s.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   deps.Config.Messages.Forbidden,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", update.Message.Chat.ID)
				}
			}
		}
	}
}

// TrackSession registers every sender and every group chat the bot sees
// before any handler runs.
func TrackSession(deps HandlerDeps) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			trackUpdate(ctx, deps, update)
			next(ctx, b, update)
		}
	}
}

func trackUpdate(ctx context.Context, deps HandlerDeps, update *models.Update) {
	log := deps.Logger.With("middleware", "TrackSession")

	switch {
	case update.Message != nil:
		deps.Metrics.Update("message")
		if u := update.Message.From; u != nil && !u.IsBot {
			deps.Session.GetOrCreateUser(u.ID, displayName(u))
		}
		recordChat(ctx, deps, update.Message.Chat)
	case update.CallbackQuery != nil:
		deps.Metrics.Update("callback_query")
		u := update.CallbackQuery.From
		deps.Session.GetOrCreateUser(u.ID, displayName(&u))
	case update.MyChatMember != nil:
		deps.Metrics.Update("my_chat_member")
		log.InfoContext(ctx, "Bot membership changed",
			"chat_id", update.MyChatMember.Chat.ID,
			"status", update.MyChatMember.NewChatMember.Type,
		)
		recordChat(ctx, deps, update.MyChatMember.Chat)
	case update.ChannelPost != nil:
		deps.Metrics.Update("channel_post")
		recordChat(ctx, deps, update.ChannelPost.Chat)
	default:
		deps.Metrics.Update("other")
	}
}

func recordChat(ctx context.Context, deps HandlerDeps, chat models.Chat) {
	if !isGroupChat(chat) {
		return
	}
	if deps.Session.RecordGroup(chat.ID, chat.Title) {
		deps.Logger.InfoContext(ctx, "Group recorded", "chat_id", chat.ID, "title", chat.Title)
	}
}

func isGroupChat(chat models.Chat) bool {
	switch chat.Type {
	case models.ChatTypeGroup, models.ChatTypeSupergroup, models.ChatTypeChannel:
		return true
	}
	return false
}

func senderID(update *models.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	}
	return 0, false
}

func displayName(u *models.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	}
	return ""
}
