package handlers

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewChatHandler returns the default handler. It feeds pending admin flows,
// counts every text message and answers private messages and group
// messages addressed to the bot.
func NewChatHandler(deps HandlerDeps) HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || strings.TrimSpace(msg.Text) == "" {
		log.DebugContext(ctx, "Ignoring update without text from a user", "update_id", update.ID)
		return
	}
	if strings.HasPrefix(msg.Text, "/") {
		log.DebugContext(ctx, "Ignoring unknown command", "text", truncate(msg.Text, 32))
		return
	}

	userID := msg.From.ID
	if msg.Chat.Type == models.ChatTypePrivate && h.deps.Config.IsAdmin(userID) && h.deps.Flows.AwaitingText(userID) {
		flowHandler{h.deps}.Text(ctx, s, update)
		return
	}

	h.deps.Session.RecordMessage(userID, displayName(msg.From), msg.Text)

	if !h.shouldHandle(msg) {
		log.DebugContext(ctx, "Bot not addressed, message only counted", "chat_id", msg.Chat.ID)
		return
	}

	_, _ = s.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: msg.Chat.ID, Action: models.ChatActionTyping})

	prompt := h.stripMention(msg.Text)
	answerText := h.deps.AI.Complete(ctx, h.deps.Persona.Chat(prompt, h.deps.Session.IsUnfiltered(userID)))

	params := &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   h.deps.Persona.Sign(answerText),
	}
	if msg.Chat.Type != models.ChatTypePrivate {
		params.ReplyParameters = &models.ReplyParameters{MessageID: msg.ID}
	}
	sent, err := s.SendMessage(ctx, params)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", msg.Chat.ID)
		return
	}
	log.InfoContext(ctx, "Sent reply", "chat_id", msg.Chat.ID, "message_id", sent.ID)
}

// shouldHandle reports whether the message is addressed to the bot: any
// private message, and in groups a mention of the bot or a reply to it.
func (h chatHandler) shouldHandle(msg *models.Message) bool {
	if msg.Chat.Type == models.ChatTypePrivate || !h.deps.Config.Bot.GroupMentionsOnly {
		return true
	}

	info := h.deps.BotInfo
	if info == nil {
		return false
	}
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == info.ID {
		return true
	}
	if info.Username == "" {
		return false
	}

	username := strings.ToLower(info.Username)
	for _, w := range strings.Fields(strings.ToLower(msg.Text)) {
		if strings.TrimFunc(w, unicode.IsPunct) == username {
			return true
		}
	}
	return false
}

// stripMention removes @botname from the prompt.
func (h chatHandler) stripMention(text string) string {
	if h.deps.BotInfo == nil || h.deps.BotInfo.Username == "" {
		return text
	}
	mention := "@" + strings.ToLower(h.deps.BotInfo.Username)
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if strings.ToLower(strings.TrimFunc(f, func(r rune) bool { return unicode.IsPunct(r) && r != '@' })) == mention {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
