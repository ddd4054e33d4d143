package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/darkjarvis/darkjarvis/internal/flow"
)

// Broadcast sources used for logging and metrics.
const (
	sourceGroupMessage = "admin_group_message"
	sourceBroadcast    = "admin_broadcast"
)

// flowHandler drives the admin group-message and broadcast flows.
type flowHandler struct {
	deps HandlerDeps
}

// StartGroupMessage asks the admin to choose a target group.
func (h flowHandler) StartGroupMessage(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_group_message")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)

	groups := h.deps.Session.Groups()
	if len(groups) == 0 {
		respond(ctx, s, log, cq, h.deps.Config.Messages.NoGroups, models.ParseModeHTML, backKeyboard())
		return
	}
	if _, err := h.deps.Flows.Start(cq.From.ID, flow.KindGroupMessage); err != nil {
		log.ErrorContext(ctx, "Failed to start flow", "error", err)
		return
	}
	respond(ctx, s, log, cq, h.deps.Config.Messages.ChooseGroup, models.ParseModeHTML, groupKeyboard(groups))
}

// StartBroadcast asks the admin for the announcement text.
func (h flowHandler) StartBroadcast(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_broadcast")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)

	if _, err := h.deps.Flows.Start(cq.From.ID, flow.KindBroadcast); err != nil {
		log.ErrorContext(ctx, "Failed to start flow", "error", err)
		return
	}
	respond(ctx, s, log, cq, h.deps.Config.Messages.AskText, models.ParseModeHTML, nil)
}

// ChooseGroup records the group picked from the keyboard.
func (h flowHandler) ChooseGroup(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_choose_group")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, CallbackGroup), 10, 64)
	if err != nil {
		log.WarnContext(ctx, "Malformed group callback", "data", cq.Data)
		answer(ctx, s, log, cq, h.deps.Config.Messages.GeneralError, true)
		return
	}
	g, ok := h.deps.Session.Group(id)
	if !ok {
		log.WarnContext(ctx, "Unknown group chosen", "chat_id", id)
		answer(ctx, s, log, cq, h.deps.Config.Messages.GeneralError, true)
		return
	}

	if _, err := h.deps.Flows.ChooseGroup(cq.From.ID, g.ID, groupLabel(g)); err != nil {
		h.flowError(ctx, s, cq, err)
		return
	}
	answer(ctx, s, log, cq, "", false)
	respond(ctx, s, log, cq, h.deps.Config.Messages.AskText, models.ParseModeHTML, nil)
}

// Text consumes the admin's message as flow input and shows the preview.
func (h flowHandler) Text(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_text")
	msg := update.Message
	chatID := msg.Chat.ID

	f, err := h.deps.Flows.SubmitText(msg.From.ID, msg.Text)
	if err != nil {
		if errors.Is(err, flow.ErrExpired) {
			reply(ctx, s, log, chatID, h.deps.Config.Messages.FlowExpired, "", nil)
			return
		}
		log.WarnContext(ctx, "Flow rejected text", "error", err)
		reply(ctx, s, log, chatID, h.deps.Config.Messages.GeneralError, "", nil)
		return
	}

	preview := fmt.Sprintf(h.deps.Config.Messages.Confirm, html.EscapeString(h.target(f)), html.EscapeString(f.Text))
	reply(ctx, s, log, chatID, preview, models.ParseModeHTML, confirmKeyboard())
}

func (h flowHandler) target(f flow.Flow) string {
	if f.Kind == flow.KindGroupMessage {
		return f.GroupTitle
	}
	return "tüm gruplar ve kullanıcılar"
}

// Confirm executes the flow.
func (h flowHandler) Confirm(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_confirm")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	f, err := h.deps.Flows.Confirm(cq.From.ID)
	if err != nil {
		h.flowError(ctx, s, cq, err)
		return
	}
	answer(ctx, s, log, cq, "", false)

	var targets []int64
	source := sourceBroadcast
	switch f.Kind {
	case flow.KindGroupMessage:
		source = sourceGroupMessage
		targets = []int64{f.GroupID}
	case flow.KindBroadcast:
		targets = h.broadcastTargets()
	}

	log.InfoContext(ctx, "Executing admin flow", "kind", f.Kind, "targets", len(targets))
	res := h.deps.Broadcaster.Send(ctx, source, targets, f.Text)
	respond(ctx, s, log, cq, fmt.Sprintf(h.deps.Config.Messages.Delivered, res.Sent, res.Failed), models.ParseModeHTML, backKeyboard())
}

// broadcastTargets returns every known group followed by every known user.
func (h flowHandler) broadcastTargets() []int64 {
	groups := h.deps.Session.Groups()
	users := h.deps.Session.Users()
	targets := make([]int64, 0, len(groups)+len(users))
	for _, g := range groups {
		targets = append(targets, g.ID)
	}
	for _, u := range users {
		targets = append(targets, u.ID)
	}
	return targets
}

// Cancel aborts the admin's flow, for /cancel and the cancel button.
func (h flowHandler) Cancel(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "flow_cancel")

	userID, ok := senderID(update)
	if !ok {
		return
	}
	text := h.deps.Config.Messages.NothingToCancel
	if h.deps.Flows.Cancel(userID) {
		log.InfoContext(ctx, "Flow cancelled", "user_id", userID)
		text = h.deps.Config.Messages.Cancelled
	}

	if cq := update.CallbackQuery; cq != nil {
		answer(ctx, s, log, cq, "", false)
		respond(ctx, s, log, cq, text, models.ParseModeHTML, backKeyboard())
		return
	}
	if update.Message != nil {
		reply(ctx, s, log, update.Message.Chat.ID, text, "", nil)
	}
}

func (h flowHandler) flowError(ctx context.Context, s Sender, cq *models.CallbackQuery, err error) {
	log := h.deps.Logger.With("handler", "flow")
	text := h.deps.Config.Messages.GeneralError
	switch {
	case errors.Is(err, flow.ErrExpired):
		text = h.deps.Config.Messages.FlowExpired
	case errors.Is(err, flow.ErrNoFlow):
		text = h.deps.Config.Messages.NothingToCancel
	default:
		log.WarnContext(ctx, "Flow rejected event", "error", err, "data", cq.Data)
	}
	answer(ctx, s, log, cq, text, true)
}
