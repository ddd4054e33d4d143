package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"
)

// adminHandler serves the admin panel. All routes sit behind AdminOnly.
type adminHandler struct {
	deps HandlerDeps
}

func (h adminHandler) panelText() string {
	st := h.deps.Session.Stats()
	return fmt.Sprintf(h.deps.Config.Messages.AdminPanel,
		html.EscapeString(h.deps.Session.Provider()), st.TotalUsers, st.TotalGroups)
}

func (h adminHandler) panelKeyboard() *models.InlineKeyboardMarkup {
	return adminKeyboard(h.deps.Session.Providers(), h.deps.Session.Provider())
}

// Panel shows the admin panel for /admin and the admin button.
func (h adminHandler) Panel(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin")

	if cq := update.CallbackQuery; cq != nil {
		answer(ctx, s, log, cq, "", false)
		respond(ctx, s, log, cq, h.panelText(), models.ParseModeHTML, h.panelKeyboard())
		return
	}
	if update.Message != nil {
		reply(ctx, s, log, update.Message.Chat.ID, h.panelText(), models.ParseModeHTML, h.panelKeyboard())
	}
}

// Save flushes session state to the store.
func (h adminHandler) Save(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_save")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	text := h.deps.Config.Messages.Saved
	if err := h.deps.Session.Flush(ctx, h.deps.Store); err != nil {
		log.ErrorContext(ctx, "Manual save failed", "error", err)
		text = h.deps.Config.Messages.SaveFailed
	} else {
		log.InfoContext(ctx, "Manual save completed", "user_id", cq.From.ID)
	}
	answer(ctx, s, log, cq, text, false)
}

// Groups lists every known group.
func (h adminHandler) Groups(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_groups")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)

	groups := h.deps.Session.Groups()
	if len(groups) == 0 {
		respond(ctx, s, log, cq, h.deps.Config.Messages.NoGroups, models.ParseModeHTML, h.panelKeyboard())
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Gruplar (%d)</b>\n", len(groups))
	for _, g := range groups {
		fmt.Fprintf(&b, "\n• %s <code>%d</code>", html.EscapeString(groupLabel(g)), g.ID)
	}
	respond(ctx, s, log, cq, b.String(), models.ParseModeHTML, h.panelKeyboard())
}

// SelectProvider switches the active AI provider.
func (h adminHandler) SelectProvider(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "admin_provider")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	name := strings.TrimPrefix(cq.Data, CallbackProvider)
	if err := h.deps.Session.SelectProvider(name); err != nil {
		log.WarnContext(ctx, "Provider selection rejected", "provider", name, "error", err)
		answer(ctx, s, log, cq, h.deps.Config.Messages.GeneralError, true)
		return
	}

	answer(ctx, s, log, cq, "", false)
	text := fmt.Sprintf(h.deps.Config.Messages.ProviderSelected, html.EscapeString(name)) + "\n\n" + h.panelText()
	respond(ctx, s, log, cq, text, models.ParseModeHTML, h.panelKeyboard())
}
