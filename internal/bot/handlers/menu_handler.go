package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/persona"
	"github.com/darkjarvis/darkjarvis/internal/session"
)

// menuHandler serves the main menu buttons and /stats.
type menuHandler struct {
	deps HandlerDeps
}

// Main shows the welcome text and main menu again.
func (h menuHandler) Main(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "menu")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)
	respond(ctx, s, log, cq, h.deps.Persona.Sign(welcomeText(h.deps)), models.ParseModeHTML,
		mainKeyboard(h.deps.Session.IsUnfiltered(cq.From.ID)))
}

// ToggleMode flips the caller's unfiltered mode.
func (h menuHandler) ToggleMode(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "mode")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)

	on := h.deps.Session.ToggleMode(cq.From.ID)
	log.InfoContext(ctx, "Mode toggled", "user_id", cq.From.ID, "unfiltered", on)

	text := h.deps.Config.Messages.ModeOff
	if on {
		text = h.deps.Config.Messages.ModeOn
	}
	respond(ctx, s, log, cq, h.deps.Persona.Sign(text), models.ParseModeHTML, mainKeyboard(on))
}

// Fun tells an AI-generated joke, or a canned one when no provider answers.
func (h menuHandler) Fun(ctx context.Context, s Sender, update *models.Update) {
	h.feature(ctx, s, update, persona.FeatureFun, persona.CannedJoke)
}

// Fortune reads an AI-generated tarot card, or a canned fortune.
func (h menuHandler) Fortune(ctx context.Context, s Sender, update *models.Update) {
	h.feature(ctx, s, update, persona.FeatureFortune, persona.CannedFortune)
}

func (h menuHandler) feature(ctx context.Context, s Sender, update *models.Update, f persona.Feature, canned func() string) {
	log := h.deps.Logger.With("handler", string(f))
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)

	text, err := h.deps.AI.TryComplete(ctx, h.deps.Persona.Feature(f, h.deps.Session.IsUnfiltered(cq.From.ID)))
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			log.DebugContext(ctx, "AI not configured, using canned text")
		} else {
			log.WarnContext(ctx, "AI feature failed, using canned text", "error", err)
		}
		text = canned()
	}
	respond(ctx, s, log, cq, h.deps.Persona.Sign(text), "", backKeyboard())
}

// Music announces the upcoming music feature.
func (h menuHandler) Music(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "music")
	cq := update.CallbackQuery
	if cq == nil {
		return
	}
	answer(ctx, s, log, cq, "", false)
	respond(ctx, s, log, cq, h.deps.Persona.Sign(h.deps.Config.Messages.MusicSoon), models.ParseModeHTML, backKeyboard())
}

// Stats shows chat statistics, for both /stats and the analysis button.
func (h menuHandler) Stats(ctx context.Context, s Sender, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")
	text := h.deps.Persona.Sign(formatStats(h.deps.Session.Stats()))

	if cq := update.CallbackQuery; cq != nil {
		answer(ctx, s, log, cq, "", false)
		respond(ctx, s, log, cq, text, models.ParseModeHTML, backKeyboard())
		return
	}
	if update.Message != nil {
		reply(ctx, s, log, update.Message.Chat.ID, text, models.ParseModeHTML, nil)
	}
}

func formatStats(st session.Stats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Sohbet Verileri</b>\n")
	fmt.Fprintf(&b, "- Toplam Mesaj: %d\n", st.TotalMessages)
	fmt.Fprintf(&b, "- Kullanıcı: %d | Grup: %d\n", st.TotalUsers, st.TotalGroups)
	if st.MostActive != nil {
		name := st.MostActive.Name
		if name == "" {
			name = "Bilinmeyen"
		}
		fmt.Fprintf(&b, "- En Aktif: %s (%d mesaj)\n", html.EscapeString(name), st.MostActive.MessageCount)
	} else {
		b.WriteString("- En Aktif: Kimse (0 mesaj)\n")
	}
	if len(st.TopWords) > 0 {
		words := make([]string, 0, len(st.TopWords))
		for _, w := range st.TopWords {
			words = append(words, fmt.Sprintf("%s (%d)", html.EscapeString(w.Word), w.Count))
		}
		fmt.Fprintf(&b, "- Popüler Kelimeler: %s\n", strings.Join(words, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
