package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkjarvis/darkjarvis/internal/ai"
	"github.com/darkjarvis/darkjarvis/internal/broadcast"
	"github.com/darkjarvis/darkjarvis/internal/config"
	"github.com/darkjarvis/darkjarvis/internal/flow"
	"github.com/darkjarvis/darkjarvis/internal/persona"
	"github.com/darkjarvis/darkjarvis/internal/session"
	"github.com/darkjarvis/darkjarvis/internal/store"
	"github.com/darkjarvis/darkjarvis/internal/weather"
)

const (
	adminID   int64 = 1000
	userID    int64 = 42
	groupChat int64 = -100500
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []*bot.SendMessageParams
	edited   []*bot.EditMessageTextParams
	answered []*bot.AnswerCallbackQueryParams
	editErr  error
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return &models.Message{ID: len(f.sent)}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edited = append(f.edited, p)
	return &models.Message{ID: p.MessageID}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, p)
	return true, nil
}

func (f *fakeSender) SendChatAction(context.Context, *bot.SendChatActionParams) (bool, error) {
	return true, nil
}

func (f *fakeSender) lastSent(t *testing.T) *bot.SendMessageParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) lastEdited(t *testing.T) *bot.EditMessageTextParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.edited)
	return f.edited[len(f.edited)-1]
}

type fakeAI struct {
	mu    sync.Mutex
	calls [][]ai.Message
	reply string
	err   error
}

func (f *fakeAI) TryComplete(_ context.Context, msgs []ai.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	return f.reply, f.err
}

func (f *fakeAI) Complete(ctx context.Context, msgs []ai.Message) string {
	reply, err := f.TryComplete(ctx, msgs)
	if err != nil {
		return "fallback"
	}
	return reply
}

type fakeWeather struct {
	report *weather.Report
	err    error
}

func (f fakeWeather) Current(context.Context, string) (*weather.Report, error) {
	return f.report, f.err
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	source  string
	targets []int64
	text    string
}

func (f *fakeBroadcaster) Send(_ context.Context, source string, targets []int64, text string) broadcast.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source, f.targets, f.text = source, targets, text
	return broadcast.Result{Sent: len(targets)}
}

type memStore struct {
	saves int
	err   error
}

func (m *memStore) Load(context.Context) (*store.Snapshot, error) { return store.NewSnapshot(), nil }
func (m *memStore) Save(context.Context, *store.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	return nil
}
func (m *memStore) Close() error { return nil }

type testEnv struct {
	deps    HandlerDeps
	sender  *fakeSender
	ai      *fakeAI
	bcast   *fakeBroadcaster
	store   *memStore
	session *session.State
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "t", AdminID: adminID},
		Persona: config.PersonaConfig{
			Name:            "DarkJarvis",
			Signature:       "🤖 DarkJarvis | Kurucu: ✘𝙐𝙂𝙐𝙍",
			BaseIdentity:    "Sen DarkJarvis'sin.",
			UnfilteredBlock: "KARANLIK MOD AKTİF",
		},
		Bot:      config.BotConfig{FlowTimeout: 10 * time.Minute, GroupMentionsOnly: true},
		Messages: config.DefaultMessages,
	}
	st := session.New(session.Options{
		DefaultProvider: "openai",
		Providers:       []string{"deepseek", "gemini", "ollama", "openai"},
	})
	env := &testEnv{
		sender:  &fakeSender{},
		ai:      &fakeAI{reply: "Selam, ölümlü."},
		bcast:   &fakeBroadcaster{},
		store:   &memStore{},
		session: st,
	}
	env.deps = HandlerDeps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:      cfg,
		Session:     st,
		Store:       env.store,
		AI:          env.ai,
		Persona:     persona.New(cfg.Persona),
		Flows:       flow.NewManager(cfg.Bot.FlowTimeout),
		Weather:     fakeWeather{err: weather.ErrNotConfigured},
		Broadcaster: env.bcast,
		BotInfo:     &models.User{ID: 777, Username: "DarkJarvisBot", IsBot: true},
	}
	return env
}

// dispatch runs an update through the registered handler it would match,
// falling back to the default handler, with session tracking first.
func (e *testEnv) dispatch(update *models.Update) {
	ctx := context.Background()
	trackUpdate(ctx, e.deps, update)

	for _, rh := range RegisterAllCommands(e.deps) {
		if matches(rh, update) {
			Chain(rh.Handler, rh.Middleware...)(ctx, e.sender, update)
			return
		}
	}
	NewChatHandler(e.deps)(ctx, e.sender, update)
}

func matches(rh RegisteredHandler, update *models.Update) bool {
	switch rh.HandlerType {
	case bot.HandlerTypeMessageText:
		if update.Message == nil {
			return false
		}
		word, _, _ := strings.Cut(update.Message.Text, " ")
		word, _, _ = strings.Cut(word, "@")
		return word == "/"+rh.Pattern
	case bot.HandlerTypeCallbackQueryData:
		if update.CallbackQuery == nil {
			return false
		}
		if rh.MatchType == bot.MatchTypePrefix {
			return strings.HasPrefix(update.CallbackQuery.Data, rh.Pattern)
		}
		return update.CallbackQuery.Data == rh.Pattern
	}
	return false
}

func privateText(from int64, text string) *models.Update {
	return &models.Update{ID: 1, Message: &models.Message{
		ID:   10,
		From: &models.User{ID: from, FirstName: "Ayşe"},
		Chat: models.Chat{ID: from, Type: models.ChatTypePrivate},
		Text: text,
	}}
}

func groupText(from int64, text string) *models.Update {
	return &models.Update{ID: 2, Message: &models.Message{
		ID:   11,
		From: &models.User{ID: from, FirstName: "Mehmet"},
		Chat: models.Chat{ID: groupChat, Type: models.ChatTypeSupergroup, Title: "Gece Kuşları"},
		Text: text,
	}}
}

func callbackUpdate(from int64, data string) *models.Update {
	return &models.Update{ID: 3, CallbackQuery: &models.CallbackQuery{
		ID:   "cb-1",
		From: models.User{ID: from, FirstName: "Ayşe"},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 55, Chat: models.Chat{ID: from, Type: models.ChatTypePrivate}},
		},
	}}
}

func callbackData(markup models.ReplyMarkup) []string {
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

func TestStartThenChat(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(privateText(userID, "/start"))

	welcome := env.sender.lastSent(t)
	assert.Contains(t, welcome.Text, "DarkJarvis")
	assert.Equal(t, models.ParseModeHTML, welcome.ParseMode)
	buttons := callbackData(welcome.ReplyMarkup)
	assert.Contains(t, buttons, CallbackModeToggle)
	assert.Contains(t, buttons, CallbackFun)
	assert.Contains(t, buttons, CallbackAdminPanel)

	env.dispatch(privateText(userID, "merhaba"))

	require.Len(t, env.ai.calls, 1)
	system := env.ai.calls[0][0]
	assert.Equal(t, ai.RoleSystem, system.Role)
	assert.NotContains(t, system.Content, "KARANLIK MOD AKTİF")
	assert.True(t, strings.HasSuffix(system.Content, persona.SafetyConstraint))
	assert.Equal(t, "merhaba", env.ai.calls[0][1].Content)

	got := env.sender.lastSent(t)
	assert.Equal(t, "Selam, ölümlü.\n\n🤖 DarkJarvis | Kurucu: ✘𝙐𝙂𝙐𝙍", got.Text)
	assert.Equal(t, 1, env.session.GetOrCreateUser(userID, "").MessageCount)
}

func TestModeToggleAffectsPrompt(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(callbackUpdate(userID, CallbackModeToggle))
	assert.True(t, env.session.IsUnfiltered(userID))
	assert.Contains(t, env.sender.lastEdited(t).Text, "Karanlık Mod")

	env.dispatch(privateText(userID, "anlat bakalım"))
	require.Len(t, env.ai.calls, 1)
	assert.Contains(t, env.ai.calls[0][0].Content, "KARANLIK MOD AKTİF")
	assert.True(t, strings.HasSuffix(env.ai.calls[0][0].Content, persona.SafetyConstraint))
}

func TestGroupMessagesNeedMention(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(groupText(userID, "bugün hava güzel"))
	assert.Empty(t, env.ai.calls)
	assert.Equal(t, 1, env.session.GetOrCreateUser(userID, "").MessageCount)
	_, known := env.session.Group(groupChat)
	assert.True(t, known, "group recorded from message")

	env.dispatch(groupText(userID, "@darkjarvisbot naber?"))
	require.Len(t, env.ai.calls, 1)
	assert.Equal(t, "naber?", env.ai.calls[0][1].Content)
	sent := env.sender.lastSent(t)
	require.NotNil(t, sent.ReplyParameters)
	assert.Equal(t, 11, sent.ReplyParameters.MessageID)

	reply := groupText(userID, "sen ne dersin")
	reply.Message.ReplyToMessage = &models.Message{From: &models.User{ID: 777}}
	env.dispatch(reply)
	assert.Len(t, env.ai.calls, 2)
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	t.Run("callback from non-admin", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.dispatch(callbackUpdate(userID, CallbackProvider+"gemini"))

		assert.Equal(t, "openai", env.session.Provider())
		require.Len(t, env.sender.answered, 1)
		assert.True(t, env.sender.answered[0].ShowAlert)
		assert.Equal(t, env.deps.Config.Messages.Forbidden, env.sender.answered[0].Text)
	})

	t.Run("command from non-admin", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.dispatch(privateText(userID, "/admin"))
		assert.Equal(t, env.deps.Config.Messages.Forbidden, env.sender.lastSent(t).Text)
	})

	t.Run("admin disabled", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.deps.Config.Telegram.AdminID = 0
		env.dispatch(privateText(0, "/admin"))
		assert.Equal(t, env.deps.Config.Messages.Forbidden, env.sender.lastSent(t).Text)
	})

	t.Run("admin selects provider", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.dispatch(callbackUpdate(adminID, CallbackProvider+"gemini"))
		assert.Equal(t, "gemini", env.session.Provider())
		assert.Contains(t, env.sender.lastEdited(t).Text, "gemini")
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.dispatch(callbackUpdate(adminID, CallbackProvider+"skynet"))
		assert.Equal(t, "openai", env.session.Provider())
		require.Len(t, env.sender.answered, 1)
		assert.True(t, env.sender.answered[0].ShowAlert)
	})
}

func TestAdminSave(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(privateText(userID, "kaydedilecek mesaj"))
	env.dispatch(callbackUpdate(adminID, CallbackAdminSave))
	assert.Equal(t, 1, env.store.saves)
	assert.Equal(t, env.deps.Config.Messages.Saved, env.sender.answered[len(env.sender.answered)-1].Text)

	env.store.err = errors.New("disk full")
	env.dispatch(privateText(userID, "bir mesaj daha"))
	env.dispatch(callbackUpdate(adminID, CallbackAdminSave))
	assert.Equal(t, env.deps.Config.Messages.SaveFailed, env.sender.answered[len(env.sender.answered)-1].Text)
}

func TestGroupMessageFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.session.RecordGroup(groupChat, "Gece Kuşları")

	env.dispatch(callbackUpdate(adminID, CallbackAdminGroupMsg))
	assert.Contains(t, callbackData(env.sender.lastEdited(t).ReplyMarkup), "group:-100500")

	env.dispatch(callbackUpdate(adminID, "group:-100500"))
	assert.Equal(t, env.deps.Config.Messages.AskText, env.sender.lastEdited(t).Text)

	env.dispatch(privateText(adminID, "Toplantı 21:00'de"))
	assert.Empty(t, env.ai.calls, "flow input is not sent to the AI")
	preview := env.sender.lastSent(t)
	assert.Contains(t, preview.Text, "Gece Kuşları")
	assert.Contains(t, callbackData(preview.ReplyMarkup), CallbackFlowConfirm)

	env.dispatch(callbackUpdate(adminID, CallbackFlowConfirm))
	assert.Equal(t, sourceGroupMessage, env.bcast.source)
	assert.Equal(t, []int64{groupChat}, env.bcast.targets)
	assert.Equal(t, "Toplantı 21:00'de", env.bcast.text)
	assert.Contains(t, env.sender.lastEdited(t).Text, "1 başarılı")
}

func TestBroadcastFlowCancel(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(callbackUpdate(adminID, CallbackAdminBcast))
	env.dispatch(privateText(adminID, "/cancel"))
	assert.Equal(t, env.deps.Config.Messages.Cancelled, env.sender.lastSent(t).Text)

	// Text after cancel is ordinary chat again.
	env.dispatch(privateText(adminID, "selam"))
	assert.Len(t, env.ai.calls, 1)
	assert.Empty(t, env.bcast.targets)

	env.dispatch(privateText(adminID, "/cancel"))
	assert.Equal(t, env.deps.Config.Messages.NothingToCancel, env.sender.lastSent(t).Text)
}

func TestBroadcastTargets(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.session.RecordGroup(-1, "a")
	env.session.GetOrCreateUser(5, "x")

	env.dispatch(callbackUpdate(adminID, CallbackAdminBcast))
	env.dispatch(privateText(adminID, "Duyuru!"))
	env.dispatch(callbackUpdate(adminID, CallbackFlowConfirm))

	assert.Equal(t, sourceBroadcast, env.bcast.source)
	assert.Equal(t, []int64{-1, 5, adminID}, env.bcast.targets)
}

func TestFunFallsBackToCannedText(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.ai.err = ai.ErrNotConfigured

	env.dispatch(callbackUpdate(userID, CallbackFun))
	require.Len(t, env.ai.calls, 1)
	edited := env.sender.lastEdited(t)
	assert.True(t, strings.HasSuffix(edited.Text, env.deps.Persona.Signature))
	assert.NotContains(t, edited.Text, "fallback")
}

func TestEditFailureSendsNewMessage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.sender.editErr = errors.New("message is not modified")

	env.dispatch(callbackUpdate(userID, CallbackMusic))
	assert.Contains(t, env.sender.lastSent(t).Text, "Müzik")
}

func TestWeather(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		client fakeWeather
		want   string
	}{
		{name: "usage", text: "/weather", want: config.DefaultMessages.WeatherUsage},
		{name: "not configured", text: "/weather Ankara", client: fakeWeather{err: weather.ErrNotConfigured}, want: config.DefaultMessages.NotConfigured},
		{name: "not found", text: "/weather Atlantis", client: fakeWeather{err: weather.ErrCityNotFound}, want: config.DefaultMessages.WeatherNotFound},
		{name: "bad key", text: "/weather İzmir", client: fakeWeather{err: weather.ErrInvalidKey}, want: config.DefaultMessages.WeatherInvalidKey},
		{name: "other", text: "/weather Bursa", client: fakeWeather{err: errors.New("dial tcp")}, want: config.DefaultMessages.GeneralError},
		{name: "ok", text: "/weather@DarkJarvisBot Van", client: fakeWeather{report: &weather.Report{City: "Van", Temperature: 12}}, want: "🌤 Van"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			env.deps.Weather = tt.client
			env.dispatch(privateText(userID, tt.text))
			assert.Contains(t, env.sender.lastSent(t).Text, tt.want)
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(privateText(userID, "kahve kahve güzel"))
	env.dispatch(privateText(userID, "/stats"))

	text := env.sender.lastSent(t).Text
	assert.Contains(t, text, "Toplam Mesaj: 1")
	assert.Contains(t, text, "Ayşe (1 mesaj)")
	assert.Contains(t, text, "kahve (2)")
}

func TestMembershipRecordsGroup(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.dispatch(&models.Update{ID: 9, MyChatMember: &models.ChatMemberUpdated{
		Chat: models.Chat{ID: -42, Type: models.ChatTypeGroup, Title: "Yeni Grup"},
	}})
	g, ok := env.session.Group(-42)
	require.True(t, ok)
	assert.Equal(t, "Yeni Grup", g.Title)
	assert.Empty(t, env.ai.calls)
}
