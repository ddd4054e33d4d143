package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandlerFunc handles one update. It receives a Sender rather than
// *bot.Bot so handlers can run against a fake in tests.
type HandlerFunc func(ctx context.Context, s Sender, update *models.Update)

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Bot adapts h to the go-telegram/bot handler signature.
func (h HandlerFunc) Bot() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h(ctx, b, update)
	}
}

// Chain wraps h with mw. The first middleware is the outermost.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// RegisteredHandler describes one handler and how it is matched.
type RegisteredHandler struct {
	HandlerType bot.HandlerType
	Pattern     string
	Handler     HandlerFunc
	Middleware  []Middleware
	MatchType   bot.MatchType
}

// Callback data tokens.
const (
	CallbackMenu          = "menu:main"
	CallbackModeToggle    = "mode:toggle"
	CallbackFun           = "fun"
	CallbackFortune       = "fortune"
	CallbackMusic         = "music"
	CallbackAnalysis      = "analysis"
	CallbackAdminPanel    = "admin:panel"
	CallbackAdminSave     = "admin:save"
	CallbackAdminGroups   = "admin:groups"
	CallbackAdminGroupMsg = "admin:groupmsg"
	CallbackAdminBcast    = "admin:broadcast"
	CallbackProvider      = "provider:"
	CallbackGroup         = "group:"
	CallbackFlowConfirm   = "flow:confirm"
	CallbackFlowCancel    = "flow:cancel"
)

func command(pattern string, h HandlerFunc, mw ...Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: bot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     h,
		MatchType:   bot.MatchTypeCommandStartOnly,
		Middleware:  mw,
	}
}

func callback(pattern string, match bot.MatchType, h HandlerFunc, mw ...Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: bot.HandlerTypeCallbackQueryData,
		Pattern:     pattern,
		Handler:     h,
		MatchType:   match,
		Middleware:  mw,
	}
}

// RegisterAllCommands returns every command and callback handler keyed by a
// unique name.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	admin := AdminOnly(deps)

	menu := menuHandler{deps}
	adm := adminHandler{deps}
	flows := flowHandler{deps}

	handlers["/start"] = command("start", NewStartHandler(deps))
	handlers["/stats"] = command("stats", menu.Stats)
	handlers["/weather"] = command("weather", NewWeatherHandler(deps))
	handlers["/admin"] = command("admin", adm.Panel, admin)
	handlers["/cancel"] = command("cancel", flows.Cancel, admin)

	handlers[CallbackMenu] = callback(CallbackMenu, bot.MatchTypeExact, menu.Main)
	handlers[CallbackModeToggle] = callback(CallbackModeToggle, bot.MatchTypeExact, menu.ToggleMode)
	handlers[CallbackFun] = callback(CallbackFun, bot.MatchTypeExact, menu.Fun)
	handlers[CallbackFortune] = callback(CallbackFortune, bot.MatchTypeExact, menu.Fortune)
	handlers[CallbackMusic] = callback(CallbackMusic, bot.MatchTypeExact, menu.Music)
	handlers[CallbackAnalysis] = callback(CallbackAnalysis, bot.MatchTypeExact, menu.Stats)

	handlers[CallbackAdminPanel] = callback(CallbackAdminPanel, bot.MatchTypeExact, adm.Panel, admin)
	handlers[CallbackAdminSave] = callback(CallbackAdminSave, bot.MatchTypeExact, adm.Save, admin)
	handlers[CallbackAdminGroups] = callback(CallbackAdminGroups, bot.MatchTypeExact, adm.Groups, admin)
	handlers[CallbackProvider] = callback(CallbackProvider, bot.MatchTypePrefix, adm.SelectProvider, admin)

	handlers[CallbackAdminGroupMsg] = callback(CallbackAdminGroupMsg, bot.MatchTypeExact, flows.StartGroupMessage, admin)
	handlers[CallbackAdminBcast] = callback(CallbackAdminBcast, bot.MatchTypeExact, flows.StartBroadcast, admin)
	handlers[CallbackGroup] = callback(CallbackGroup, bot.MatchTypePrefix, flows.ChooseGroup, admin)
	handlers[CallbackFlowConfirm] = callback(CallbackFlowConfirm, bot.MatchTypeExact, flows.Confirm, admin)
	handlers[CallbackFlowCancel] = callback(CallbackFlowCancel, bot.MatchTypeExact, flows.Cancel, admin)

	return handlers
}
