package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/darkjarvis/darkjarvis/internal/store"
)

func mainKeyboard(unfiltered bool) *models.InlineKeyboardMarkup {
	mode := models.InlineKeyboardButton{Text: "🕶 Karanlık Moda Geç", CallbackData: CallbackModeToggle}
	if unfiltered {
		mode.Text = "😇 Normal Moda Dön"
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{mode},
		{{Text: "🎮 Eğlence", CallbackData: CallbackFun}},
		{{Text: "🔮 Fal & Tarot", CallbackData: CallbackFortune}},
		{{Text: "🎵 Müzik Ara", CallbackData: CallbackMusic}},
		{{Text: "📊 Etkileşim Analizi", CallbackData: CallbackAnalysis}},
		{{Text: "🛠 Yönetim", CallbackData: CallbackAdminPanel}},
	}}
}

func backKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "⬅️ Ana Menü", CallbackData: CallbackMenu}},
	}}
}

func adminKeyboard(providers []string, active string) *models.InlineKeyboardMarkup {
	var providerRow []models.InlineKeyboardButton
	for _, p := range providers {
		label := p
		if p == active {
			label = "✅ " + p
		}
		providerRow = append(providerRow, models.InlineKeyboardButton{Text: label, CallbackData: CallbackProvider + p})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		providerRow,
		{
			{Text: "💾 Kaydet", CallbackData: CallbackAdminSave},
			{Text: "📋 Gruplar", CallbackData: CallbackAdminGroups},
		},
		{
			{Text: "📨 Gruba Mesaj", CallbackData: CallbackAdminGroupMsg},
			{Text: "📢 Duyuru", CallbackData: CallbackAdminBcast},
		},
		{{Text: "⬅️ Ana Menü", CallbackData: CallbackMenu}},
	}}
}

func groupKeyboard(groups []store.GroupRecord) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(groups)+1)
	for _, g := range groups {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         groupLabel(g),
			CallbackData: CallbackGroup + strconv.FormatInt(g.ID, 10),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "🚫 İptal", CallbackData: CallbackFlowCancel}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func confirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "✅ Gönder", CallbackData: CallbackFlowConfirm},
		{Text: "🚫 İptal", CallbackData: CallbackFlowCancel},
	}}}
}

func groupLabel(g store.GroupRecord) string {
	if g.Title != "" {
		return g.Title
	}
	return fmt.Sprintf("Grup %d", g.ID)
}
