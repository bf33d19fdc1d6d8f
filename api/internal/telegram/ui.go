package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Retry / re-login choices after a failed history fetch.
func makeHistoryFailKeyboard() tgbotapi.InlineKeyboardMarkup {
	retry := tgbotapi.NewInlineKeyboardButtonData("🔁 Retry", "history_retry")
	login := tgbotapi.NewInlineKeyboardButtonData("🔑 Log in again", "login_start")
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(retry, login))
}

func makeLoginKeyboard() tgbotapi.InlineKeyboardMarkup {
	login := tgbotapi.NewInlineKeyboardButtonData("🔑 Log in", "login_start")
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(login))
}

// Light Markdown escaping for backend-provided text.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
