package telegram

import (
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dream-bot/api/internal/auth"
	"dream-bot/api/internal/dreamapi"
	"dream-bot/api/internal/store"
)

type Router struct {
	Bot      *tgbotapi.BotAPI
	API      *dreamapi.Client
	Auth     *auth.Manager
	Journal  *store.JournalRepo
	Analyses *store.AnalysisRepo

	HistoryLimit int
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		clearMode(cid)
		r.HandleCommand(upd)
		return
	}

	text := strings.TrimSpace(upd.Message.Text)
	if text == "" {
		return
	}

	switch getMode(cid) {
	case modeAwaitEmail:
		pendingLogin.Store(cid, text)
		setMode(cid, modeAwaitPassword)
		r.send(cid, "And your password? (delete the message afterwards)")
	case modeAwaitPassword:
		r.finishLogin(cid, text)
	case modeAwaitNote:
		clearMode(cid)
		r.addNote(cid, text)
	default:
		// Idle and await_dream both take the text as a dream narrative.
		clearMode(cid)
		r.runAnalysis(cid, text)
	}
}

func (r *Router) HandleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start", "help":
		r.send(cid, "🌙 Tell me a dream and I'll read it through psychology, tarot and the I Ching.\n"+
			"Commands:\n/dream — submit a dream\n/last — show your latest reading\n"+
			"/history — your saved dreams\n/journal — your notes\n/note — add a note\n"+
			"/login /logout /whoami — account\n/health — backend check")
	case "dream":
		setMode(cid, modeAwaitDream)
		r.send(cid, "Tell me your dream (10–500 characters).")
	case "last":
		r.showLast(cid)
	case "history":
		r.showHistory(cid)
	case "login":
		r.startLogin(cid)
	case "logout":
		r.logout(cid)
	case "whoami":
		r.whoami(cid)
	case "journal":
		r.listNotes(cid)
	case "note":
		arg := strings.TrimSpace(upd.Message.CommandArguments())
		if arg != "" {
			r.addNote(cid, arg)
			return
		}
		setMode(cid, modeAwaitNote)
		r.send(cid, "What should I write down?")
	case "delnote":
		arg := strings.TrimSpace(upd.Message.CommandArguments())
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			r.send(cid, "Usage: /delnote <id> (ids are shown by /journal)")
			return
		}
		r.deleteNote(cid, id)
	case "health":
		r.checkHealth(cid)
	default:
		r.send(cid, "Unknown command. Try /help.")
	}
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	// ack so the button stops spinning
	if _, err := r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("telegram: callback ack: %v", err)
	}

	switch cb.Data {
	case "history_retry":
		r.showHistory(cid)
	case "login_start":
		r.startLogin(cid)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send chat=%d: %v", chatID, err)
	}
}

func (r *Router) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		// Backend text occasionally breaks Markdown; retry plain.
		msg.ParseMode = ""
		if _, err2 := r.Bot.Send(msg); err2 != nil {
			log.Printf("telegram: send chat=%d: %v", chatID, err2)
		}
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send chat=%d: %v", chatID, err)
	}
}
