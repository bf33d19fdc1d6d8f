package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"dream-bot/api/internal/dreamapi"
)

const (
	minDreamLen = 10
	maxDreamLen = 500

	analysisTimeout = 90 * time.Second
	callTimeout     = 15 * time.Second
)

func (r *Router) runAnalysis(cid int64, dreamText string) {
	n := utf8.RuneCountInString(dreamText)
	if n < minDreamLen {
		r.send(cid, fmt.Sprintf("That's a bit short — tell me more (at least %d characters).", minDreamLen))
		return
	}
	if n > maxDreamLen {
		r.send(cid, fmt.Sprintf("Too long for one reading (max %d characters). Trim it down a little.", maxDreamLen))
		return
	}
	if !tryAcquire(cid) {
		r.send(cid, "Still reading your previous dream — one at a time. 🕯")
		return
	}

	r.send(cid, "🔮 Reading your dream…")
	go func() {
		defer release(cid)
		ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
		defer cancel()

		api := r.API.WithTokenSource(r.Auth.Source(cid))
		res, err := api.AnalyzeTriangle(ctx, dreamText)
		if err != nil {
			r.sendAnalysisError(cid, err)
			return
		}

		if raw, err := json.Marshal(res); err == nil {
			if err := r.Analyses.Upsert(ctx, cid, dreamText, raw); err != nil {
				log.Printf("telegram: cache analysis chat=%d: %v", cid, err)
			}
		}
		for _, m := range renderAnalysis(res) {
			r.sendMarkdown(cid, m)
		}
	}()
}

func (r *Router) showLast(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	a, err := r.Analyses.FindLatest(ctx, cid)
	if errors.Is(err, sql.ErrNoRows) {
		r.send(cid, "No reading yet. Send me a dream first.")
		return
	}
	if err != nil {
		log.Printf("telegram: load analysis chat=%d: %v", cid, err)
		r.send(cid, "Could not load your last reading. Try again.")
		return
	}
	var res dreamapi.TriangleAnalysis
	if err := json.Unmarshal(a.JSON, &res); err != nil {
		log.Printf("telegram: decode cached analysis chat=%d: %v", cid, err)
		r.send(cid, "Your last reading is unreadable. Send the dream again.")
		return
	}
	for _, m := range renderAnalysis(&res) {
		r.sendMarkdown(cid, m)
	}
}

func (r *Router) showHistory(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	api := r.API.WithTokenSource(r.Auth.Source(cid))
	limit := r.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	entries, err := api.History(ctx, limit)
	if err != nil {
		r.sendWithKeyboard(cid, historyErrorMessage(err), makeHistoryFailKeyboard())
		return
	}
	r.sendMarkdown(cid, renderHistory(entries))
}

func (r *Router) checkHealth(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if _, err := r.API.Health(ctx); err != nil {
		r.send(cid, "⚠️ The oracle is unreachable: "+err.Error())
		return
	}
	r.send(cid, "✅ The oracle is awake.")
}

// ---- auth flows ----

func (r *Router) startLogin(cid int64) {
	if !r.Auth.Enabled() {
		r.send(cid, "Login is not configured on this bot. Dreams still work as a guest.")
		return
	}
	setMode(cid, modeAwaitEmail)
	r.send(cid, "Your email?")
}

func (r *Router) finishLogin(cid int64, password string) {
	clearMode(cid)
	v, ok := pendingLogin.LoadAndDelete(cid)
	if !ok {
		r.send(cid, "Lost track of your email — start again with /login.")
		return
	}
	email, _ := v.(string)

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	s, err := r.Auth.SignIn(ctx, cid, email, password)
	if err != nil {
		log.Printf("telegram: sign-in chat=%d: %v", cid, err)
		r.sendWithKeyboard(cid, "Sign-in failed. Check your email and password.", makeLoginKeyboard())
		return
	}
	r.send(cid, "✅ Signed in as "+s.Email+". Your readings are now saved to your account.")
}

func (r *Router) logout(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	r.Auth.SignOut(ctx, cid)
	r.send(cid, "Signed out. You're a guest again.")
}

func (r *Router) whoami(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if s, ok := r.Auth.Current(ctx, cid); ok {
		r.send(cid, "You are "+s.Email+".")
		return
	}
	r.sendWithKeyboard(cid, "You're not signed in.", makeLoginKeyboard())
}

// ---- journal ----

func (r *Router) addNote(cid int64, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	n, err := r.Journal.Add(ctx, cid, body)
	if err != nil {
		log.Printf("telegram: add note chat=%d: %v", cid, err)
		r.send(cid, "Could not save the note. Try again.")
		return
	}
	r.send(cid, fmt.Sprintf("📝 Saved as note #%d.", n.ID))
}

func (r *Router) listNotes(cid int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	notes, err := r.Journal.List(ctx, cid, 20)
	if err != nil {
		log.Printf("telegram: list notes chat=%d: %v", cid, err)
		r.send(cid, "Could not load your journal. Try again.")
		return
	}
	if len(notes) == 0 {
		r.send(cid, "Your journal is empty. Add something with /note.")
		return
	}
	var b strings.Builder
	b.WriteString("📓 *Journal*\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "#%d (%s): %s\n", n.ID, n.CreatedAt.Format("2006-01-02"), esc(n.Body))
	}
	r.sendMarkdown(cid, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) deleteNote(cid, noteID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	ok, err := r.Journal.Delete(ctx, cid, noteID)
	if err != nil {
		log.Printf("telegram: delete note chat=%d: %v", cid, err)
		r.send(cid, "Could not delete the note. Try again.")
		return
	}
	if !ok {
		r.send(cid, fmt.Sprintf("No note #%d in your journal.", noteID))
		return
	}
	r.send(cid, fmt.Sprintf("🗑 Note #%d deleted.", noteID))
}

// ---- error rendering ----

func (r *Router) sendAnalysisError(cid int64, err error) {
	var apiErr *dreamapi.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		r.sendWithKeyboard(cid, analysisErrorMessage(err), makeLoginKeyboard())
		return
	}
	r.send(cid, analysisErrorMessage(err))
}

func analysisErrorMessage(err error) string {
	var apiErr *dreamapi.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsForbidden():
			return "⛔ The bot can't reach the oracle (client key rejected). Please tell the bot admin."
		case apiErr.IsUnauthorized():
			return "🔑 Your session has expired. Log in again to continue."
		case apiErr.IsRateLimited():
			if apiErr.Detail != "" {
				return "⏳ " + apiErr.Detail
			}
			return "⏳ You've reached today's limit. Come back tomorrow or upgrade."
		default:
			if apiErr.Detail != "" {
				return "⚠️ " + apiErr.Detail
			}
			return "⚠️ The oracle stumbled: " + apiErr.Message
		}
	}
	var malformed *dreamapi.MalformedResponseError
	if errors.As(err, &malformed) {
		return "⚠️ The oracle spoke in riddles (unexpected response). Try again in a moment."
	}
	return "📡 Can't reach the oracle right now. Check your connection and try again."
}

func historyErrorMessage(err error) string {
	var apiErr *dreamapi.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		return "🔑 Log in to see your dream history."
	}
	return "⚠️ Couldn't fetch your history."
}
