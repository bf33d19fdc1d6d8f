package telegram

import "sync"

// Chat input modes. Empty mode means idle: plain text is taken as a dream
// narrative, matching the product's main screen.
const (
	modeAwaitDream    = "await_dream"
	modeAwaitEmail    = "await_email"
	modeAwaitPassword = "await_password"
	modeAwaitNote     = "await_note"
)

var chatMode sync.Map // chatID -> mode string

func setMode(chatID int64, mode string) { chatMode.Store(chatID, mode) }
func getMode(chatID int64) string {
	if v, ok := chatMode.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
func clearMode(chatID int64) { chatMode.Delete(chatID) }

var pendingLogin sync.Map // chatID -> email awaiting its password

// inflight enforces one outstanding analysis per chat; a second submission
// is refused while the first is pending.
var inflight sync.Map // chatID -> struct{}

func tryAcquire(chatID int64) bool {
	_, loaded := inflight.LoadOrStore(chatID, struct{}{})
	return !loaded
}

func release(chatID int64) { inflight.Delete(chatID) }
