package telegram

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dream-bot/api/internal/dreamapi"
)

func unlockedAnalysis() *dreamapi.TriangleAnalysis {
	quota := 2
	return &dreamapi.TriangleAnalysis{
		ID:             "a1",
		UserDream:      "flying over water",
		UserTier:       "master",
		RemainingQuota: &quota,
		Psychology: dreamapi.Psychology{
			CoreEmotion:      "Lo âu",
			EmotionIntensity: 70,
			Archetype:        "Shadow",
		},
		Tarot: dreamapi.Section[dreamapi.Tarot]{Value: &dreamapi.Tarot{
			CardName: "The Moon", CardNumber: 18, Suit: "Major Arcana", Element: "Water",
		}},
		IChing: dreamapi.Section[dreamapi.IChing]{Value: &dreamapi.IChing{
			HexagramName: "Thủy Thiên Nhu (水天需)",
			Structure:    "Thượng Khảm (Nước ☵) - Hạ Càn (Trời ☰)",
		}},
		Synthesis: dreamapi.Section[dreamapi.Synthesis]{Value: &dreamapi.Synthesis{
			CoreMessage: "Be patient.",
			Numbers:     []dreamapi.LuckyNumber{{Number: "17", Source: "Quẻ Nhu", Meaning: "waiting"}},
		}},
	}
}

func TestRenderAnalysisUnlocked(t *testing.T) {
	msgs := renderAnalysis(unlockedAnalysis())
	require.Len(t, msgs, 5) // four lenses plus quota footer
	joined := strings.Join(msgs, "\n---\n")

	assert.Contains(t, joined, "Lo âu")
	assert.Contains(t, joined, "The Moon")
	assert.Contains(t, joined, "Thủy Thiên Nhu")
	assert.Contains(t, joined, "█") // the drawn hexagram
	assert.Contains(t, joined, "17")
	assert.Contains(t, joined, "2 analysis request(s) left")
}

func TestRenderIChingDrawsParsedHexagram(t *testing.T) {
	out := renderIChing(dreamapi.Section[dreamapi.IChing]{Value: &dreamapi.IChing{
		HexagramName: "Nhu",
		Structure:    "Thượng Khảm (Nước ☵) - Hạ Càn (Trời ☰)",
	}})
	rows := strings.Split(out, "\n")
	// Khảm reversed on top: broken, solid, broken; Càn below: three solid.
	var bars []string
	for _, ln := range rows {
		if strings.Contains(ln, "█") {
			bars = append(bars, ln)
		}
	}
	require.Len(t, bars, 6)
	assert.Contains(t, bars[0], " ")
	assert.NotContains(t, bars[1], " ")
	assert.Contains(t, bars[2], " ")
	for _, ln := range bars[3:] {
		assert.NotContains(t, ln, " ")
	}
}

func TestRenderLockedSections(t *testing.T) {
	locked := &dreamapi.LockedContent{
		IsLocked:    true,
		Message:     "🔒 Nâng cấp lên Cao Thủ để mở khóa",
		UpgradeHint: "Tarot, Kinh Dịch, Số May Mắn",
	}
	a := unlockedAnalysis()
	a.Tarot = dreamapi.Section[dreamapi.Tarot]{Locked: locked}
	a.IChing = dreamapi.Section[dreamapi.IChing]{Locked: locked}
	a.Synthesis = dreamapi.Section[dreamapi.Synthesis]{Locked: locked}

	joined := strings.Join(renderAnalysis(a), "\n---\n")
	assert.Contains(t, joined, "Nâng cấp")
	assert.Contains(t, joined, "Kinh Dịch")
	assert.NotContains(t, joined, "The Moon")
}

func TestRenderQuota(t *testing.T) {
	a := unlockedAnalysis()

	two := 2
	a.RemainingQuota = &two
	assert.Contains(t, renderQuota(a), "2 analysis request(s) left")

	// Master tier: the backend signals unlimited as -1 (or null).
	unlimited := -1
	a.RemainingQuota = &unlimited
	assert.Empty(t, renderQuota(a))

	a.RemainingQuota = nil
	assert.Empty(t, renderQuota(a))
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, renderHistory(nil), "No saved dreams")

	out := renderHistory([]dreamapi.HistoryEntry{
		{Content: "I was flying", CreatedAt: "2025-06-01T10:00:00Z"},
		{Content: strings.Repeat("x", 200), CreatedAt: "2025-06-02T10:00:00Z"},
	})
	assert.Contains(t, out, "1. 2025-06-01 — I was flying")
	assert.Contains(t, out, "…")
}

func TestAnalysisErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&dreamapi.APIError{StatusCode: 403, Message: "Forbidden"}, "client key rejected"},
		{&dreamapi.APIError{StatusCode: 401, Message: "Unauthorized"}, "session has expired"},
		{&dreamapi.APIError{StatusCode: 429, Message: "Too Many Requests"}, "limit"},
		{&dreamapi.APIError{StatusCode: 500, Message: "boom"}, "boom"},
		{&dreamapi.MalformedResponseError{Endpoint: "triangle", Err: errors.New("bad shape")}, "riddles"},
		{errors.New("dial tcp: connection refused"), "Can't reach"},
	}
	for _, tc := range cases {
		assert.Contains(t, analysisErrorMessage(tc.err), tc.want)
	}
}

func TestHistoryErrorMessage(t *testing.T) {
	assert.Contains(t, historyErrorMessage(&dreamapi.APIError{StatusCode: 401}), "Log in")
	assert.Contains(t, historyErrorMessage(errors.New("x")), "history")
}
