package telegram

import (
	"fmt"
	"strings"

	"dream-bot/api/internal/dreamapi"
	"dream-bot/api/internal/hexagram"
)

// renderAnalysis turns the tiered payload into a series of chat messages,
// one lens per message. Locked sections render as the backend's upgrade hint.
func renderAnalysis(a *dreamapi.TriangleAnalysis) []string {
	msgs := []string{
		renderPsychology(a.Psychology),
		renderTarot(a.Tarot),
		renderIChing(a.IChing),
		renderSynthesis(a.Synthesis, a.LuckyNumbers),
	}
	if footer := renderQuota(a); footer != "" {
		msgs = append(msgs, footer)
	}
	return msgs
}

func renderPsychology(p dreamapi.Psychology) string {
	var b strings.Builder
	b.WriteString("🧠 *Psychology*\n")
	fmt.Fprintf(&b, "Core emotion: %s (%d%%)\n", esc(p.CoreEmotion), p.EmotionIntensity)
	if p.HiddenDesire != "" {
		fmt.Fprintf(&b, "Hidden desire: %s\n", esc(p.HiddenDesire))
	}
	if p.InnerConflict != "" {
		fmt.Fprintf(&b, "Inner conflict: %s\n", esc(p.InnerConflict))
	}
	if p.Archetype != "" {
		fmt.Fprintf(&b, "Archetype: %s\n", esc(p.Archetype))
	}
	if p.ShadowAspect != "" {
		fmt.Fprintf(&b, "Shadow: %s\n", esc(p.ShadowAspect))
	}
	if p.ActionableExercise != "" {
		fmt.Fprintf(&b, "Try this (%s): %s\n", esc(p.TherapyType), esc(p.ActionableExercise))
	}
	return strings.TrimRight(b.String(), "\n")
}

func lockedText(title string, lc *dreamapi.LockedContent) string {
	var b strings.Builder
	b.WriteString(title + "\n")
	msg := lc.Message
	if msg == "" {
		msg = "🔒 Locked"
	}
	b.WriteString(esc(msg))
	if lc.UpgradeHint != "" {
		b.WriteString("\n" + esc(lc.UpgradeHint))
	}
	return b.String()
}

func renderTarot(s dreamapi.Section[dreamapi.Tarot]) string {
	if s.Locked != nil {
		return lockedText("🃏 *Tarot*", s.Locked)
	}
	if s.Value == nil {
		return "🃏 *Tarot*\n(not included in this reading)"
	}
	t := s.Value
	var b strings.Builder
	b.WriteString("🃏 *Tarot*\n")
	orient := "upright"
	if t.IsReversed {
		orient = "reversed"
	}
	fmt.Fprintf(&b, "Card: %s (%s)\n", esc(t.CardName), orient)
	if t.Suit != "" {
		fmt.Fprintf(&b, "Suit: %s · Element: %s\n", esc(t.Suit), esc(t.Element))
	}
	if t.EnergyAnalysis != "" {
		fmt.Fprintf(&b, "%s\n", esc(t.EnergyAnalysis))
	}
	if t.Prediction != "" {
		fmt.Fprintf(&b, "\n%s\n", esc(t.Prediction))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderIChing(s dreamapi.Section[dreamapi.IChing]) string {
	if s.Locked != nil {
		return lockedText("☯️ *I Ching*", s.Locked)
	}
	if s.Value == nil {
		return "☯️ *I Ching*\n(not included in this reading)"
	}
	ic := s.Value
	var b strings.Builder
	b.WriteString("☯️ *I Ching*\n")
	fmt.Fprintf(&b, "Hexagram: %s\n", esc(ic.HexagramName))

	pair := hexagram.ParseTrigrams(ic.Structure)
	seq := hexagram.BuildLineSequence(pair.Upper.Trigram, pair.Lower.Trigram)
	b.WriteString("```\n" + hexagram.RenderText(seq, hexagram.SizeMedium) + "\n```\n")

	if ic.JudgmentSummary != "" {
		fmt.Fprintf(&b, "Judgment: %s\n", esc(ic.JudgmentSummary))
	}
	if ic.ImageMeaning != "" {
		fmt.Fprintf(&b, "Image: %s\n", esc(ic.ImageMeaning))
	}
	if ic.AdviceCareer != "" {
		fmt.Fprintf(&b, "Career: %s\n", esc(ic.AdviceCareer))
	}
	if ic.AdviceRelationship != "" {
		fmt.Fprintf(&b, "Relationships: %s\n", esc(ic.AdviceRelationship))
	}
	if ic.ActionableStep != "" {
		fmt.Fprintf(&b, "Do now: %s\n", esc(ic.ActionableStep))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSynthesis(s dreamapi.Section[dreamapi.Synthesis], nums dreamapi.Section[[]dreamapi.LuckyNumber]) string {
	if s.Locked != nil {
		return lockedText("✨ *Synthesis*", s.Locked)
	}
	if s.Value == nil {
		return "✨ *Synthesis*\n(not included in this reading)"
	}
	var b strings.Builder
	b.WriteString("✨ *Synthesis*\n")
	b.WriteString(esc(s.Value.CoreMessage))

	numbers := s.Value.Numbers
	if len(numbers) == 0 && nums.Value != nil {
		numbers = *nums.Value
	}
	if len(numbers) > 0 {
		b.WriteString("\n\n🎰 Lucky numbers:\n")
		for _, n := range numbers {
			fmt.Fprintf(&b, "• %s — %s (%s)\n", esc(n.Number), esc(n.Meaning), esc(n.Source))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderQuota(a *dreamapi.TriangleAnalysis) string {
	// Unlimited tiers report either null or -1; neither needs a footer.
	if a.RemainingQuota == nil || *a.RemainingQuota < 0 {
		return ""
	}
	return fmt.Sprintf("📊 %d analysis request(s) left today.", *a.RemainingQuota)
}

func renderHistory(entries []dreamapi.HistoryEntry) string {
	if len(entries) == 0 {
		return "No saved dreams yet. Send me one!"
	}
	var b strings.Builder
	b.WriteString("📜 *Your dream history*\n")
	for i, e := range entries {
		text := strings.TrimSpace(e.Content)
		if len([]rune(text)) > 120 {
			text = string([]rune(text)[:120]) + "…"
		}
		when := e.CreatedAt
		if len(when) >= 10 {
			when = when[:10]
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, when, esc(text))
	}
	return strings.TrimRight(b.String(), "\n")
}
