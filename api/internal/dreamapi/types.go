package dreamapi

import "encoding/json"

// Psychology is the four-layer analysis: emotion, Freud, Jung, therapy.
// Always present regardless of tier.
type Psychology struct {
	CoreEmotion        string `json:"core_emotion"`
	EmotionIntensity   int    `json:"emotion_intensity"`
	HiddenDesire       string `json:"hidden_desire"`
	InnerConflict      string `json:"inner_conflict"`
	Archetype          string `json:"archetype"`
	ShadowAspect       string `json:"shadow_aspect"`
	TherapyType        string `json:"therapy_type"`
	ActionableExercise string `json:"actionable_exercise"`
}

type Tarot struct {
	CardName          string `json:"card_name"`
	CardNumber        int    `json:"card_number"`
	IsReversed        bool   `json:"is_reversed"`
	OrientationReason string `json:"orientation_reason"`
	Suit              string `json:"suit"`
	Element           string `json:"element"`
	EnergyAnalysis    string `json:"energy_analysis"`
	VisualBridge      string `json:"visual_bridge"`
	Prediction        string `json:"prediction"`
}

type IChing struct {
	HexagramName       string `json:"hexagram_name"`
	Structure          string `json:"structure"`
	JudgmentSummary    string `json:"judgment_summary"`
	ImageMeaning       string `json:"image_meaning"`
	AdviceCareer       string `json:"advice_career"`
	AdviceRelationship string `json:"advice_relationship"`
	ActionableStep     string `json:"actionable_step"`
}

type LuckyNumber struct {
	Number  string `json:"number"`
	Source  string `json:"source"`
	Meaning string `json:"meaning"`
}

type Synthesis struct {
	CoreMessage string        `json:"core_message"`
	Numbers     []LuckyNumber `json:"numbers"`
}

// LockedContent is the placeholder the backend substitutes for premium
// sections when the user's tier does not cover them.
type LockedContent struct {
	IsLocked    bool   `json:"is_locked"`
	Message     string `json:"message"`
	UpgradeHint string `json:"upgrade_hint"`
}

// Section is a tier-maskable part of the response: either the real value or
// a LockedContent placeholder, decided per response by the backend.
type Section[T any] struct {
	Locked *LockedContent
	Value  *T
}

func (s *Section[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		s.Locked, s.Value = nil, nil
		return nil
	}
	var probe struct {
		IsLocked bool `json:"is_locked"`
	}
	if err := json.Unmarshal(b, &probe); err == nil && probe.IsLocked {
		var lc LockedContent
		if err := json.Unmarshal(b, &lc); err != nil {
			return err
		}
		s.Locked = &lc
		s.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.Value = &v
	s.Locked = nil
	return nil
}

func (s Section[T]) MarshalJSON() ([]byte, error) {
	if s.Locked != nil {
		return json.Marshal(s.Locked)
	}
	return json.Marshal(s.Value)
}

// TriangleAnalysis is the tiered three-lens analysis payload.
type TriangleAnalysis struct {
	ID             string                 `json:"id"`
	UserDream      string                 `json:"user_dream"`
	UserTier       string                 `json:"user_tier"`
	RemainingQuota *int                   `json:"remaining_quota"`
	Psychology     Psychology             `json:"psychology"`
	Tarot          Section[Tarot]         `json:"tarot"`
	IChing         Section[IChing]        `json:"iching"`
	Synthesis      Section[Synthesis]     `json:"synthesis"`
	LuckyNumbers   Section[[]LuckyNumber] `json:"lucky_numbers"`
	Sources        map[string][]string    `json:"sources"`
	CreatedAt      string                 `json:"created_at"`
}

// HistoryEntry is one saved dream from the authenticated history endpoint.
// Analysis is kept raw: entries saved by older backend versions vary in shape.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Content   string          `json:"content"`
	Analysis  json.RawMessage `json:"analysis"`
	CreatedAt string          `json:"created_at"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
