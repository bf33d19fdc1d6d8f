package hexagram

import "strings"

// Line is a single yao: solid (yang) or broken (yin).
type Line int

const (
	Broken Line = iota
	Solid
)

func (l Line) String() string {
	if l == Solid {
		return "solid"
	}
	return "broken"
}

// Trigram is one of the eight bagua figures. Lines are stored bottom-to-top.
type Trigram struct {
	Symbol string
	Name   string // Sino-Vietnamese canonical name
	Lines  [3]Line
}

// The eight trigrams, keyed by their canonical Unicode symbol.
var trigrams = []Trigram{
	{Symbol: "☰", Name: "Càn", Lines: [3]Line{Solid, Solid, Solid}},
	{Symbol: "☱", Name: "Đoài", Lines: [3]Line{Solid, Solid, Broken}},
	{Symbol: "☲", Name: "Ly", Lines: [3]Line{Solid, Broken, Solid}},
	{Symbol: "☳", Name: "Chấn", Lines: [3]Line{Solid, Broken, Broken}},
	{Symbol: "☴", Name: "Tốn", Lines: [3]Line{Broken, Solid, Solid}},
	{Symbol: "☵", Name: "Khảm", Lines: [3]Line{Broken, Solid, Broken}},
	{Symbol: "☶", Name: "Cấn", Lines: [3]Line{Broken, Broken, Solid}},
	{Symbol: "☷", Name: "Khôn", Lines: [3]Line{Broken, Broken, Broken}},
}

// names maps every known spelling of a trigram (lowercased) to its symbol.
// The backend mixes Sino-Vietnamese names, Vietnamese nature words, Chinese
// characters and the occasional English name in its structure strings.
var names = map[string]string{
	// Càn / Heaven
	"càn": "☰", "kiền": "☰", "trời": "☰", "thiên": "☰", "乾": "☰", "heaven": "☰", "sky": "☰",
	// Đoài / Lake
	"đoài": "☱", "hồ": "☱", "đầm": "☱", "trạch": "☱", "兌": "☱", "lake": "☱", "marsh": "☱",
	// Ly / Fire
	"ly": "☲", "lửa": "☲", "hỏa": "☲", "離": "☲", "fire": "☲",
	// Chấn / Thunder
	"chấn": "☳", "sấm": "☳", "lôi": "☳", "震": "☳", "thunder": "☳",
	// Tốn / Wind
	"tốn": "☴", "gió": "☴", "phong": "☴", "巽": "☴", "wind": "☴",
	// Khảm / Water
	"khảm": "☵", "nước": "☵", "thủy": "☵", "坎": "☵", "water": "☵",
	// Cấn / Mountain
	"cấn": "☶", "núi": "☶", "sơn": "☶", "艮": "☶", "mountain": "☶",
	// Khôn / Earth
	"khôn": "☷", "đất": "☷", "địa": "☷", "坤": "☷", "earth": "☷",
}

var upperMarkers = map[string]bool{"thượng": true, "upper": true}
var lowerMarkers = map[string]bool{"hạ": true, "lower": true}

func bySymbol(sym string) (Trigram, bool) {
	for _, t := range trigrams {
		if t.Symbol == sym {
			return t, true
		}
	}
	return Trigram{}, false
}

// Lookup resolves a single name or symbol to a trigram.
func Lookup(s string) (Trigram, bool) {
	s = strings.TrimSpace(s)
	if t, ok := bySymbol(s); ok {
		return t, true
	}
	if sym, ok := names[strings.ToLower(s)]; ok {
		return bySymbol(sym)
	}
	return Trigram{}, false
}

// Default is the fallback for an unresolvable slot: the all-solid Càn figure,
// a visually inert placeholder with no divinatory weight.
func Default() Trigram {
	t, _ := bySymbol("☰")
	return t
}

// Half is one resolved (or defaulted) slot of a hexagram.
type Half struct {
	Trigram  Trigram
	Resolved bool
}

// Pair is the parsed upper/lower split of a structure description. Both
// halves always carry a usable trigram; Resolved reports whether it actually
// came from the input.
type Pair struct {
	Upper Half
	Lower Half
}

// ParseTrigrams extracts the upper and lower trigrams from a backend
// structure string such as "Thượng Khảm (Nước ☵) - Hạ Càn (Trời ☰)".
// Explicit symbols win: the first two in order of appearance are taken as
// upper then lower, any extras are ignored. Slots that symbols did not fill
// fall back to marker-word matching ("thượng <name>" / "hạ <name>"),
// independently per slot. A slot that still fails resolves to Default()
// with Resolved=false. Never errors, pure, no hidden state.
func ParseTrigrams(description string) Pair {
	p := Pair{
		Upper: Half{Trigram: Default()},
		Lower: Half{Trigram: Default()},
	}

	var found []Trigram
	for _, r := range description {
		if t, ok := bySymbol(string(r)); ok {
			found = append(found, t)
			if len(found) == 2 {
				break
			}
		}
	}
	if len(found) >= 1 {
		p.Upper = Half{Trigram: found[0], Resolved: true}
	}
	if len(found) >= 2 {
		p.Lower = Half{Trigram: found[1], Resolved: true}
		return p
	}

	toks := tokenize(description)
	for i := 0; i+1 < len(toks); i++ {
		w := strings.ToLower(toks[i])
		switch {
		case upperMarkers[w] && !p.Upper.Resolved:
			if t, ok := Lookup(toks[i+1]); ok {
				p.Upper = Half{Trigram: t, Resolved: true}
			}
		case lowerMarkers[w] && !p.Lower.Resolved:
			if t, ok := Lookup(toks[i+1]); ok {
				p.Lower = Half{Trigram: t, Resolved: true}
			}
		}
	}
	return p
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '(', ')', '-', ',', '.', ':', ';', '"', '\'':
			return true
		}
		return false
	})
}

// BuildLineSequence lays out a hexagram for display: 6 lines top-to-bottom.
// Trigram lines are stored bottom-to-top, so each half is reversed, upper
// half first. Pure, no failure mode.
func BuildLineSequence(upper, lower Trigram) [6]Line {
	var out [6]Line
	for i := 0; i < 3; i++ {
		out[i] = upper.Lines[2-i]
		out[3+i] = lower.Lines[2-i]
	}
	return out
}
