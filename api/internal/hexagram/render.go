package hexagram

import "strings"

// Size selects a display variant. Dimensions only affect presentation; the
// decoding contract is size-independent.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Dim is a fixed width/height/gap triple in pixels (kept for clients that
// render graphically) plus the bar width in cells for text rendering.
type Dim struct {
	Width  int
	Height int
	Gap    int
	Cells  int
}

var dims = map[Size]Dim{
	SizeSmall:  {Width: 32, Height: 4, Gap: 3, Cells: 5},
	SizeMedium: {Width: 48, Height: 6, Gap: 4, Cells: 7},
	SizeLarge:  {Width: 64, Height: 8, Gap: 6, Cells: 9},
}

// Dimensions returns the triple for a size, defaulting unknown values to
// medium.
func Dimensions(s Size) Dim {
	if d, ok := dims[s]; ok {
		return d
	}
	return dims[SizeMedium]
}

// RenderText draws a line sequence for a monospace chat display. A solid
// line is a continuous bar, a broken line has a one-cell gap in the middle.
func RenderText(seq [6]Line, size Size) string {
	d := Dimensions(size)
	half := (d.Cells - 1) / 2
	var b strings.Builder
	for i, ln := range seq {
		if i > 0 {
			b.WriteByte('\n')
		}
		if ln == Solid {
			b.WriteString(strings.Repeat("█", d.Cells))
		} else {
			b.WriteString(strings.Repeat("█", half))
			b.WriteString(" ")
			b.WriteString(strings.Repeat("█", d.Cells-half-1))
		}
	}
	return b.String()
}
