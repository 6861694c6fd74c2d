package pixel

import "fmt"

// Special char values
const (
	Empty     = " "
	FullBlock = "█"

	// TransparentChar defers the char channel to the layer below
	TransparentChar = "\x00transparent"

	// Continuation marks the trailing cell of a double-width glyph
	Continuation = "\x00continuation"
)

// Pixel is one cell: a grapheme cluster (or sentinel) plus colors and effects
type Pixel struct {
	Char    string
	Fg      Color
	Bg      Color
	Effects Effects
}

// TransparentPixel has every channel set to TRANSPARENT
var TransparentPixel = Pixel{
	Char:    TransparentChar,
	Fg:      Transparent,
	Bg:      Transparent,
	Effects: EffectsTransparent,
}

// Blank is an empty cell in terminal default colors
var Blank = Pixel{
	Char: Empty,
	Fg:   DefaultFg,
	Bg:   DefaultBg,
}

// New builds an opaque pixel
func New(char string, fg, bg Color, eff Effects) Pixel {
	return Pixel{Char: char, Fg: fg, Bg: bg, Effects: eff}
}

// IsContinuation reports whether p is the second half of a wide glyph
func (p Pixel) IsContinuation() bool {
	return p.Char == Continuation
}

// Resolved reports whether no channel is TRANSPARENT
func (p Pixel) Resolved() bool {
	return p.Char != TransparentChar && !p.Fg.IsTransparent() &&
		!p.Bg.IsTransparent() && !p.Effects.IsTransparent()
}

// IsConcrete reports whether no channel carries any sentinel
func (p Pixel) IsConcrete() bool {
	return p.Char != TransparentChar && p.Char != Continuation &&
		!p.Fg.IsSentinel() && !p.Bg.IsSentinel() && !p.Effects.IsTransparent()
}

// Merge fills p's TRANSPARENT channels from lower; channels already resolved are kept
func (p Pixel) Merge(lower Pixel) Pixel {
	if p.Char == TransparentChar {
		p.Char = lower.Char
	}
	if p.Fg.IsTransparent() {
		p.Fg = lower.Fg
	}
	if p.Bg.IsTransparent() {
		p.Bg = lower.Bg
	}
	if p.Effects.IsTransparent() {
		p.Effects = lower.Effects
	}
	return p
}

// Width returns the number of cells the pixel's glyph occupies
func (p Pixel) Width() int {
	switch p.Char {
	case TransparentChar, Continuation:
		return 0
	}
	return Width(p.Char)
}

func (p Pixel) String() string {
	char := p.Char
	switch char {
	case TransparentChar:
		char = "TRANSPARENT"
	case Continuation:
		char = "CONTINUATION"
	}
	return fmt.Sprintf("Pixel(%q, %v, %v, %v)", char, p.Fg, p.Bg, p.Effects)
}
