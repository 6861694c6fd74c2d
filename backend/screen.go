package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cellforge/pixel"
)

// Screen emits frames through a tcell screen; tcell owns diffing and
// terminfo, Show publishes the frame
type Screen struct {
	screen  tcell.Screen
	state   State
	pending State
}

// NewScreen wraps an initialized tcell screen
func NewScreen(s tcell.Screen) *Screen {
	return &Screen{screen: s}
}

// TcellScreen returns the wrapped screen
func (s *Screen) TcellScreen() tcell.Screen {
	return s.screen
}

func (s *Screen) BeginFrame(width, height int) error {
	s.pending = s.state
	return nil
}

func (s *Screen) CursorMove(x, y int, relative bool) {
	if relative {
		x += s.pending.CursorX
		y += s.pending.CursorY
	}
	s.pending.CursorX, s.pending.CursorY = x, y
	s.pending.CursorValid = true
}

func (s *Screen) SetColors(fg, bg pixel.Color, eff pixel.Effects) {
	s.pending.Fg, s.pending.Bg, s.pending.Effects = fg, bg, eff
	s.pending.StyleValid = true
}

func (s *Screen) WriteCell(x, y int, p pixel.Pixel) {
	if p.IsContinuation() {
		return
	}
	p = Resolve(p)
	s.SetColors(p.Fg, p.Bg, p.Effects)

	char := p.Char
	if u := p.Effects.Unicode(); u != 0 {
		char = pixel.ApplyUnicodeEffects(char, u)
	}
	runes := []rune(char)
	if len(runes) == 0 {
		runes = []rune{' '}
	}
	s.screen.SetContent(x, y, runes[0], runes[1:], Style(p.Fg, p.Bg, p.Effects))
	s.CursorMove(x+max(p.Width(), 1), y, false)
}

func (s *Screen) EndFrame() error {
	s.screen.Show()
	s.state = s.pending
	return nil
}

// Style converts cell attributes into a tcell style
func Style(fg, bg pixel.Color, eff pixel.Effects) tcell.Style {
	st := tcell.StyleDefault.
		Foreground(TcellColor(fg)).
		Background(TcellColor(bg))
	if eff.IsTransparent() {
		return st
	}
	return st.
		Bold(eff.Has(pixel.EffectBold)).
		Dim(eff.Has(pixel.EffectFaint)).
		Italic(eff.Has(pixel.EffectItalic)).
		Underline(eff&(pixel.EffectUnderline|pixel.EffectDoubleUnderline) != 0).
		Blink(eff&(pixel.EffectBlink|pixel.EffectFastBlink) != 0).
		Reverse(eff.Has(pixel.EffectReverse)).
		StrikeThrough(eff.Has(pixel.EffectCrossedOut))
}

// TcellColor maps a color onto tcell; sentinels become the terminal default
func TcellColor(c pixel.Color) tcell.Color {
	if c.Kind != pixel.KindRGB {
		return tcell.ColorReset
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
