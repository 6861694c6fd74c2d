package backend

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
</head>
<body>
  <div style="font-family: monospace; width: %dch; height: %dem; line-height: 1em; background: %s; position: relative; white-space: pre">
`

const htmlFooter = `  </div>
</body>
</html>
`

// HTML renders each frame as a standalone document of absolutely positioned
// spans, one per run of equally styled cells
type HTML struct {
	mu  sync.Mutex
	out io.Writer
	buf bytes.Buffer

	// CSS values used for DEFAULT_FG and DEFAULT_BG
	DefaultForeground string
	DefaultBackground string

	width, height int
	state         State
	pending       State

	open  bool
	style string
}

// NewHTML creates an HTML backend writing complete documents to w
func NewHTML(w io.Writer) *HTML {
	return &HTML{
		out:               w,
		DefaultForeground: "white",
		DefaultBackground: "black",
	}
}

func (h *HTML) BeginFrame(width, height int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.buf.Reset()
	fmt.Fprintf(&h.buf, htmlHeader, width, height, h.DefaultBackground)
	h.pending = h.state
	h.pending.Invalidate()
	h.open = false
	return nil
}

func (h *HTML) CursorMove(x, y int, relative bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if relative {
		x += h.pending.CursorX
		y += h.pending.CursorY
	}
	if !h.pending.CursorValid || x != h.pending.CursorX || y != h.pending.CursorY {
		h.closeSpan()
	}
	h.pending.CursorX, h.pending.CursorY = x, y
	h.pending.CursorValid = true
}

func (h *HTML) SetColors(fg, bg pixel.Color, eff pixel.Effects) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setColors(fg, bg, eff)
}

func (h *HTML) setColors(fg, bg pixel.Color, eff pixel.Effects) {
	p := &h.pending
	if p.StyleValid && p.Fg == fg && p.Bg == bg && p.Effects == eff {
		return
	}
	p.Fg, p.Bg, p.Effects = fg, bg, eff
	p.StyleValid = true
	h.closeSpan()
}

func (h *HTML) WriteCell(x, y int, p pixel.Pixel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeCell(x, y, p)
}

// WriteRect keeps the lock across the whole region
func (h *HTML) WriteRect(r dirty.Rect, src Source) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			h.writeCell(x, y, src.Get(x, y))
		}
	}
}

func (h *HTML) writeCell(x, y int, p pixel.Pixel) {
	if p.IsContinuation() {
		return
	}
	p = Resolve(p)
	if !h.pending.CursorValid || x != h.pending.CursorX || y != h.pending.CursorY {
		h.closeSpan()
		h.pending.CursorX, h.pending.CursorY = x, y
		h.pending.CursorValid = true
	}
	h.setColors(p.Fg, p.Bg, p.Effects)

	char := p.Char
	if u := p.Effects.Unicode(); u != 0 {
		char = pixel.ApplyUnicodeEffects(char, u)
	}
	if !h.open {
		h.style = h.css(x, y)
		fmt.Fprintf(&h.buf, `<span style="%s">`, h.style)
		h.open = true
	}
	h.buf.WriteString(html.EscapeString(char))
	h.pending.CursorX += max(p.Width(), 1)
}

func (h *HTML) closeSpan() {
	if h.open {
		h.buf.WriteString("</span>\n")
		h.open = false
	}
}

// css builds the inline style for a span starting at (x, y)
func (h *HTML) css(x, y int) string {
	st := h.pending
	color := h.cssColor(st.Fg, h.DefaultForeground)
	background := h.cssColor(st.Bg, h.DefaultBackground)
	if st.Effects.Has(pixel.EffectFaint) && st.Fg.Kind == pixel.KindRGB {
		color = fmt.Sprintf("rgba(%d, %d, %d, 0.5)", st.Fg.R, st.Fg.G, st.Fg.B)
	}
	if st.Effects.Has(pixel.EffectReverse) {
		color, background = background, color
	}
	if st.Effects.Has(pixel.EffectConceal) {
		color = background
	}

	parts := []string{
		"position: absolute",
		fmt.Sprintf("left: %dch", x),
		fmt.Sprintf("top: %dem", y),
		"color: " + color,
		"background: " + background,
	}
	if st.Effects.Has(pixel.EffectBold) {
		parts = append(parts, "font-weight: bold")
	}
	if st.Effects.Has(pixel.EffectItalic) {
		parts = append(parts, "font-style: italic")
	}
	if deco := decoration(st.Effects); deco != "" {
		parts = append(parts, "text-decoration: "+deco)
	}
	return strings.Join(parts, "; ")
}

func decoration(eff pixel.Effects) string {
	var d []string
	switch {
	case eff.Has(pixel.EffectDoubleUnderline):
		d = append(d, "underline double")
	case eff.Has(pixel.EffectUnderline):
		d = append(d, "underline")
	}
	if eff.Has(pixel.EffectOverlined) {
		d = append(d, "overline")
	}
	if eff.Has(pixel.EffectCrossedOut) {
		d = append(d, "line-through")
	}
	if eff&(pixel.EffectBlink|pixel.EffectFastBlink) != 0 {
		d = append(d, "blink")
	}
	return strings.Join(d, " ")
}

func (h *HTML) cssColor(c pixel.Color, def string) string {
	if c.Kind == pixel.KindRGB {
		return c.Hex()
	}
	return def
}

// EndFrame writes the finished document in one call
func (h *HTML) EndFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeSpan()
	h.buf.WriteString(htmlFooter)
	if _, err := h.out.Write(h.buf.Bytes()); err != nil {
		return &WriteError{Backend: "html", Err: err}
	}
	h.state = h.pending
	return nil
}
