package shape

import (
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

// quadrant glyphs indexed by dot mask: 1 top-left, 2 top-right, 4 bottom-left, 8 bottom-right
var quadrants = [16]string{
	" ", "▘", "▝", "▀", "▖", "▌", "▞", "▛",
	"▗", "▚", "▐", "▜", "▄", "▙", "▟", "█",
}

var quadrantMask = func() map[string]uint8 {
	m := make(map[string]uint8, len(quadrants))
	for i, g := range quadrants {
		m[g] = uint8(i)
	}
	return m
}()

// HighRes draws on a shape at twice its resolution in both axes, each cell
// holding a 2x2 group of dots rendered as a quadrant block glyph. Dots of one
// cell share its colors
type HighRes struct {
	s      Shape
	Fg, Bg pixel.Color
}

// NewHighRes wraps s; set dots are drawn in fg over bg
func NewHighRes(s Shape, fg, bg pixel.Color) *HighRes {
	return &HighRes{s: s, Fg: fg, Bg: bg}
}

// Size returns the dot grid dimensions
func (h *HighRes) Size() (int, int) {
	w, ht := h.s.Size()
	return 2 * w, 2 * ht
}

func dotBit(x, y int) uint8 {
	return 1 << ((y&1)<<1 | x&1)
}

// Dot reports whether the dot at (x, y) is set. ok is false when the cell
// holds something other than a block glyph
func (h *HighRes) Dot(x, y int) (set, ok bool) {
	w, ht := h.Size()
	if x < 0 || y < 0 || x >= w || y >= ht {
		return false, false
	}
	mask, ok := quadrantMask[Raw(h.s, x/2, y/2).Char]
	if !ok {
		return false, false
	}
	return mask&dotBit(x, y) != 0, true
}

// SetDot sets or clears one dot. A cell holding a non-block glyph is treated
// as empty and replaced
func (h *HighRes) SetDot(x, y int, on bool) error {
	w, ht := h.Size()
	if x < 0 || y < 0 || x >= w || y >= ht {
		return nil
	}
	mask := quadrantMask[Raw(h.s, x/2, y/2).Char]
	if on {
		mask |= dotBit(x, y)
	} else {
		mask &^= dotBit(x, y)
	}
	return h.s.Set(x/2, y/2, pixel.Pixel{Char: quadrants[mask], Fg: h.Fg, Bg: h.Bg})
}

func (h *HighRes) plot(on bool) plotFunc {
	return func(x, y int) error { return h.SetDot(x, y, on) }
}

// Line sets, or with on false clears, the dots of a line in dot coordinates
func (h *HighRes) Line(x1, y1, x2, y2 int, on bool) error {
	return line(x1, y1, x2, y2, h.plot(on))
}

// Rect draws the outline of r in dot coordinates
func (h *HighRes) Rect(r dirty.Rect, on bool) error {
	return outline(r, h.plot(on))
}

// Ellipse draws the ellipse inscribed in r, in dot coordinates
func (h *HighRes) Ellipse(r dirty.Rect, fill bool) error {
	return ellipse(r, fill, h.plot(true))
}
