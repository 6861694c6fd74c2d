package shape

import (
	"math"

	"github.com/lixenwraith/cellforge/pixel"
)

// ValueShape stores a single intensity channel in [0, 1]. Reads synthesize a
// pixel: zero is a blank default cell, anything else a full block in the
// matching gray
type ValueShape struct {
	base
	data []float64
}

// NewValue creates a shape with every cell at intensity zero
func NewValue(width, height int) *ValueShape {
	s := &ValueShape{base: newBase(width, height)}
	s.data = make([]float64, s.width*s.height)
	s.tiles.MarkAll()
	return s
}

// NewValueFromBools builds a shape from rows of on/off cells
func NewValueFromBools(rows [][]bool) *ValueShape {
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	s := NewValue(w, len(rows))
	for y, r := range rows {
		for x, on := range r {
			if on {
				s.data[y*w+x] = 1
			}
		}
	}
	return s
}

// Kind returns KindValue
func (s *ValueShape) Kind() Kind { return KindValue }

// Value returns the raw intensity at (x, y)
func (s *ValueShape) Value(x, y int) float64 {
	idx, ok := s.index(x, y)
	if !ok {
		return 0
	}
	return s.data[idx]
}

// SetValue writes an intensity, clamped to [0, 1]
func (s *ValueShape) SetValue(x, y int, v float64) error {
	idx, ok := s.index(x, y)
	if !ok {
		return s.outOfRange(x, y)
	}
	if math.IsNaN(v) {
		v = 0
	}
	s.data[idx] = min(max(v, 0), 1)
	s.tiles.Mark(x, y)
	return nil
}

// GetRaw synthesizes the pixel for (x, y) without the read-time transform
func (s *ValueShape) GetRaw(x, y int) pixel.Pixel {
	idx, ok := s.index(x, y)
	if !ok {
		return pixel.TransparentPixel
	}
	return valuePixel(s.data[idx])
}

// Get synthesizes the pixel for (x, y)
func (s *ValueShape) Get(x, y int) pixel.Pixel {
	p := s.GetRaw(x, y)
	if _, ok := s.index(x, y); ok && s.lazy != nil {
		p = s.lazy.Process(s, x, y, p)
	}
	return p
}

// Set writes the value channel only: a blank or transparent char clears the
// cell, any glyph sets it to its foreground brightness (1 for default colors).
// A concrete background or any effect cannot be stored and is rejected
func (s *ValueShape) Set(x, y int, p pixel.Pixel) error {
	if (p.Bg.Kind == pixel.KindRGB) || (!p.Effects.IsTransparent() && p.Effects != pixel.EffectNone) {
		return &KindMismatchError{Kind: KindValue, Op: "color or effects channel write"}
	}
	var v float64
	switch {
	case p.Char == pixel.Empty || p.Char == pixel.TransparentChar || p.Char == "":
		v = 0
	case p.Fg.Kind == pixel.KindRGB:
		v = p.Fg.Luminance()
	default:
		v = 1
	}
	return s.SetValue(x, y, v)
}

func valuePixel(v float64) pixel.Pixel {
	if v <= 0 {
		return pixel.Blank
	}
	g := uint8(math.Round(v * 255))
	return pixel.Pixel{Char: pixel.FullBlock, Fg: pixel.RGB(g, g, g), Bg: pixel.DefaultBg}
}
