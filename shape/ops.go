package shape

import (
	"github.com/lixenwraith/cellforge/pixel"
)

// Promote copies any shape into a new FullShape using raw reads
func Promote(s Shape) *FullShape {
	if f, ok := s.(*FullShape); ok {
		return f.Copy()
	}
	w, h := s.Size()
	f := NewFull(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.put(y*w+x, Raw(s, x, y))
		}
	}
	return f
}

// Fill writes p into every cell of s
func Fill(s Shape, p pixel.Pixel) error {
	w, h := s.Size()
	step := max(p.Width(), 1)
	for y := 0; y < h; y++ {
		for x := 0; x+step <= w; x += step {
			if err := s.Set(x, y, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteString writes text left to right starting at (x, y), one grapheme per
// cell (two for wide glyphs). It stops at the right edge and returns the column
// after the last glyph written
func WriteString(s Shape, x, y int, text string, fg, bg pixel.Color, eff pixel.Effects) (int, error) {
	w, _ := s.Size()
	for _, g := range pixel.Graphemes(text) {
		adv := max(pixel.Width(g), 1)
		if x+adv > w {
			break
		}
		if err := s.Set(x, y, pixel.Pixel{Char: g, Fg: fg, Bg: bg, Effects: eff}); err != nil {
			return x, err
		}
		x += adv
	}
	return x, nil
}
