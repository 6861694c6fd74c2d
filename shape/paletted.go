package shape

import (
	"github.com/lixenwraith/cellforge/parameter"
	"github.com/lixenwraith/cellforge/pixel"
)

// PalettedShape stores one index per cell resolved through a color map.
// Indices missing from the map read as TRANSPARENT
type PalettedShape struct {
	base
	data    []int
	palette map[int]pixel.Pixel
	reverse map[pixel.Pixel]int
	next    int
}

// NewPaletted creates a shape with every cell at index 0
func NewPaletted(width, height int, palette map[int]pixel.Pixel) *PalettedShape {
	s := &PalettedShape{
		base:    newBase(width, height),
		palette: make(map[int]pixel.Pixel, len(palette)),
		reverse: make(map[pixel.Pixel]int, len(palette)),
		next:    parameter.PaletteFirstFree,
	}
	s.data = make([]int, s.width*s.height)
	for idx, p := range palette {
		s.SetEntry(idx, p)
	}
	s.tiles.MarkAll()
	return s
}

// NewPalettedFromText builds a shape where each rune is its own index. Runes
// without an entry in colors read as TRANSPARENT
func NewPalettedFromText(lines []string, colors map[rune]pixel.Pixel) *PalettedShape {
	w := 0
	rows := make([][]rune, len(lines))
	for i, l := range lines {
		rows[i] = []rune(l)
		w = max(w, len(rows[i]))
	}
	palette := make(map[int]pixel.Pixel, len(colors))
	for r, p := range colors {
		palette[int(r)] = p
	}
	s := NewPaletted(w, len(lines), palette)
	for y, row := range rows {
		for x, r := range row {
			s.data[y*w+x] = int(r)
		}
	}
	return s
}

// Kind returns KindPaletted
func (s *PalettedShape) Kind() Kind { return KindPaletted }

// SetEntry maps idx to p. Cells holding idx change on their next read
func (s *PalettedShape) SetEntry(idx int, p pixel.Pixel) {
	if old, ok := s.palette[idx]; ok && s.reverse[old] == idx {
		delete(s.reverse, old)
	}
	s.palette[idx] = p
	if _, ok := s.reverse[p]; !ok {
		s.reverse[p] = idx
	}
	if idx >= s.next {
		s.next = idx + 1
	}
	s.markIndex(idx)
}

// Entry returns the pixel mapped to idx
func (s *PalettedShape) Entry(idx int) (pixel.Pixel, bool) {
	p, ok := s.palette[idx]
	return p, ok
}

// Index returns the raw index at (x, y)
func (s *PalettedShape) Index(x, y int) int {
	idx, ok := s.index(x, y)
	if !ok {
		return 0
	}
	return s.data[idx]
}

// SetIndex stores a raw index; an index with no entry reads as TRANSPARENT
func (s *PalettedShape) SetIndex(x, y, v int) error {
	idx, ok := s.index(x, y)
	if !ok {
		return s.outOfRange(x, y)
	}
	s.data[idx] = v
	s.tiles.Mark(x, y)
	return nil
}

// GetRaw resolves (x, y) through the palette
func (s *PalettedShape) GetRaw(x, y int) pixel.Pixel {
	idx, ok := s.index(x, y)
	if !ok {
		return pixel.TransparentPixel
	}
	p, ok := s.palette[s.data[idx]]
	if !ok {
		return pixel.TransparentPixel
	}
	return p
}

// Get resolves (x, y) through the palette and the read-time transform
func (s *PalettedShape) Get(x, y int) pixel.Pixel {
	p := s.GetRaw(x, y)
	if _, ok := s.index(x, y); ok && s.lazy != nil && !p.IsContinuation() {
		p = s.lazy.Process(s, x, y, p)
	}
	return p
}

// Set stores the index already mapped to p, inserting p into the palette first
// when no entry matches. Wide glyphs also claim the next cell as continuation
func (s *PalettedShape) Set(x, y int, p pixel.Pixel) error {
	idx, ok := s.index(x, y)
	if !ok {
		return s.outOfRange(x, y)
	}
	wide := p.Width() == 2
	if wide && x+1 >= s.width {
		return s.outOfRange(x+1, y)
	}
	s.data[idx] = s.lookup(p)
	s.tiles.Mark(x, y)
	if wide {
		s.data[idx+1] = s.lookup(pixel.Pixel{Char: pixel.Continuation, Fg: p.Fg, Bg: p.Bg, Effects: p.Effects})
		s.tiles.Mark(x+1, y)
	}
	return nil
}

func (s *PalettedShape) lookup(p pixel.Pixel) int {
	if idx, ok := s.reverse[p]; ok {
		return idx
	}
	idx := s.next
	s.SetEntry(idx, p)
	return idx
}

// markIndex flags every cell currently holding idx
func (s *PalettedShape) markIndex(idx int) {
	for i, v := range s.data {
		if v == idx {
			s.tiles.Mark(i%s.width, i/s.width)
		}
	}
}
