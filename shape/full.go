package shape

import (
	"github.com/lixenwraith/cellforge/pixel"
)

// FullShape stores char, foreground, background and effects in independent planes
type FullShape struct {
	base
	chars   []string
	fg      []pixel.Color
	bg      []pixel.Color
	effects []pixel.Effects

	// marks are opaque anchors (text flow positions and the like) keyed by cell index
	marks map[int][]any

	pre  Processor
	undo *undoLog
}

// NewFull creates a shape filled with blank cells in terminal default colors
func NewFull(width, height int) *FullShape {
	return NewFullFill(width, height, pixel.Blank)
}

// NewFullFill creates a shape with every cell set to fill
func NewFullFill(width, height int, fill pixel.Pixel) *FullShape {
	s := &FullShape{base: newBase(width, height)}
	s.allocate(s.width * s.height)
	s.fill(fill)
	s.tiles.MarkAll()
	return s
}

func (s *FullShape) allocate(n int) {
	s.chars = make([]string, n)
	s.fg = make([]pixel.Color, n)
	s.bg = make([]pixel.Color, n)
	s.effects = make([]pixel.Effects, n)
}

func (s *FullShape) fill(p pixel.Pixel) {
	for i := range s.chars {
		s.chars[i] = p.Char
		s.fg[i] = p.Fg
		s.bg[i] = p.Bg
		s.effects[i] = p.Effects
	}
}

// Kind returns KindFull
func (s *FullShape) Kind() Kind { return KindFull }

// GetRaw reads the stored planes, ignoring the read-time transform
func (s *FullShape) GetRaw(x, y int) pixel.Pixel {
	idx, ok := s.index(x, y)
	if !ok {
		return pixel.TransparentPixel
	}
	return s.at(idx)
}

func (s *FullShape) at(idx int) pixel.Pixel {
	return pixel.Pixel{Char: s.chars[idx], Fg: s.fg[idx], Bg: s.bg[idx], Effects: s.effects[idx]}
}

// Get reads a cell through the read-time transform, if one is installed
func (s *FullShape) Get(x, y int) pixel.Pixel {
	p := s.GetRaw(x, y)
	if s.lazy != nil && p.Char != pixel.Continuation {
		if _, ok := s.index(x, y); ok {
			p = s.lazy.Process(s, x, y, p)
		}
	}
	return p
}

// SetPretransform installs a write-time processor whose output is what gets stored
func (s *FullShape) SetPretransform(p Processor) {
	s.pre = p
}

// Set writes all four channels literally, TRANSPARENT included. A double-width
// glyph also writes a continuation cell; one at the right edge is rejected and
// leaves the shape unchanged
func (s *FullShape) Set(x, y int, p pixel.Pixel) error {
	idx, ok := s.index(x, y)
	if !ok {
		return s.outOfRange(x, y)
	}
	if s.pre != nil {
		p = s.pre.Process(s, x, y, p)
	}

	wide := p.Width() == 2
	if wide && x+1 >= s.width {
		return s.outOfRange(x+1, y)
	}

	s.undo.begin()
	defer s.undo.end()

	s.detachWide(x, idx, wide)
	s.put(idx, p)
	s.tiles.Mark(x, y)

	if wide {
		next := idx + 1
		// the cell being covered may itself start a wide glyph
		if x+2 < s.width && pixel.IsWide(s.chars[next]) && s.chars[next+1] == pixel.Continuation {
			s.blank(next + 1)
			s.tiles.Mark(x+2, y)
		}
		s.moveMarks(next, idx)
		s.put(next, pixel.Pixel{Char: pixel.Continuation, Fg: p.Fg, Bg: p.Bg, Effects: p.Effects})
		s.tiles.Mark(x+1, y)
	}
	return nil
}

// Stamp writes only the non-TRANSPARENT channels of p
func (s *FullShape) Stamp(x, y int, p pixel.Pixel) error {
	if _, ok := s.index(x, y); !ok {
		return s.outOfRange(x, y)
	}
	return s.Set(x, y, p.Merge(s.GetRaw(x, y)))
}

// detachWide blanks the orphaned half when a write splits an existing wide glyph
func (s *FullShape) detachWide(x, idx int, wide bool) {
	old := s.chars[idx]
	if old == pixel.Continuation && x > 0 && pixel.IsWide(s.chars[idx-1]) {
		s.blank(idx - 1)
		s.tiles.Mark(x-1, idx/s.width)
	}
	if !wide && pixel.IsWide(old) && x+1 < s.width && s.chars[idx+1] == pixel.Continuation {
		s.blank(idx + 1)
		s.tiles.Mark(x+1, idx/s.width)
	}
}

func (s *FullShape) blank(idx int) {
	p := s.at(idx)
	p.Char = pixel.Empty
	s.put(idx, p)
}

// put stores a pixel and journals it for undo
func (s *FullShape) put(idx int, p pixel.Pixel) {
	s.undo.record(idx, s.at(idx), p)
	s.chars[idx] = p.Char
	s.fg[idx] = p.Fg
	s.bg[idx] = p.Bg
	s.effects[idx] = p.Effects
}

// AddMark attaches an opaque anchor to a cell
func (s *FullShape) AddMark(x, y int, m any) error {
	idx, ok := s.index(x, y)
	if !ok {
		return s.outOfRange(x, y)
	}
	if s.marks == nil {
		s.marks = make(map[int][]any)
	}
	s.marks[idx] = append(s.marks[idx], m)
	return nil
}

// Marks returns the anchors attached to a cell
func (s *FullShape) Marks(x, y int) []any {
	idx, ok := s.index(x, y)
	if !ok {
		return nil
	}
	return s.marks[idx]
}

// ClearMarks detaches every anchor from a cell
func (s *FullShape) ClearMarks(x, y int) {
	if idx, ok := s.index(x, y); ok {
		delete(s.marks, idx)
	}
}

func (s *FullShape) moveMarks(from, to int) {
	m, ok := s.marks[from]
	if !ok {
		return
	}
	s.marks[to] = append(s.marks[to], m...)
	delete(s.marks, from)
}

// Clear resets every cell to blank, or to TRANSPARENT when transparent is set
func (s *FullShape) Clear(transparent bool) {
	fill := pixel.Blank
	if transparent {
		fill = pixel.TransparentPixel
	}
	s.undo.begin()
	for i := range s.chars {
		s.put(i, fill)
	}
	s.undo.end()
	s.tiles.MarkAll()
}

// Resize changes the dimensions, keeping the overlapping region. New cells are
// blank; marks outside the new bounds move to the nearest remaining cell
func (s *FullShape) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	old := *s
	s.width, s.height = width, height
	s.allocate(width * height)
	s.fill(pixel.Blank)
	for y := 0; y < min(height, old.height); y++ {
		for x := 0; x < min(width, old.width); x++ {
			oi, ni := y*old.width+x, y*width+x
			s.chars[ni] = old.chars[oi]
			s.fg[ni] = old.fg[oi]
			s.bg[ni] = old.bg[oi]
			s.effects[ni] = old.effects[oi]
		}
		// a wide glyph cut at the new right edge has lost its continuation
		if last := y*width + width - 1; width > 0 && width < old.width && pixel.IsWide(s.chars[last]) {
			s.chars[last] = pixel.Empty
		}
	}
	if len(old.marks) > 0 {
		s.marks = make(map[int][]any, len(old.marks))
		if width > 0 && height > 0 {
			for oi, m := range old.marks {
				x := min(oi%old.width, width-1)
				y := min(oi/old.width, height-1)
				ni := y*width + x
				s.marks[ni] = append(s.marks[ni], m...)
			}
		}
	}
	// undo journal indices refer to the old layout
	if s.undo != nil {
		s.undo = newUndoLog(s.undo.depth)
	}
	s.tiles.Resize(width, height)
}

// Copy returns an independent FullShape with the same raw content
func (s *FullShape) Copy() *FullShape {
	c := &FullShape{base: newBase(s.width, s.height)}
	c.chars = append([]string(nil), s.chars...)
	c.fg = append([]pixel.Color(nil), s.fg...)
	c.bg = append([]pixel.Color(nil), s.bg...)
	c.effects = append([]pixel.Effects(nil), s.effects...)
	c.tiles.MarkAll()
	return c
}
