package terminal

import (
	"bytes"
	"io"
	"sync"

	"github.com/lixenwraith/cellforge/backend"
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/parameter"
	"github.com/lixenwraith/cellforge/pixel"
)

// Mode selects how much terminal state the emitter trusts between cells
type Mode uint8

const (
	// ModeDiff skips unchanged cells and emits only cursor and style deltas
	ModeDiff Mode = iota
	// ModeNaive positions and fully styles every cell it is given
	ModeNaive
)

type stagedCell struct {
	idx int
	p   pixel.Pixel
}

// Emitter is the ANSI backend. A frame is built in memory and written to the
// output in a single call at EndFrame
type Emitter struct {
	mu        sync.Mutex
	out       io.Writer
	buf       bytes.Buffer
	colorMode ColorMode
	mode      Mode

	// front mirrors what the terminal shows; Char "" marks an unknown cell
	front  []pixel.Pixel
	width  int
	height int
	staged []stagedCell

	state   backend.State // committed after the last successful flush
	pending backend.State
	inFrame bool
}

// NewEmitter creates an emitter writing to w
func NewEmitter(w io.Writer, colorMode ColorMode, mode Mode) *Emitter {
	e := &Emitter{out: w, colorMode: colorMode, mode: mode}
	e.buf.Grow(parameter.OutputBufferSize)
	return e
}

// ColorMode returns the configured color capability
func (e *Emitter) ColorMode() ColorMode {
	return e.colorMode
}

// State returns the cursor and style committed by the last successful frame
func (e *Emitter) State() backend.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// resize updates buffer dimensions; every cell becomes unknown
func (e *Emitter) resize(width, height int) {
	size := width * height
	if cap(e.front) < size {
		e.front = make([]pixel.Pixel, size)
	} else {
		e.front = e.front[:size]
	}
	e.width = width
	e.height = height
	e.invalidateFront()
}

func (e *Emitter) invalidateFront() {
	for i := range e.front {
		e.front[i] = pixel.Pixel{}
	}
}

// Invalidate forgets the terminal contents, cursor and style, forcing the
// next frame to rewrite every cell it is given
func (e *Emitter) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidateFront()
	e.state.Invalidate()
}

func (e *Emitter) BeginFrame(width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width != e.width || height != e.height {
		e.resize(width, height)
		e.state.Invalidate()
	}
	e.buf.Reset()
	e.staged = e.staged[:0]
	e.pending = e.state
	e.inFrame = true
	return nil
}

func (e *Emitter) CursorMove(x, y int, relative bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if relative {
		x += e.pending.CursorX
		y += e.pending.CursorY
	}
	e.moveCursor(x, y)
}

func (e *Emitter) SetColors(fg, bg pixel.Color, eff pixel.Effects) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writeStyle(fg, bg, eff.Terminal())
}

func (e *Emitter) WriteCell(x, y int, p pixel.Pixel) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writeCell(x, y, p)
}

// WriteRect holds the lock across the region
func (e *Emitter) WriteRect(r dirty.Rect, src backend.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r = r.Clip(e.width, e.height)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			e.writeCell(x, y, src.Get(x, y))
		}
	}
}

func (e *Emitter) writeCell(x, y int, p pixel.Pixel) {
	if !e.inFrame || x < 0 || y < 0 || x >= e.width || y >= e.height {
		return
	}
	idx := y*e.width + x
	p = backend.Resolve(p)

	if p.IsContinuation() {
		// drawn by the glyph to its left
		e.staged = append(e.staged, stagedCell{idx, p})
		return
	}
	if e.mode == ModeDiff && e.front[idx] == p {
		return
	}

	char := p.Char
	if u := p.Effects.Unicode(); u != 0 {
		char = pixel.ApplyUnicodeEffects(char, u)
	}
	w := pixel.Width(char)
	if w == 2 && x+1 >= e.width {
		// a wide glyph cannot fit in the last column
		char, w = pixel.Empty, 1
	}

	if e.mode == ModeNaive {
		writeCursorPos(&e.buf, x, y)
		e.pending.CursorX, e.pending.CursorY, e.pending.CursorValid = x, y, true
		e.pending.StyleValid = false
	} else {
		e.moveCursor(x, y)
	}
	e.writeStyle(p.Fg, p.Bg, p.Effects.Terminal())

	if len(char) == 1 {
		e.buf.WriteByte(char[0])
	} else {
		e.buf.WriteString(char)
	}
	e.staged = append(e.staged, stagedCell{idx, p})

	if w == 0 {
		e.pending.CursorValid = false
		return
	}
	e.pending.CursorX += w
	if w == 2 {
		cont := p
		cont.Char = pixel.Continuation
		e.staged = append(e.staged, stagedCell{idx + 1, cont})
	}
}

// moveCursor positions the cursor, preferring a relative forward move on the
// same row. Forward moves never overwrite cells
func (e *Emitter) moveCursor(x, y int) {
	st := &e.pending
	if st.CursorValid && x == st.CursorX && y == st.CursorY {
		return
	}
	if st.CursorValid && y == st.CursorY && x > st.CursorX {
		writeCursorForward(&e.buf, x-st.CursorX)
	} else {
		writeCursorPos(&e.buf, x, y)
	}
	st.CursorX, st.CursorY, st.CursorValid = x, y, true
}

// writeStyle emits the SGR needed to go from the pending style to the target.
// Without a known style it resets and states everything
func (e *Emitter) writeStyle(fg, bg pixel.Color, eff pixel.Effects) {
	st := &e.pending
	s := sgrWriter{w: &e.buf}

	if !st.StyleValid {
		s.param(0)
		eff.Each(func(f pixel.Effects) {
			s.param(pixel.EffectOn[f])
		})
		if !fg.IsDefault() {
			e.writeColor(&s, fg, true)
		}
		if !bg.IsDefault() {
			e.writeColor(&s, bg, false)
		}
		s.end()
		st.Fg, st.Bg, st.Effects, st.StyleValid = fg, bg, eff, true
		return
	}

	if eff != st.Effects {
		removed := st.Effects &^ eff
		var offs []int
		removed.Each(func(f pixel.Effects) {
			code := pixel.EffectOff[f]
			for _, c := range offs {
				if c == code {
					return
				}
			}
			offs = append(offs, code)
			s.param(code)
		})
		// effects still wanted but cleared by a shared off code come back first
		(eff & st.Effects).Each(func(f pixel.Effects) {
			for _, c := range offs {
				if c == pixel.EffectOff[f] {
					s.param(pixel.EffectOn[f])
					return
				}
			}
		})
		(eff &^ st.Effects).Each(func(f pixel.Effects) {
			s.param(pixel.EffectOn[f])
		})
	}
	if fg != st.Fg {
		e.writeColor(&s, fg, true)
	}
	if bg != st.Bg {
		e.writeColor(&s, bg, false)
	}
	s.end()
	st.Fg, st.Bg, st.Effects = fg, bg, eff
}

// writeColor emits one color as SGR parameters; defaults use 39/49
func (e *Emitter) writeColor(s *sgrWriter, c pixel.Color, fg bool) {
	if c.Kind != pixel.KindRGB {
		if fg {
			s.param(39)
		} else {
			s.param(49)
		}
		return
	}
	if e.colorMode == ColorModeTrueColor {
		if fg {
			s.raw(sgrFgRGB)
		} else {
			s.raw(sgrBgRGB)
		}
		writeInt(s.w, int(c.R))
		s.w.WriteByte(';')
		writeInt(s.w, int(c.G))
		s.w.WriteByte(';')
		writeInt(s.w, int(c.B))
		return
	}
	if fg {
		s.raw(sgrFg256)
	} else {
		s.raw(sgrBg256)
	}
	writeInt(s.w, int(RGBTo256(c)))
}

// EndFrame writes the buffered frame in one call. On failure nothing from the
// frame is committed; the cursor, style and cells the frame touched become
// unknown since part of the output may have reached the terminal
func (e *Emitter) EndFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inFrame {
		return nil
	}
	e.inFrame = false

	if e.buf.Len() > 0 {
		if !e.pending.StyleValid || e.pending.Effects != pixel.EffectNone ||
			!e.pending.Fg.IsDefault() || !e.pending.Bg.IsDefault() {
			e.buf.Write(csiSGR0)
			e.pending.Fg, e.pending.Bg, e.pending.Effects = pixel.DefaultFg, pixel.DefaultBg, pixel.EffectNone
			e.pending.StyleValid = true
		}
		if _, err := e.out.Write(e.buf.Bytes()); err != nil {
			for _, sc := range e.staged {
				e.front[sc.idx] = pixel.Pixel{}
			}
			e.state.Invalidate()
			e.staged = e.staged[:0]
			return &backend.WriteError{Backend: "terminal", Err: err}
		}
	}

	for _, sc := range e.staged {
		e.front[sc.idx] = sc.p
	}
	e.staged = e.staged[:0]
	e.state = e.pending
	return nil
}

// clear writes a clear screen with default colors and forgets the front buffer
func (e *Emitter) clear() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var b bytes.Buffer
	b.Write(csiSGR0)
	b.Write(csiClear)
	if _, err := e.out.Write(b.Bytes()); err != nil {
		return &backend.WriteError{Backend: "terminal", Err: err}
	}
	for i := range e.front {
		e.front[i] = pixel.Blank
	}
	e.state = backend.State{
		CursorValid: true,
		Fg:          pixel.DefaultFg,
		Bg:          pixel.DefaultBg,
		StyleValid:  true,
	}
	return nil
}
