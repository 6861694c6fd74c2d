package backend

import (
	"strings"

	"github.com/lixenwraith/cellforge/pixel"
)

// Grid is a plain cell matrix, the common currency of Memory and Replay
type Grid struct {
	Width, Height int
	Cells         []pixel.Pixel
}

// NewGrid creates a grid of blank cells
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height, Cells: make([]pixel.Pixel, width*height)}
	for i := range g.Cells {
		g.Cells[i] = pixel.Blank
	}
	return g
}

// Get returns the cell at (x, y), or a blank cell outside the grid
func (g *Grid) Get(x, y int) pixel.Pixel {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return pixel.Blank
	}
	return g.Cells[y*g.Width+x]
}

// Put stores p at (x, y), ignoring out-of-bounds writes
func (g *Grid) Put(x, y int, p pixel.Pixel) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Cells[y*g.Width+x] = p
}

// Row returns the visible text of row y, continuation cells omitted
func (g *Grid) Row(y int) string {
	var b strings.Builder
	for x := 0; x < g.Width; x++ {
		p := g.Get(x, y)
		if p.IsContinuation() {
			continue
		}
		b.WriteString(p.Char)
	}
	return b.String()
}

// Memory is a Backend that records frames into a Grid. Frames become visible
// in Grid only when EndFrame succeeds
type Memory struct {
	front   *Grid
	back    *Grid
	state   State
	pending State

	// Fail, when set, makes the next EndFrame fail with it and drop the frame
	Fail error

	Frames int
	Writes int
}

// NewMemory creates an in-memory backend
func NewMemory() *Memory {
	return &Memory{front: NewGrid(0, 0)}
}

// Grid returns the last committed frame
func (m *Memory) Grid() *Grid {
	return m.front
}

// State returns the committed cursor and style
func (m *Memory) State() State {
	return m.state
}

func (m *Memory) BeginFrame(width, height int) error {
	m.back = NewGrid(width, height)
	if m.front.Width == width && m.front.Height == height {
		copy(m.back.Cells, m.front.Cells)
	}
	m.pending = m.state
	return nil
}

func (m *Memory) CursorMove(x, y int, relative bool) {
	if relative {
		x += m.pending.CursorX
		y += m.pending.CursorY
	}
	m.pending.CursorX, m.pending.CursorY = x, y
	m.pending.CursorValid = true
}

func (m *Memory) SetColors(fg, bg pixel.Color, eff pixel.Effects) {
	m.pending.Fg, m.pending.Bg, m.pending.Effects = fg, bg, eff
	m.pending.StyleValid = true
}

func (m *Memory) WriteCell(x, y int, p pixel.Pixel) {
	if m.back == nil {
		return
	}
	p = Resolve(p)
	m.back.Put(x, y, p)
	m.Writes++
	m.CursorMove(x+max(p.Width(), 1), y, false)
	m.SetColors(p.Fg, p.Bg, p.Effects)
}

func (m *Memory) EndFrame() error {
	back := m.back
	m.back = nil
	if m.Fail != nil {
		err := m.Fail
		m.Fail = nil
		return &WriteError{Backend: "memory", Err: err}
	}
	if back != nil {
		m.front = back
	}
	m.state = m.pending
	m.Frames++
	return nil
}
