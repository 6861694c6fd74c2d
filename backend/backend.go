// Package backend defines the frame emitter contract and the non-terminal
// emitters: HTML documents, tcell screens and an in-memory grid.
package backend

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

// Backend receives one frame at a time. Cell writes between BeginFrame and
// EndFrame may be buffered; nothing is guaranteed visible before EndFrame
// returns nil
type Backend interface {
	BeginFrame(width, height int) error
	CursorMove(x, y int, relative bool)
	SetColors(fg, bg pixel.Color, eff pixel.Effects)
	WriteCell(x, y int, p pixel.Pixel)
	EndFrame() error
}

// Source is anything cells can be read from
type Source interface {
	Get(x, y int) pixel.Pixel
}

// RectWriter is implemented by backends with a faster path for whole regions
type RectWriter interface {
	WriteRect(r dirty.Rect, src Source)
}

// WriteRect writes the cells of r from src, row-major, through the backend's
// RectWriter if it has one
func WriteRect(b Backend, r dirty.Rect, src Source) {
	if rw, ok := b.(RectWriter); ok {
		rw.WriteRect(r, src)
		return
	}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			b.WriteCell(x, y, src.Get(x, y))
		}
	}
}

// State is the last cursor position and style the output device is known to
// be in. Invalid fields force the next write to re-emit them
type State struct {
	CursorX, CursorY int
	CursorValid      bool

	Fg, Bg     pixel.Color
	Effects    pixel.Effects
	StyleValid bool
}

// Invalidate forgets everything known about the device
func (s *State) Invalidate() {
	s.CursorValid = false
	s.StyleValid = false
}

// ErrWrite marks a failure delivering a frame to its destination
var ErrWrite = errors.New("backend write failed")

// WriteError wraps the underlying I/O error of a failed flush
type WriteError struct {
	Backend string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrWrite, e.Backend, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// Resolve replaces sentinels the compositor left behind with terminal defaults
func Resolve(p pixel.Pixel) pixel.Pixel {
	switch p.Char {
	case pixel.TransparentChar, "":
		p.Char = pixel.Empty
	}
	if p.Fg.IsTransparent() {
		p.Fg = pixel.DefaultFg
	}
	if p.Bg.IsTransparent() {
		p.Bg = pixel.DefaultBg
	}
	if p.Effects.IsTransparent() {
		p.Effects = pixel.EffectNone
	}
	return p
}
