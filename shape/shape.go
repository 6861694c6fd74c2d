// Package shape holds the cell storage kinds the compositor reads from:
// value planes, paletted planes, full four-plane shapes and non-owning views.
package shape

import (
	"sync/atomic"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

// Kind tags the storage variant behind a Shape
type Kind uint8

const (
	KindValue Kind = iota
	KindPaletted
	KindFull
	KindView
	KindComposite
)

var kindNames = [...]string{"ValueShape", "PalettedShape", "FullShape", "ShapeView", "Compositor"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Shape is the storage contract consumed by transformers, sprites and the renderer
type Shape interface {
	Get(x, y int) pixel.Pixel
	Set(x, y int, p pixel.Pixel) error
	Size() (width, height int)
	Kind() Kind
	DirtyRects() []dirty.Rect
	ClearDirty()
}

// RawGetter is implemented by shapes that can bypass their read-time transform
type RawGetter interface {
	GetRaw(x, y int) pixel.Pixel
}

// Processor rewrites a pixel read from, or about to be written to, src at (x, y)
type Processor interface {
	Process(src Shape, x, y int, p pixel.Pixel) pixel.Pixel
}

// Raw reads (x, y) without read-time transforms when the shape supports it
func Raw(s Shape, x, y int) pixel.Pixel {
	if r, ok := s.(RawGetter); ok {
		return r.GetRaw(x, y)
	}
	return s.Get(x, y)
}

// Bounds returns the shape's rectangle at the origin
func Bounds(s Shape) dirty.Rect {
	w, h := s.Size()
	return dirty.R(0, 0, w, h)
}

var strict atomic.Bool

// SetStrict switches out-of-range access from silent no-op to RangeError
func SetStrict(on bool) {
	strict.Store(on)
}

// Strict reports the current out-of-range policy
func Strict() bool {
	return strict.Load()
}

// base carries the bookkeeping shared by all owning shapes
type base struct {
	width  int
	height int
	tiles  *dirty.Tiles
	lazy   Processor
}

func newBase(width, height int) base {
	width, height = max(width, 0), max(height, 0)
	return base{width: width, height: height, tiles: dirty.NewTiles(width, height)}
}

// Size returns the shape dimensions
func (b *base) Size() (int, int) {
	return b.width, b.height
}

// DirtyRects returns the coalesced changed regions since the last ClearDirty
func (b *base) DirtyRects() []dirty.Rect {
	return b.tiles.Rects()
}

// ClearDirty forgets all changed regions
func (b *base) ClearDirty() {
	b.tiles.Clear()
}

// ClearDirtyRect forgets changed tiles lying entirely inside r
func (b *base) ClearDirtyRect(r dirty.Rect) {
	b.tiles.ClearRect(r)
}

// MarkDirty flags r as changed without writing
func (b *base) MarkDirty(r dirty.Rect) {
	b.tiles.MarkRect(r)
}

// Tiles exposes the shape's dirty tracker
func (b *base) Tiles() *dirty.Tiles {
	return b.tiles
}

// SetTransform installs a read-time processor; nil removes it
func (b *base) SetTransform(p Processor) {
	b.lazy = p
	b.tiles.MarkAll()
}

// Transform returns the read-time processor, if any
func (b *base) Transform() Processor {
	return b.lazy
}

func (b *base) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, false
	}
	return y*b.width + x, true
}

func (b *base) outOfRange(x, y int) error {
	if !Strict() {
		return nil
	}
	return &RangeError{X: x, Y: y, Width: b.width, Height: b.height}
}
