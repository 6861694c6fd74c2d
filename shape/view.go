package shape

import (
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

// View is a non-owning window onto a parent shape. Coordinates are relative to
// the window origin; reads and writes go straight to the parent's planes
type View struct {
	parent Shape
	rect   dirty.Rect
}

// NewView opens a window on parent, clipped to the parent's bounds. A view of a
// view collapses onto the innermost owning shape
func NewView(parent Shape, r dirty.Rect) *View {
	if pv, ok := parent.(*View); ok {
		r = r.Translate(pv.rect.X, pv.rect.Y).Intersect(pv.rect)
		parent = pv.parent
	}
	r = r.Intersect(Bounds(parent))
	return &View{parent: parent, rect: r}
}

// Parent returns the owning shape
func (v *View) Parent() Shape { return v.parent }

// Rect returns the window in parent coordinates
func (v *View) Rect() dirty.Rect { return v.rect }

// Kind returns KindView
func (v *View) Kind() Kind { return KindView }

// Size returns the window dimensions
func (v *View) Size() (int, int) {
	return v.rect.W, v.rect.H
}

func (v *View) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.rect.W && y < v.rect.H
}

func (v *View) outOfRange(x, y int) error {
	if !Strict() {
		return nil
	}
	return &RangeError{X: x, Y: y, Width: v.rect.W, Height: v.rect.H}
}

// Get reads through the parent, including its read-time transform
func (v *View) Get(x, y int) pixel.Pixel {
	if !v.inside(x, y) {
		return pixel.TransparentPixel
	}
	return v.parent.Get(x+v.rect.X, y+v.rect.Y)
}

// GetRaw reads the parent's stored value
func (v *View) GetRaw(x, y int) pixel.Pixel {
	if !v.inside(x, y) {
		return pixel.TransparentPixel
	}
	return Raw(v.parent, x+v.rect.X, y+v.rect.Y)
}

// Set writes into the parent. Positions outside the window follow the range policy
// even when the parent could hold them
func (v *View) Set(x, y int, p pixel.Pixel) error {
	if !v.inside(x, y) {
		return v.outOfRange(x, y)
	}
	return v.parent.Set(x+v.rect.X, y+v.rect.Y, p)
}

// DirtyRects returns the parent's dirty regions that fall inside the window, in window coordinates
func (v *View) DirtyRects() []dirty.Rect {
	var out []dirty.Rect
	for _, r := range v.parent.DirtyRects() {
		if c := r.Intersect(v.rect); !c.Empty() {
			out = append(out, c.Translate(-v.rect.X, -v.rect.Y))
		}
	}
	return out
}

type rectClearer interface {
	ClearDirtyRect(r dirty.Rect)
}

// ClearDirty clears the parent's dirt inside the window. Tiles straddling the
// window edge stay dirty for the rest of the parent
func (v *View) ClearDirty() {
	if rc, ok := v.parent.(rectClearer); ok {
		rc.ClearDirtyRect(v.rect)
		return
	}
	if v.rect == Bounds(v.parent) {
		v.parent.ClearDirty()
	}
}
