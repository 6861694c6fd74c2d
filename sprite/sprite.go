// Package sprite layers positioned shapes into a single read-only shape.
// A Compositor is itself a shape.Shape, so compositors nest.
package sprite

import (
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/transform"
)

// Handle addresses a sprite inside one compositor. A removed sprite's handle
// goes stale and is never confused with a later sprite reusing its slot
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was ever issued
func (h Handle) Valid() bool {
	return h.gen != 0
}

// Anchor selects which point of the sprite its position refers to
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorCenter
)

// Promotion controls how blank cells of a sprite's shape composite
type Promotion uint8

const (
	// PromoteBlank treats blank chars, default colors and empty effects as
	// TRANSPARENT so lower layers show through
	PromoteBlank Promotion = iota
	// PromoteNone composites the shape's pixels as stored
	PromoteNone
)

// Sprite is a shape placed on a compositor
type Sprite struct {
	frames    []shape.Shape
	tickCycle uint64

	x, y      int
	z         int
	anchor    Anchor
	active    bool
	promotion Promotion
	seq       uint64

	transforms *transform.Container
}

// Option configures a sprite at Add time
type Option func(*Sprite)

// WithPos places the sprite's anchor point at (x, y)
func WithPos(x, y int) Option {
	return func(s *Sprite) { s.x, s.y = x, y }
}

// WithZ sets the stacking order; higher z draws on top
func WithZ(z int) Option {
	return func(s *Sprite) { s.z = z }
}

// WithAnchor sets the anchor point
func WithAnchor(a Anchor) Option {
	return func(s *Sprite) { s.anchor = a }
}

// WithPromotion sets the blank-cell policy
func WithPromotion(p Promotion) Option {
	return func(s *Sprite) { s.promotion = p }
}

// WithInactive adds the sprite hidden
func WithInactive() Option {
	return func(s *Sprite) { s.active = false }
}

// WithFrames appends animation frames after the primary shape. The visible
// frame advances every cycle ticks
func WithFrames(cycle uint64, frames ...shape.Shape) Option {
	return func(s *Sprite) {
		s.frames = append(s.frames, frames...)
		s.tickCycle = max(cycle, 1)
	}
}

// WithTransformers installs sprite-level transformers, applied after the
// shape's own read-time transform
func WithTransformers(ts ...*transform.Transformer) Option {
	return func(s *Sprite) { s.transforms.Append(ts...) }
}

func newSprite(sh shape.Shape, opts []Option) *Sprite {
	s := &Sprite{
		frames:     []shape.Shape{sh},
		tickCycle:  1,
		active:     true,
		transforms: transform.NewContainer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shape returns the primary shape
func (s *Sprite) Shape() shape.Shape {
	return s.frames[0]
}

// Frame returns the shape visible at tick
func (s *Sprite) Frame(tick uint64) shape.Shape {
	if len(s.frames) == 1 {
		return s.frames[0]
	}
	return s.frames[(tick/s.tickCycle)%uint64(len(s.frames))]
}

// Pos returns the anchor position
func (s *Sprite) Pos() (int, int) {
	return s.x, s.y
}

// Z returns the stacking order
func (s *Sprite) Z() int {
	return s.z
}

// Active reports whether the sprite is drawn
func (s *Sprite) Active() bool {
	return s.active
}

// Transformers returns the sprite-level stack. Changes to it are not tracked
// as damage; call Compositor.Invalidate afterwards
func (s *Sprite) Transformers() *transform.Container {
	return s.transforms
}

// Rect returns the area the sprite covers at tick, in compositor coordinates
func (s *Sprite) Rect(tick uint64) dirty.Rect {
	return s.place(s.Frame(tick))
}

func (s *Sprite) place(sh shape.Shape) dirty.Rect {
	w, h := sh.Size()
	x, y := s.x, s.y
	if s.anchor == AnchorCenter {
		x -= w / 2
		y -= h / 2
	}
	return dirty.R(x, y, w, h)
}

// extent covers every frame, for damage that must span animation
func (s *Sprite) extent() dirty.Rect {
	r := s.place(s.frames[0])
	for _, f := range s.frames[1:] {
		r = r.Union(s.place(f))
	}
	return r
}

type tickUser interface {
	UsesTick() bool
}

type transformHolder interface {
	Transform() shape.Processor
}

// animated reports whether the sprite's appearance depends on the tick
func (s *Sprite) animated() bool {
	if len(s.frames) > 1 || s.transforms.UsesTick() {
		return true
	}
	if th, ok := s.frames[0].(transformHolder); ok {
		if tu, ok := th.Transform().(tickUser); ok && tu.UsesTick() {
			return true
		}
	}
	return false
}

// read returns the sprite's pixel at local (lx, ly)
func (s *Sprite) read(sh shape.Shape, lx, ly int, env transform.Env) pixel.Pixel {
	p := sh.Get(lx, ly)
	if s.promotion == PromoteBlank {
		p = transform.Alpha(p)
	}
	return s.transforms.Process(sh, lx, ly, p, env)
}

