package transform

import (
	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
)

// Container is an ordered transformer stack
type Container struct {
	items []*Transformer
}

// NewContainer creates a stack applying ts in order
func NewContainer(ts ...*Transformer) *Container {
	c := &Container{}
	c.Append(ts...)
	return c
}

// Append adds transformers at the end of the stack
func (c *Container) Append(ts ...*Transformer) {
	for _, t := range ts {
		if t != nil {
			c.items = append(c.items, t)
		}
	}
}

// Insert places t at position i, clamped to the stack bounds
func (c *Container) Insert(i int, t *Transformer) {
	if t == nil {
		return
	}
	i = min(max(i, 0), len(c.items))
	c.items = append(c.items, nil)
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = t
}

// Remove drops the first occurrence of t. Other transformers keep their counters
func (c *Container) Remove(t *Transformer) bool {
	for i, it := range c.items {
		if it == t {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the stack
func (c *Container) Clear() {
	c.items = nil
}

// Len returns the number of transformers
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the transformer at position i
func (c *Container) At(i int) *Transformer {
	return c.items[i]
}

// UsesTick reports whether any transformer consumes the frame tick
func (c *Container) UsesTick() bool {
	if c == nil {
		return false
	}
	for _, t := range c.items {
		if t.UsesTick() {
			return true
		}
	}
	return false
}

// Reset zeroes the per-pass sequence counters of every transformer in the stack
func (c *Container) Reset() {
	if c == nil {
		return
	}
	for _, t := range c.items {
		t.seq = 0
	}
}

// Process runs p through the stack in insertion order. Continuation cells
// pass through untouched
func (c *Container) Process(src shape.Shape, x, y int, p pixel.Pixel, env Env) pixel.Pixel {
	if c == nil || p.IsContinuation() {
		return p
	}
	for _, t := range c.items {
		p = t.apply(src, x, y, p, env)
	}
	return p
}

// binding adapts a container to the shape.Processor hook
type binding struct {
	c   *Container
	env *Env
}

func (b binding) Process(src shape.Shape, x, y int, p pixel.Pixel) pixel.Pixel {
	var env Env
	if b.env != nil {
		env = *b.env
	}
	return b.c.Process(src, x, y, p, env)
}

func (b binding) UsesTick() bool {
	return b.c.UsesTick()
}

type transformHolder interface {
	Transform() shape.Processor
}

// Bound returns the container bound to s as its read-time transform, or nil
func Bound(s shape.Shape) *Container {
	th, ok := s.(transformHolder)
	if !ok {
		return nil
	}
	if b, ok := th.Transform().(binding); ok {
		return b.c
	}
	return nil
}

// BeginPass restarts the sequence counters of the read-time transform bound
// to s, so sequence-aware transformers color a pass the same way every time
func BeginPass(s shape.Shape) {
	Bound(s).Reset()
}

// Counters holds saved sequence counters. Restore puts them back, undoing a
// look-ahead read
type Counters struct {
	ts   []*Transformer
	seqs []int
}

// SaveCounters records the counters of every transformer in cs
func SaveCounters(cs ...*Container) Counters {
	var out Counters
	for _, c := range cs {
		if c == nil {
			continue
		}
		for _, t := range c.items {
			out.ts = append(out.ts, t)
			out.seqs = append(out.seqs, t.seq)
		}
	}
	return out
}

// Restore resets every saved transformer to its recorded counter
func (s Counters) Restore() {
	for i, t := range s.ts {
		t.seq = s.seqs[i]
	}
}

// Bind exposes c as a shape.Processor. env is read on every call, so the
// caller may advance its tick between passes; nil means a zero Env
func Bind(c *Container, env *Env) shape.Processor {
	return binding{c: c, env: env}
}

// Bake writes src, transformed through c, into dst cell by cell. src and dst
// may share storage; neighbor reads then see a snapshot taken before the
// first write
func Bake(c *Container, src, dst shape.Shape, env Env) error {
	if shape.Owner(src) == shape.Owner(dst) {
		src = shape.Promote(src)
	}
	sw, sh := src.Size()
	dw, dh := dst.Size()
	w, h := min(sw, dw), min(sh, dh)
	c.Reset()
	for y := 0; y < h; y++ {
		wide := false
		for x := 0; x < w; x++ {
			p := shape.Raw(src, x, y)
			if p.IsContinuation() && wide {
				wide = false
				continue
			}
			if p.IsContinuation() {
				p.Char = pixel.Empty
			}
			p = c.Process(src, x, y, p, env)
			wide = p.Width() == 2
			if err := dst.Set(x, y, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// SpacesToTransparency bakes AddAlpha into s: blank chars, default colors and
// empty effects become TRANSPARENT
func SpacesToTransparency(s shape.Shape) error {
	return Bake(NewContainer(AddAlpha), s, s, Env{})
}
