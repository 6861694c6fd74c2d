package sprite

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/transform"
)

// ErrStaleHandle is returned for a handle whose sprite was removed or that
// belongs to no sprite in this compositor
var ErrStaleHandle = errors.New("stale sprite handle")

type slot struct {
	gen    uint32
	sprite *Sprite
}

// Compositor stacks sprites over a background pixel. It implements shape.Shape
// and is read-only
type Compositor struct {
	mu sync.RWMutex

	width, height int
	background    pixel.Pixel

	slots []slot
	free  []uint32
	order []uint32 // slot indices, bottom to top
	seq   uint64

	damage *dirty.Tiles
	env    transform.Env
}

// NewCompositor creates an empty compositor over a blank background
func NewCompositor(width, height int) *Compositor {
	width, height = max(width, 0), max(height, 0)
	c := &Compositor{
		width:      width,
		height:     height,
		background: pixel.Blank,
		damage:     dirty.NewTiles(width, height),
	}
	c.damage.MarkAll()
	return c
}

// Kind returns KindComposite
func (c *Compositor) Kind() shape.Kind { return shape.KindComposite }

// Size returns the compositor dimensions
func (c *Compositor) Size() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

// Resize changes the compositor bounds and damages everything
func (c *Compositor) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = max(width, 0), max(height, 0)
	c.damage.Resize(c.width, c.height)
}

// SetBackground sets the pixel shown where no sprite resolves a channel
func (c *Compositor) SetBackground(p pixel.Pixel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = p
	c.damage.MarkAll()
}

// Background returns the background pixel
func (c *Compositor) Background() pixel.Pixel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// SetTick sets the animation tick seen by sprite frames and transformers,
// including those of nested compositors
func (c *Compositor) SetTick(tick uint64) {
	c.mu.Lock()
	c.env.Tick = tick
	var nested []*Compositor
	for _, idx := range c.order {
		for _, f := range c.slots[idx].sprite.frames {
			if nc, ok := f.(*Compositor); ok {
				nested = append(nested, nc)
			}
		}
	}
	c.mu.Unlock()
	for _, nc := range nested {
		nc.SetTick(tick)
	}
}

// Tick returns the current animation tick
func (c *Compositor) Tick() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.env.Tick
}

// SetContext sets the opaque value handed to transformers declaring "context"
func (c *Compositor) SetContext(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.env.Context = v
	c.damage.MarkAll()
}

// Add places sh on the compositor and returns its handle
func (c *Compositor) Add(sh shape.Shape, opts ...Option) Handle {
	s := newSprite(sh, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	s.seq = c.seq

	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		idx = uint32(len(c.slots))
		c.slots = append(c.slots, slot{})
	}
	sl := &c.slots[idx]
	sl.gen++
	sl.sprite = s

	c.order = append(c.order, idx)
	c.sortLocked()
	if s.active {
		c.damage.MarkRect(s.extent())
	}
	return Handle{index: idx, gen: sl.gen}
}

// Remove deletes the sprite; its handle becomes stale
func (c *Compositor) Remove(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookupLocked(h)
	if err != nil {
		return err
	}
	if s.active {
		c.damage.MarkRect(s.extent())
	}
	c.slots[h.index].sprite = nil
	c.free = append(c.free, h.index)
	for i, idx := range c.order {
		if idx == h.index {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Sprite returns the sprite behind h
func (c *Compositor) Sprite(h Handle) (*Sprite, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, err := c.lookupLocked(h)
	return s, err == nil
}

// Handles returns live handles in drawing order, bottom first
func (c *Compositor) Handles() []Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Handle, 0, len(c.order))
	for _, idx := range c.order {
		out = append(out, Handle{index: idx, gen: c.slots[idx].gen})
	}
	return out
}

// Len returns the number of live sprites
func (c *Compositor) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// SetActive shows or hides a sprite
func (c *Compositor) SetActive(h Handle, on bool) error {
	return c.update(h, func(s *Sprite) bool {
		if s.active == on {
			return false
		}
		s.active = on
		return true
	})
}

// Move places the sprite's anchor at (x, y)
func (c *Compositor) Move(h Handle, x, y int) error {
	return c.update(h, func(s *Sprite) bool {
		if s.x == x && s.y == y {
			return false
		}
		s.x, s.y = x, y
		return true
	})
}

// SetZ changes the stacking order
func (c *Compositor) SetZ(h Handle, z int) error {
	return c.update(h, func(s *Sprite) bool {
		if s.z == z {
			return false
		}
		s.z = z
		c.sortLocked()
		return true
	})
}

// Invalidate damages the sprite's whole area, for changes made to its
// transformers or shared state the compositor cannot observe
func (c *Compositor) Invalidate(h Handle) error {
	return c.update(h, func(*Sprite) bool { return true })
}

// update applies fn and damages both the old and new sprite area when fn
// reports a change. Hidden sprites contribute no damage
func (c *Compositor) update(h Handle, fn func(*Sprite) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.lookupLocked(h)
	if err != nil {
		return err
	}
	before, wasActive := s.extent(), s.active
	if !fn(s) {
		return nil
	}
	if wasActive {
		c.damage.MarkRect(before)
	}
	if s.active {
		c.damage.MarkRect(s.extent())
	}
	return nil
}

func (c *Compositor) lookupLocked(h Handle) (*Sprite, error) {
	if !h.Valid() || int(h.index) >= len(c.slots) {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	sl := c.slots[h.index]
	if sl.gen != h.gen || sl.sprite == nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleHandle, h)
	}
	return sl.sprite, nil
}

// sortLocked orders by z, then by insertion so later sprites sit on top of
// equal-z earlier ones
func (c *Compositor) sortLocked() {
	sort.SliceStable(c.order, func(i, j int) bool {
		a, b := c.slots[c.order[i]].sprite, c.slots[c.order[j]].sprite
		if a.z != b.z {
			return a.z < b.z
		}
		return a.seq < b.seq
	})
}

// Get composites (x, y): sprites are read top down and each TRANSPARENT
// channel takes the first value found below it, then the background
func (c *Compositor) Get(x, y int) pixel.Pixel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getLocked(x, y)
}

func (c *Compositor) getLocked(x, y int) pixel.Pixel {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return pixel.TransparentPixel
	}
	acc := c.stackLocked(x, y)
	switch {
	case acc.IsContinuation() && c.peekLocked(x-1, y).Width() != 2:
		// the glyph this cell belonged to is covered by a higher sprite
		acc.Char = pixel.Empty
	case acc.Width() == 2 && !c.peekLocked(x+1, y).IsContinuation():
		// the glyph's second half is covered by a higher sprite
		acc.Char = pixel.Empty
	}
	return acc
}

// peekLocked composites a neighbor cell without advancing any sequence
// counter, so the cells of a pass keep their order
func (c *Compositor) peekLocked(x, y int) pixel.Pixel {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return pixel.TransparentPixel
	}
	saved := transform.SaveCounters(c.containersLocked(nil)...)
	defer saved.Restore()
	return c.stackLocked(x, y)
}

// containersLocked appends every transformer stack reachable from the
// compositor: sprite stacks, shape transforms and those of nested compositors
func (c *Compositor) containersLocked(out []*transform.Container) []*transform.Container {
	for _, idx := range c.order {
		s := c.slots[idx].sprite
		out = append(out, s.transforms)
		for _, f := range s.frames {
			if b := transform.Bound(f); b != nil {
				out = append(out, b)
			}
			if nc, ok := f.(*Compositor); ok {
				nc.mu.RLock()
				out = nc.containersLocked(out)
				nc.mu.RUnlock()
			}
		}
	}
	return out
}

func (c *Compositor) stackLocked(x, y int) pixel.Pixel {
	acc := pixel.TransparentPixel
	for i := len(c.order) - 1; i >= 0; i-- {
		s := c.slots[c.order[i]].sprite
		if !s.active {
			continue
		}
		sh := s.Frame(c.env.Tick)
		r := s.place(sh)
		if !r.Contains(x, y) {
			continue
		}
		acc = acc.Merge(s.read(sh, x-r.X, y-r.Y, c.env))
		if acc.Resolved() {
			return acc
		}
	}
	return acc.Merge(c.background)
}

// BeginPass restarts the sequence counters of every sprite transformer and
// shape transform, nested compositors included. The renderer calls it once
// before each flush
func (c *Compositor) BeginPass() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ct := range c.containersLocked(nil) {
		ct.Reset()
	}
}

// Set always fails: a compositor has no storage of its own
func (c *Compositor) Set(x, y int, p pixel.Pixel) error {
	return &shape.KindMismatchError{Kind: shape.KindComposite, Op: "Set"}
}

// DirtyRects unions the compositor's own damage with every active sprite's
// changes, translated into compositor coordinates. Animated sprites report
// their whole area
func (c *Compositor) DirtyRects() []dirty.Rect {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rs := c.damage.Rects()
	for _, idx := range c.order {
		s := c.slots[idx].sprite
		if !s.active {
			continue
		}
		if s.animated() {
			rs = append(rs, s.extent().Clip(c.width, c.height))
			continue
		}
		sh := s.Frame(c.env.Tick)
		r := s.place(sh)
		for _, dr := range sh.DirtyRects() {
			if t := dr.Translate(r.X, r.Y).Clip(c.width, c.height); !t.Empty() {
				rs = append(rs, t)
			}
		}
	}
	return dirty.Coalesce(rs)
}

// ClearDirty forgets the compositor's own damage and that of every sprite shape
func (c *Compositor) ClearDirty() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.damage.Clear()
	for _, idx := range c.order {
		for _, f := range c.slots[idx].sprite.frames {
			f.ClearDirty()
		}
	}
}
