package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/cellforge/backend"
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/transform"
)

// ErrSizeMismatch cancels a frame whose output surface no longer matches the root
var ErrSizeMismatch = errors.New("output size differs from root")

type hookEntry struct {
	hook     Hook
	priority Priority
	index    int // registration order for stable sort
}

// Stats counts frame outcomes since the renderer was created
type Stats struct {
	Frames   uint64 // successful passes, including passes with nothing to draw
	Canceled uint64
	Failed   uint64
	Cells    uint64 // cells handed to the backend by successful passes
}

// Renderer runs the frame pass: hooks, dirt collection, flush and commit
type Renderer struct {
	mu       sync.Mutex
	root     shape.Shape
	backend  backend.Backend
	sizeFunc func() (int, int)

	hooks    []hookEntry
	regCount int

	tick      uint64
	full      bool
	lastFrame time.Time
	stats     Stats
}

// NewRenderer creates a renderer drawing root onto b. sizeFunc reports the
// current output size and may be nil when the output cannot change size.
// The first frame redraws every cell
func NewRenderer(root shape.Shape, b backend.Backend, sizeFunc func() (int, int)) *Renderer {
	return &Renderer{
		root:     root,
		backend:  b,
		sizeFunc: sizeFunc,
		hooks:    make([]hookEntry, 0, 8),
		full:     true,
	}
}

// Register adds a hook at the specified priority. Maintains sorted order via insertion sort
func (r *Renderer) Register(h Hook, priority Priority) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := hookEntry{
		hook:     h,
		priority: priority,
		index:    r.regCount,
	}
	r.regCount++

	// Insertion sort: find position and insert
	pos := len(r.hooks)
	for i, e := range r.hooks {
		if priority < e.priority || (priority == e.priority && entry.index < e.index) {
			pos = i
			break
		}
	}

	r.hooks = append(r.hooks, hookEntry{})
	copy(r.hooks[pos+1:], r.hooks[pos:])
	r.hooks[pos] = entry
}

// SetRoot replaces the drawn shape and schedules a full redraw
func (r *Renderer) SetRoot(root shape.Shape) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root = root
	r.full = true
}

// FullRedraw makes the next frame rewrite every cell of the root
func (r *Renderer) FullRedraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.full = true
}

// Tick returns the number of committed frames
func (r *Renderer) Tick() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tick
}

// Stats returns frame counters
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// RenderFrame executes one pass. A pass canceled through ctx or by a size
// mismatch writes nothing and keeps all dirt. A failed flush keeps all dirt
// so the next pass retries it
func (r *Renderer) RenderFrame(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := Logger()
	now := time.Now()

	w, h := r.root.Size()
	rc := RenderContext{
		Tick:       r.tick,
		FrameTime:  now,
		Width:      w,
		Height:     h,
		FullRedraw: r.full,
	}
	if !r.lastFrame.IsZero() {
		rc.DeltaTime = now.Sub(r.lastFrame)
	}

	if t, ok := r.root.(ticker); ok {
		t.SetTick(r.tick)
	}

	for _, entry := range r.hooks {
		// Skip if hook implements VisibilityToggle and is not visible
		if vt, ok := entry.hook.(VisibilityToggle); ok && !vt.IsVisible() {
			continue
		}
		entry.hook.Frame(rc)
	}

	// hooks may have resized the root
	w, h = r.root.Size()
	var rects []dirty.Rect
	if r.full || tickDriven(r.root) {
		rects = []dirty.Rect{dirty.R(0, 0, w, h)}
	} else {
		rects = dirty.Coalesce(r.root.DirtyRects())
	}

	if err := r.checkCancel(ctx, w, h); err != nil {
		r.stats.Canceled++
		log.Debug("frame canceled", slog.Uint64("tick", r.tick), slog.Any("err", err))
		return err
	}

	if len(rects) == 0 {
		r.commit(now)
		return nil
	}

	if ps, ok := r.root.(passStarter); ok {
		ps.BeginPass()
	}
	transform.BeginPass(r.root)

	if err := r.backend.BeginFrame(w, h); err != nil {
		r.stats.Failed++
		log.Warn("begin frame failed", slog.Uint64("tick", r.tick), slog.Any("err", err))
		return fmt.Errorf("frame %d: %w", r.tick, err)
	}
	cells := 0
	for _, rect := range rects {
		backend.WriteRect(r.backend, rect, r.root)
		cells += rect.Area()
	}
	if err := r.backend.EndFrame(); err != nil {
		r.stats.Failed++
		log.Warn("flush failed, dirt retained",
			slog.Uint64("tick", r.tick), slog.Int("rects", len(rects)), slog.Any("err", err))
		return fmt.Errorf("frame %d: %w", r.tick, err)
	}

	log.Debug("frame flushed",
		slog.Uint64("tick", r.tick), slog.Int("rects", len(rects)), slog.Int("cells", cells))
	r.stats.Cells += uint64(cells)
	r.root.ClearDirty()
	r.full = false
	r.commit(now)
	return nil
}

func (r *Renderer) commit(now time.Time) {
	r.stats.Frames++
	r.tick++
	r.lastFrame = now
}

func (r *Renderer) checkCancel(ctx context.Context, w, h int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.sizeFunc == nil {
		return nil
	}
	if ow, oh := r.sizeFunc(); ow != w || oh != h {
		return fmt.Errorf("%w: output %dx%d, root %dx%d", ErrSizeMismatch, ow, oh, w, h)
	}
	return nil
}

// tickDriven reports whether the root's own read-time transform consumes the
// tick, which makes every cell of it change with the frame
func tickDriven(root shape.Shape) bool {
	th, ok := root.(interface{ Transform() shape.Processor })
	if !ok {
		return false
	}
	tu, ok := th.Transform().(interface{ UsesTick() bool })
	return ok && tu.UsesTick()
}
