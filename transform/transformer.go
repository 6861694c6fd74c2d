// Package transform implements per-pixel transformer stacks applied at read
// time (lazy) or write time (eager), including neighborhood kernels.
package transform

import (
	"errors"

	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
)

// Env carries per-pass state into every slot call
type Env struct {
	Tick    uint64
	Context any
}

// Args is what a slot receives. Only the fields named in the slot's declared
// parameters are populated; the rest are zero
type Args[T any] struct {
	Self    *Transformer
	Value   T
	X, Y    int
	Pixel   pixel.Pixel
	Source  shape.Shape
	Tick    uint64
	Context any
}

// Slot is one channel function of a Transformer, or a constant replacement
type Slot[T any] struct {
	names  []string
	params Params
	fn     func(Args[T]) T
	value  T
	static bool
}

// Func declares a computed slot and the parameters it consumes
func Func[T any](fn func(Args[T]) T, params ...string) *Slot[T] {
	return &Slot[T]{names: params, fn: fn}
}

// Const declares a slot that always yields v
func Const[T any](v T) *Slot[T] {
	return &Slot[T]{value: v, static: true}
}

// Params returns the resolved parameter set
func (s *Slot[T]) Params() Params {
	return s.params
}

func (s *Slot[T]) resolve(slot string) error {
	if s == nil || s.static {
		return nil
	}
	if s.fn == nil {
		return &ContractError{Slot: slot, Param: "<nil func>"}
	}
	p, err := ParseParams(s.names...)
	if err != nil {
		var ce *ContractError
		if errors.As(err, &ce) {
			ce.Slot = slot
		}
		return err
	}
	s.params = p
	return nil
}

func (s *Slot[T]) call(t *Transformer, value T, src shape.Shape, x, y int, p pixel.Pixel, env Env) T {
	if s.static {
		return s.value
	}
	var a Args[T]
	ps := s.params
	if ps&ParamSelf != 0 {
		a.Self = t
	}
	if ps&ParamValue != 0 {
		a.Value = value
	}
	if ps&ParamPos != 0 {
		a.X, a.Y = x, y
	}
	if ps&ParamPixel != 0 {
		a.Pixel = p
	}
	if ps&ParamSource != 0 {
		a.Source = src
	}
	if ps&ParamTick != 0 {
		a.Tick = env.Tick
	}
	if ps&ParamContext != 0 {
		a.Context = env.Context
	}
	return s.fn(a)
}

// Slots groups the optional channel slots of a Transformer
type Slots struct {
	Pixel      *Slot[pixel.Pixel]
	Char       *Slot[string]
	Foreground *Slot[pixel.Color]
	Background *Slot[pixel.Color]
	Effects    *Slot[pixel.Effects]
}

// Transformer rewrites one or more channels of each pixel read through it
type Transformer struct {
	Name   string
	slots  Slots
	params Params
	seq    int
}

// New validates every slot's parameter declaration and builds the transformer
func New(s Slots) (*Transformer, error) {
	if err := s.Pixel.resolve("pixel"); err != nil {
		return nil, err
	}
	if err := s.Char.resolve("char"); err != nil {
		return nil, err
	}
	if err := s.Foreground.resolve("foreground"); err != nil {
		return nil, err
	}
	if err := s.Background.resolve("background"); err != nil {
		return nil, err
	}
	if err := s.Effects.resolve("effects"); err != nil {
		return nil, err
	}
	t := &Transformer{slots: s}
	for _, p := range []Params{
		slotParams(s.Pixel), slotParams(s.Char), slotParams(s.Foreground),
		slotParams(s.Background), slotParams(s.Effects),
	} {
		t.params |= p
	}
	return t, nil
}

// MustNew is New for package-level transformers; it panics on a contract error
func MustNew(s Slots) *Transformer {
	t, err := New(s)
	if err != nil {
		panic(err)
	}
	return t
}

func slotParams[T any](s *Slot[T]) Params {
	if s == nil {
		return 0
	}
	return s.params
}

// Params returns the union of all slot parameters
func (t *Transformer) Params() Params {
	return t.params
}

// UsesTick reports whether any slot consumes the frame tick
func (t *Transformer) UsesTick() bool {
	return t.params&ParamTick != 0
}

// Seq returns how many cells this transformer processed since the last Reset
// of a container holding it
func (t *Transformer) Seq() int {
	return t.seq
}

// apply runs the pixel slot, then char, foreground, background and effects.
// Every slot sees the same incoming pixel
func (t *Transformer) apply(src shape.Shape, x, y int, in pixel.Pixel, env Env) pixel.Pixel {
	s := &t.slots
	out := in
	if s.Pixel != nil {
		out = s.Pixel.call(t, in, src, x, y, in, env)
	}
	if s.Char != nil {
		out.Char = s.Char.call(t, in.Char, src, x, y, in, env)
	}
	if s.Foreground != nil {
		out.Fg = s.Foreground.call(t, in.Fg, src, x, y, in, env)
	}
	if s.Background != nil {
		out.Bg = s.Background.call(t, in.Bg, src, x, y, in, env)
	}
	if s.Effects != nil {
		out.Effects = s.Effects.call(t, in.Effects, src, x, y, in, env)
	}
	t.seq++
	return out
}
