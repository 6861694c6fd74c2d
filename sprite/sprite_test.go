package sprite

import (
	"errors"
	"testing"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
	"github.com/lixenwraith/cellforge/transform"
)

var (
	red   = pixel.RGB(255, 0, 0)
	green = pixel.RGB(0, 255, 0)
	blue  = pixel.RGB(0, 0, 255)
)

func filled(w, h int, char string, fg, bg pixel.Color) *shape.FullShape {
	return shape.NewFullFill(w, h, pixel.New(char, fg, bg, 0))
}

func TestZOrderAndDeactivation(t *testing.T) {
	c := NewCompositor(10, 5)
	c.Add(filled(3, 1, "R", red, pixel.DefaultBg), WithZ(0))
	top := c.Add(filled(3, 1, "B", blue, pixel.DefaultBg), WithZ(1))

	if got := c.Get(1, 0); got.Char != "B" || got.Fg != blue {
		t.Errorf("top sprite: got %v, want blue B", got)
	}
	if err := c.SetActive(top, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if got := c.Get(1, 0); got.Char != "R" || got.Fg != red {
		t.Errorf("after hiding top: got %v, want red R", got)
	}
	if err := c.SetZ(top, -1); err != nil {
		t.Fatalf("SetZ: %v", err)
	}
	c.SetActive(top, true)
	if got := c.Get(1, 0); got.Char != "R" {
		t.Errorf("after lowering top: got %v, want red R", got)
	}
}

func TestEqualZLaterOnTop(t *testing.T) {
	c := NewCompositor(4, 1)
	c.Add(filled(1, 1, "a", red, pixel.DefaultBg))
	c.Add(filled(1, 1, "b", blue, pixel.DefaultBg))
	if got := c.Get(0, 0).Char; got != "b" {
		t.Errorf("char = %q, want later sprite", got)
	}
}

func TestTransparentChannelsComposite(t *testing.T) {
	c := NewCompositor(8, 8)
	c.Add(filled(4, 4, "x", red, green))
	over := shape.NewFullFill(2, 2, pixel.Pixel{
		Char:    pixel.TransparentChar,
		Fg:      blue,
		Bg:      pixel.Transparent,
		Effects: pixel.EffectsTransparent,
	})
	c.Add(over, WithPos(1, 1), WithZ(5))

	tests := []struct {
		name string
		x, y int
		want pixel.Pixel
	}{
		{"inside overlay", 1, 1, pixel.New("x", blue, green, 0)},
		{"outside overlay", 0, 0, pixel.New("x", red, green, 0)},
		{"background", 6, 6, pixel.Blank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Get(tt.x, tt.y); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPromotion(t *testing.T) {
	tests := []struct {
		name string
		opt  Promotion
		want pixel.Pixel
	}{
		{"blank promoted", PromoteBlank, pixel.New("x", red, green, 0)},
		{"stored as is", PromoteNone, pixel.Blank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompositor(4, 4)
			c.Add(filled(4, 4, "x", red, green))
			c.Add(shape.NewFull(2, 2), WithZ(1), WithPromotion(tt.opt))
			if got := c.Get(0, 0); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStaleHandle(t *testing.T) {
	c := NewCompositor(4, 4)
	h := c.Add(shape.NewFull(1, 1))
	if err := c.Remove(h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	h2 := c.Add(shape.NewFull(1, 1))
	if h2 == h {
		t.Fatal("reused slot issued an identical handle")
	}
	if err := c.Move(h, 1, 1); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Move on removed handle: err = %v", err)
	}
	if _, ok := c.Sprite(h); ok {
		t.Error("Sprite found for removed handle")
	}
	if _, ok := c.Sprite(h2); !ok {
		t.Error("live handle not found")
	}
	if err := c.Remove(Handle{}); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("zero handle: err = %v", err)
	}
	if c.Len() != 1 || len(c.Handles()) != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestHandlesDrawOrder(t *testing.T) {
	c := NewCompositor(4, 4)
	a := c.Add(shape.NewFull(1, 1), WithZ(3))
	b := c.Add(shape.NewFull(1, 1), WithZ(1))
	d := c.Add(shape.NewFull(1, 1), WithZ(3))
	got := c.Handles()
	want := []Handle{b, a, d}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Handles() = %v, want %v", got, want)
		}
	}
}

func TestAnchorCenter(t *testing.T) {
	c := NewCompositor(10, 10)
	h := c.Add(filled(3, 3, "o", red, green), WithPos(5, 5), WithAnchor(AnchorCenter))
	s, _ := c.Sprite(h)
	if got := s.Rect(0); got != dirty.R(4, 4, 3, 3) {
		t.Errorf("Rect = %v", got)
	}
	if got := c.Get(4, 4).Char; got != "o" {
		t.Errorf("corner char = %q", got)
	}
	if got := c.Get(7, 7); got != pixel.Blank {
		t.Errorf("outside = %v", got)
	}
}

func TestSpriteDirtTranslated(t *testing.T) {
	c := NewCompositor(32, 16)
	sh := shape.NewFull(4, 4)
	c.Add(sh, WithPos(10, 3))
	c.ClearDirty()
	if rs := c.DirtyRects(); len(rs) != 0 {
		t.Fatalf("after ClearDirty: %v", rs)
	}

	sh.Set(1, 1, pixel.New("z", red, green, 0))
	rs := c.DirtyRects()
	if len(rs) != 1 || rs[0] != dirty.R(10, 3, 4, 4) {
		t.Errorf("DirtyRects = %v, want [(10,3 4x4)]", rs)
	}
	c.ClearDirty()
	if !sh.Tiles().IsEmpty() {
		t.Error("sprite shape still dirty after compositor ClearDirty")
	}
}

func TestMoveDamagesOldAndNew(t *testing.T) {
	c := NewCompositor(40, 20)
	h := c.Add(shape.NewFull(2, 2), WithPos(1, 1))
	c.ClearDirty()
	if err := c.Move(h, 30, 15); err != nil {
		t.Fatalf("Move: %v", err)
	}
	rs := c.DirtyRects()
	for _, want := range []dirty.Rect{dirty.R(1, 1, 2, 2), dirty.R(30, 15, 2, 2)} {
		if !covered(rs, want) {
			t.Errorf("%v not covered by %v", want, rs)
		}
	}
	if covered(rs, dirty.R(16, 8, 1, 1)) {
		t.Errorf("untouched area reported dirty: %v", rs)
	}
}

func covered(rs []dirty.Rect, want dirty.Rect) bool {
	for y := want.Y; y < want.Bottom(); y++ {
		for x := want.X; x < want.Right(); x++ {
			hit := false
			for _, r := range rs {
				if r.Contains(x, y) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
	}
	return true
}

func TestAnimatedFrames(t *testing.T) {
	c := NewCompositor(8, 8)
	c.Add(filled(2, 1, "1", red, green), WithPos(2, 2), WithFrames(2, filled(2, 1, "2", red, green)))
	c.ClearDirty()

	if got := c.Get(2, 2).Char; got != "1" {
		t.Errorf("tick 0: %q", got)
	}
	c.SetTick(2)
	if got := c.Get(2, 2).Char; got != "2" {
		t.Errorf("tick 2: %q", got)
	}
	if rs := c.DirtyRects(); !covered(rs, dirty.R(2, 2, 2, 1)) {
		t.Errorf("animated sprite not reported: %v", rs)
	}
}

func TestSpriteTransformers(t *testing.T) {
	c := NewCompositor(4, 1)
	toBlue := transform.MustNew(transform.Slots{Foreground: transform.Const(blue)})
	c.Add(filled(2, 1, "k", red, green), WithTransformers(toBlue))
	if got := c.Get(0, 0).Fg; got != blue {
		t.Errorf("fg = %v, want blue", got)
	}
}

func TestNestedCompositor(t *testing.T) {
	inner := NewCompositor(4, 2)
	inner.Add(filled(1, 1, "i", red, green), WithPos(1, 0))

	outer := NewCompositor(10, 5)
	outer.Add(filled(10, 5, ".", blue, blue))
	outer.Add(inner, WithPos(2, 1), WithZ(1))

	if got := outer.Get(3, 1); got != pixel.New("i", red, green, 0) {
		t.Errorf("nested sprite = %v", got)
	}
	// inner background is promoted away, the outer layer shows through
	if got := outer.Get(2, 1); got != pixel.New(".", blue, blue, 0) {
		t.Errorf("nested background = %v", got)
	}

	if err := outer.Set(0, 0, pixel.Blank); !errors.Is(err, shape.ErrKindMismatch) {
		t.Errorf("Set err = %v, want ErrKindMismatch", err)
	}

	outer.ClearDirty()
	inner.Add(filled(1, 1, "j", red, green), WithPos(3, 1))
	if rs := outer.DirtyRects(); !covered(rs, dirty.R(5, 2, 1, 1)) {
		t.Errorf("nested change not propagated: %v", rs)
	}
}

func TestCoveredWideGlyphBlanksContinuation(t *testing.T) {
	c := NewCompositor(4, 1)
	low := shape.NewFull(3, 1)
	low.Set(0, 0, pixel.New("世", red, pixel.DefaultBg, 0))
	c.Add(low)
	if got := c.Get(1, 0); !got.IsContinuation() {
		t.Fatalf("uncovered continuation = %v", got)
	}
	c.Add(filled(1, 1, "a", red, pixel.DefaultBg), WithZ(1))
	if got := c.Get(1, 0).Char; got != pixel.Empty {
		t.Errorf("orphaned continuation char = %q, want blank", got)
	}
}

func TestCoveredContinuationBlanksWideGlyph(t *testing.T) {
	c := NewCompositor(4, 1)
	low := shape.NewFull(3, 1)
	low.Set(0, 0, pixel.New("漢", red, pixel.DefaultBg, 0))
	c.Add(low)

	high := shape.NewFullFill(2, 1, pixel.TransparentPixel)
	high.Set(1, 0, pixel.New("X", blue, pixel.DefaultBg, 0))
	c.Add(high, WithZ(1))

	if got := c.Get(0, 0); got.Char != pixel.Empty || got.Fg != red {
		t.Errorf("half-covered wide glyph = %v, want blank in red", got)
	}
	if got := c.Get(1, 0).Char; got != "X" {
		t.Errorf("covering char = %q, want X", got)
	}
}

func TestWideGlyphAtRightEdgeBlanked(t *testing.T) {
	c := NewCompositor(3, 1)
	low := shape.NewFull(2, 1)
	low.Set(0, 0, pixel.New("漢", red, pixel.DefaultBg, 0))
	// the glyph's second half falls outside the compositor
	c.Add(low, WithPos(2, 0))
	if got := c.Get(2, 0).Char; got != pixel.Empty {
		t.Errorf("clipped wide glyph = %q, want blank", got)
	}
}

func TestBeginPassResetsSequence(t *testing.T) {
	inner := NewCompositor(3, 1)
	cyc := transform.Cycle(blue, green)
	inner.Add(filled(3, 1, "o", red, pixel.DefaultBg), WithTransformers(cyc))
	outer := NewCompositor(3, 1)
	outer.Add(inner)

	for pass := 0; pass < 2; pass++ {
		outer.BeginPass()
		if got := outer.Get(0, 0).Fg; got != blue {
			t.Errorf("pass %d: first cell fg = %v, want blue", pass, got)
		}
		if got := outer.Get(1, 0).Fg; got != green {
			t.Errorf("pass %d: second cell fg = %v, want green", pass, got)
		}
	}
}

func TestTransformedWideGlyphKeepsPairConsistent(t *testing.T) {
	c := NewCompositor(3, 1)
	low := shape.NewFull(3, 1)
	low.Set(0, 0, pixel.New("漢", red, pixel.DefaultBg, 0))
	c.Add(low, WithTransformers(transform.Flash(1)))

	tests := []struct {
		tick      uint64
		glyph     string
		contBlank bool
	}{
		{0, "漢", false},
		{1, pixel.Empty, true},
	}
	for _, tt := range tests {
		c.SetTick(tt.tick)
		if got := c.Get(0, 0).Char; got != tt.glyph {
			t.Errorf("tick %d: glyph = %q, want %q", tt.tick, got, tt.glyph)
		}
		got := c.Get(1, 0)
		if tt.contBlank && got.Char != pixel.Empty {
			t.Errorf("tick %d: continuation = %v, want blank", tt.tick, got)
		}
		if !tt.contBlank && !got.IsContinuation() {
			t.Errorf("tick %d: continuation = %v, want kept", tt.tick, got)
		}
	}
}
