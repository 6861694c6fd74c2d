package shape

import (
	"errors"
	"testing"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

var (
	red  = pixel.RGB(255, 0, 0)
	blue = pixel.RGB(0, 0, 255)
)

func withStrict(t *testing.T, on bool) {
	t.Helper()
	prev := Strict()
	SetStrict(on)
	t.Cleanup(func() { SetStrict(prev) })
}

func TestFullShapeSetGetRoundTrip(t *testing.T) {
	s := NewFull(10, 10)
	tests := []struct {
		name string
		x, y int
		p    pixel.Pixel
	}{
		{"Origin", 0, 0, pixel.New("A", red, blue, pixel.EffectBold)},
		{"Corner", 9, 9, pixel.New("z", blue, red, pixel.EffectNone)},
		{"Middle", 4, 6, pixel.New("é", pixel.RGB(1, 2, 3), pixel.RGB(4, 5, 6), pixel.EffectUnderline|pixel.EffectItalic)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Set(tt.x, tt.y, tt.p); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got := s.Get(tt.x, tt.y); got != tt.p {
				t.Errorf("Get(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.p)
			}
		})
	}
}

func TestOutOfRangePolicy(t *testing.T) {
	shapes := []struct {
		name string
		s    Shape
	}{
		{"Full", NewFull(3, 3)},
		{"Value", NewValue(3, 3)},
		{"Paletted", NewPaletted(3, 3, nil)},
		{"View", NewView(NewFull(10, 10), dirty.R(2, 2, 3, 3))},
	}
	p := pixel.New("x", pixel.DefaultFg, pixel.DefaultBg, 0)

	for _, tt := range shapes {
		t.Run(tt.name+"/lenient", func(t *testing.T) {
			withStrict(t, false)
			if err := tt.s.Set(3, 0, p); err != nil {
				t.Errorf("lenient Set out of range returned %v", err)
			}
			if got := tt.s.Get(-1, 0); got != pixel.TransparentPixel {
				t.Errorf("Get out of range = %v, want TransparentPixel", got)
			}
		})
		t.Run(tt.name+"/strict", func(t *testing.T) {
			withStrict(t, true)
			err := tt.s.Set(0, 3, p)
			if !errors.Is(err, ErrRange) {
				t.Fatalf("strict Set out of range error = %v, want ErrRange", err)
			}
			var re *RangeError
			if !errors.As(err, &re) || re.Y != 3 {
				t.Errorf("RangeError = %+v, want Y=3", re)
			}
		})
	}
}

func TestWideGlyph(t *testing.T) {
	s := NewFull(4, 1)
	wide := pixel.New("世", red, blue, pixel.EffectBold)

	if err := s.Set(1, 0, wide); err != nil {
		t.Fatalf("Set wide: %v", err)
	}
	if got := s.Get(1, 0); got != wide {
		t.Errorf("primary = %v, want %v", got, wide)
	}
	cont := s.Get(2, 0)
	want := pixel.New(pixel.Continuation, red, blue, pixel.EffectBold)
	if cont != want {
		t.Errorf("continuation = %v, want %v", cont, want)
	}

	// overwriting the continuation orphans the primary, which is blanked
	if err := s.Set(2, 0, pixel.New("x", red, blue, 0)); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(1, 0).Char; got != pixel.Empty {
		t.Errorf("orphaned primary char = %q, want blank", got)
	}
}

func TestWideGlyphAtRightEdgeRejected(t *testing.T) {
	wide := pixel.New("世", red, blue, 0)

	t.Run("lenient", func(t *testing.T) {
		withStrict(t, false)
		s := NewFull(4, 2)
		before := s.Get(3, 1)
		if err := s.Set(3, 1, wide); err != nil {
			t.Fatalf("lenient reject returned %v", err)
		}
		if got := s.Get(3, 1); got != before {
			t.Errorf("rightmost cell changed to %v, want unchanged %v", got, before)
		}
	})
	t.Run("strict", func(t *testing.T) {
		withStrict(t, true)
		s := NewFull(4, 2)
		before := s.Get(3, 1)
		err := s.Set(3, 1, wide)
		var re *RangeError
		if !errors.As(err, &re) || re.X != 4 {
			t.Fatalf("strict reject error = %v, want RangeError at x=4", err)
		}
		if got := s.Get(3, 1); got != before {
			t.Errorf("rightmost cell changed to %v", got)
		}
	})
}

func TestWideGlyphRelocatesMarks(t *testing.T) {
	s := NewFull(5, 1)
	if err := s.AddMark(2, 0, "anchor"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMark(1, 0, "primary"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(1, 0, pixel.New("世", pixel.DefaultFg, pixel.DefaultBg, 0)); err != nil {
		t.Fatal(err)
	}
	if got := s.Marks(2, 0); len(got) != 0 {
		t.Errorf("continuation cell still holds marks %v", got)
	}
	got := s.Marks(1, 0)
	if len(got) != 2 || got[0] != "primary" || got[1] != "anchor" {
		t.Errorf("primary marks = %v, want [primary anchor]", got)
	}
}

func TestStampKeepsTransparentChannels(t *testing.T) {
	s := NewFull(2, 2)
	if err := s.Set(0, 0, pixel.New("A", red, blue, pixel.EffectBold)); err != nil {
		t.Fatal(err)
	}
	if err := s.Stamp(0, 0, pixel.Pixel{Char: pixel.TransparentChar, Fg: blue, Bg: pixel.Transparent, Effects: pixel.EffectsTransparent}); err != nil {
		t.Fatal(err)
	}
	want := pixel.New("A", blue, blue, pixel.EffectBold)
	if got := s.Get(0, 0); got != want {
		t.Errorf("after Stamp = %v, want %v", got, want)
	}
}

func TestValueShape(t *testing.T) {
	s := NewValue(3, 1)
	if got := s.Get(0, 0); got != pixel.Blank {
		t.Errorf("zero intensity = %v, want blank", got)
	}
	if err := s.Set(1, 0, pixel.New("#", pixel.DefaultFg, pixel.DefaultBg, 0)); err != nil {
		t.Fatalf("value write: %v", err)
	}
	if got := s.Value(1, 0); got != 1 {
		t.Errorf("intensity = %f, want 1", got)
	}
	if got := s.Get(1, 0); got.Char != pixel.FullBlock || got.Fg != pixel.RGB(255, 255, 255) {
		t.Errorf("synthesized pixel = %v", got)
	}

	err := s.Set(2, 0, pixel.New("#", pixel.DefaultFg, red, 0))
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("background write error = %v, want ErrKindMismatch", err)
	}
	err = s.Set(2, 0, pixel.New("#", pixel.DefaultFg, pixel.DefaultBg, pixel.EffectBold))
	if !errors.Is(err, ErrKindMismatch) {
		t.Errorf("effects write error = %v, want ErrKindMismatch", err)
	}
	if s.Value(2, 0) != 0 {
		t.Error("rejected write must not change the cell")
	}
}

func TestPalettedShape(t *testing.T) {
	s := NewPalettedFromText([]string{
		"#.",
		".#",
	}, map[rune]pixel.Pixel{
		'#': pixel.New(pixel.FullBlock, red, pixel.DefaultBg, 0),
	})

	if got := s.Get(0, 0).Fg; got != red {
		t.Errorf("mapped index fg = %v, want red", got)
	}
	if got := s.Get(1, 0); got != pixel.TransparentPixel {
		t.Errorf("unmapped index = %v, want TRANSPARENT", got)
	}

	green := pixel.New("g", pixel.RGB(0, 255, 0), pixel.DefaultBg, 0)
	if err := s.Set(1, 0, green); err != nil {
		t.Fatal(err)
	}
	if got := s.Get(1, 0); got != green {
		t.Errorf("inserted pixel reads %v, want %v", got, green)
	}
	first := s.Index(1, 0)
	if err := s.Set(0, 1, green); err != nil {
		t.Fatal(err)
	}
	if s.Index(0, 1) != first {
		t.Errorf("equal pixel got a new index %d, want reuse of %d", s.Index(0, 1), first)
	}

	s.ClearDirty()
	s.SetEntry(first, pixel.New("G", blue, pixel.DefaultBg, 0))
	if s.Get(0, 1).Char != "G" {
		t.Error("palette entry change not visible")
	}
	if len(s.DirtyRects()) == 0 {
		t.Error("palette entry change must dirty the cells using it")
	}
}

func TestViewPassThrough(t *testing.T) {
	parent := NewFull(10, 10)
	v := NewView(parent, dirty.R(2, 3, 4, 4))
	if w, h := v.Size(); w != 4 || h != 4 {
		t.Fatalf("view size = %dx%d", w, h)
	}
	p := pixel.New("v", red, blue, 0)
	if err := v.Set(1, 1, p); err != nil {
		t.Fatal(err)
	}
	if got := parent.Get(3, 4); got != p {
		t.Errorf("parent(3,4) = %v, want %v", got, p)
	}

	inner := NewView(v, dirty.R(1, 1, 10, 10))
	if inner.Parent() != parent {
		t.Error("nested view should collapse onto the owning shape")
	}
	if r := inner.Rect(); r != dirty.R(3, 4, 3, 3) {
		t.Errorf("nested rect = %v, want Rect(3, 4, 3, 3)", r)
	}
	if got := inner.Get(0, 0); got != p {
		t.Errorf("nested view (0,0) = %v, want %v", got, p)
	}
}

func TestViewDirtyRects(t *testing.T) {
	parent := NewFull(32, 32)
	parent.ClearDirty()
	v := NewView(parent, dirty.R(8, 8, 16, 16))
	if len(v.DirtyRects()) != 0 {
		t.Fatal("expected clean view")
	}
	if err := parent.Set(30, 30, pixel.Blank); err != nil {
		t.Fatal(err)
	}
	if len(v.DirtyRects()) != 0 {
		t.Error("write outside the window must not show through")
	}
	if err := v.Set(0, 0, pixel.New("x", red, red, 0)); err != nil {
		t.Fatal(err)
	}
	rects := v.DirtyRects()
	if len(rects) != 1 || rects[0] != dirty.R(0, 0, 8, 8) {
		t.Errorf("view dirty rects = %v, want [Rect(0, 0, 8, 8)]", rects)
	}
	v.ClearDirty()
	if len(v.DirtyRects()) != 0 {
		t.Error("view ClearDirty left dirt inside the window")
	}
	if len(parent.DirtyRects()) == 0 {
		t.Error("view ClearDirty must keep the parent's dirt outside the window")
	}
}

func TestDirtyTracking(t *testing.T) {
	s := NewFull(32, 32)
	s.ClearDirty()
	cells := [][2]int{{0, 0}, {20, 5}, {31, 31}}
	for _, c := range cells {
		if err := s.Set(c[0], c[1], pixel.New("o", red, blue, 0)); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Tiles().Count(); got != len(cells) {
		t.Errorf("dirty tiles = %d, want %d", got, len(cells))
	}
	s.ClearDirty()
	if len(s.DirtyRects()) != 0 {
		t.Error("dirty set not empty after ClearDirty")
	}
}

func TestUndoRedo(t *testing.T) {
	s := NewFull(4, 4)
	s.EnableUndo(10)

	a := pixel.New("a", red, blue, 0)
	b := pixel.New("b", blue, red, 0)
	if err := s.Set(0, 0, a); err != nil {
		t.Fatal(err)
	}
	s.BeginUndoGroup()
	_ = s.Set(1, 0, b)
	_ = s.Set(2, 0, b)
	s.EndUndoGroup()

	if !s.Undo() {
		t.Fatal("Undo reported nothing to undo")
	}
	if s.Get(1, 0) != pixel.Blank || s.Get(2, 0) != pixel.Blank {
		t.Error("grouped writes not reverted together")
	}
	if s.Get(0, 0) != a {
		t.Error("earlier write reverted too early")
	}
	if !s.Redo() || s.Get(2, 0) != b {
		t.Error("Redo did not reapply the group")
	}
	s.Undo()
	s.Undo()
	if s.Get(0, 0) != pixel.Blank {
		t.Error("second undo did not revert first write")
	}
	if s.Undo() {
		t.Error("Undo past history should report false")
	}
}

func TestResizeAndClear(t *testing.T) {
	s := NewFull(4, 4)
	_ = s.Set(1, 1, pixel.New("k", red, blue, 0))
	_ = s.AddMark(3, 3, "m")
	s.Resize(2, 2)
	if w, h := s.Size(); w != 2 || h != 2 {
		t.Fatalf("size after resize = %dx%d", w, h)
	}
	if s.Get(1, 1).Char != "k" {
		t.Error("overlapping content lost on resize")
	}
	if got := s.Marks(1, 1); len(got) != 1 {
		t.Errorf("mark outside new bounds not relocated: %v", got)
	}

	s.Clear(true)
	if s.Get(0, 0) != pixel.TransparentPixel {
		t.Error("Clear(true) should leave transparent cells")
	}
}

func TestPromoteAndWriteString(t *testing.T) {
	v := NewValueFromBools([][]bool{{true, false}})
	f := Promote(v)
	if f.Get(0, 0).Char != pixel.FullBlock || f.Get(1, 0) != pixel.Blank {
		t.Errorf("promoted content wrong: %v %v", f.Get(0, 0), f.Get(1, 0))
	}

	s := NewFull(6, 1)
	end, err := WriteString(s, 0, 0, "a世bc", red, pixel.DefaultBg, 0)
	if err != nil {
		t.Fatal(err)
	}
	if end != 5 {
		t.Errorf("end column = %d, want 5", end)
	}
	if !s.Get(2, 0).IsContinuation() || s.Get(3, 0).Char != "b" {
		t.Errorf("wide glyph layout wrong: %v %v", s.Get(2, 0), s.Get(3, 0))
	}
}
