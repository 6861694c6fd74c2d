package shape

import (
	"strings"
	"testing"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

var ink = pixel.New("#", red, pixel.DefaultBg, 0)

// rows renders the stored chars of s, continuation cells omitted
func rows(s *FullShape) []string {
	w, h := s.Size()
	out := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			p := s.GetRaw(x, y)
			if p.IsContinuation() {
				continue
			}
			b.WriteString(p.Char)
		}
		out[y] = b.String()
	}
	return out
}

func checkRows(t *testing.T, s *FullShape, want []string) {
	t.Helper()
	got := rows(s)
	for y := range want {
		if got[y] != want[y] {
			t.Errorf("row %d = %q, want %q", y, got[y], want[y])
		}
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           []string
	}{
		{"Horizontal", 0, 0, 4, 0, []string{"#####", "     ", "     "}},
		{"Diagonal", 0, 0, 2, 2, []string{"#    ", " #   ", "  #  "}},
		{"Steep", 0, 0, 1, 2, []string{"#    ", " #   ", " #   "}},
		{"Reversed", 4, 2, 0, 2, []string{"     ", "     ", "#####"}},
		{"Clipped", -2, 1, 7, 1, []string{"     ", "#####", "     "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStrict(t, true)
			s := NewFull(5, 3)
			if err := DrawLine(s, tt.x1, tt.y1, tt.x2, tt.y2, ink); err != nil {
				t.Fatalf("DrawLine: %v", err)
			}
			checkRows(t, s, tt.want)
		})
	}
}

func TestDrawRectAndFill(t *testing.T) {
	s := NewFull(6, 3)
	s.ClearDirty()
	if err := DrawRect(s, dirty.R(1, 0, 4, 3), ink); err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	checkRows(t, s, []string{" #### ", " #  # ", " #### "})
	if len(s.DirtyRects()) == 0 {
		t.Error("DrawRect left no dirt")
	}

	f := NewFull(6, 3)
	if err := FillRect(f, dirty.R(0, 1, 2, 5), pixel.New("o", red, pixel.DefaultBg, 0)); err != nil {
		t.Fatalf("FillRect: %v", err)
	}
	checkRows(t, f, []string{"      ", "oo    ", "oo    "})

	wide := NewFull(5, 1)
	if err := FillRect(wide, Bounds(wide), pixel.New("世", red, pixel.DefaultBg, 0)); err != nil {
		t.Fatalf("FillRect wide: %v", err)
	}
	checkRows(t, wide, []string{"世世 "})
}

func TestDrawEllipse(t *testing.T) {
	tests := []struct {
		name string
		fill bool
		want []string
	}{
		{"Filled", true, []string{" ### ", "#####", "#####", "#####", " ### "}},
		{"Outline", false, []string{" ### ", "#   #", "#   #", "#   #", " ### "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFull(5, 5)
			if err := DrawEllipse(s, dirty.R(0, 0, 5, 5), ink, tt.fill); err != nil {
				t.Fatalf("DrawEllipse: %v", err)
			}
			checkRows(t, s, tt.want)
		})
	}
}

func TestDrawBezier(t *testing.T) {
	s := NewFull(5, 1)
	if err := DrawBezier(s, [4]Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, ink); err != nil {
		t.Fatalf("DrawBezier: %v", err)
	}
	checkRows(t, s, []string{"#### "})

	arc := NewFull(5, 5)
	if err := DrawBezier(arc, [4]Point{{0, 0}, {0, 4}, {4, 4}, {4, 0}}, ink); err != nil {
		t.Fatalf("DrawBezier: %v", err)
	}
	for _, pt := range []Point{{0, 0}, {4, 0}} {
		if got := arc.GetRaw(pt.X, pt.Y).Char; got != "#" {
			t.Errorf("end point %v = %q, want #", pt, got)
		}
	}
}

func TestBlit(t *testing.T) {
	src := NewFull(3, 2)
	WriteString(src, 0, 0, "abc", red, pixel.DefaultBg, 0)
	WriteString(src, 0, 1, "def", red, pixel.DefaultBg, 0)

	tests := []struct {
		name string
		x, y int
		roi  dirty.Rect
		want []string
	}{
		{"Region", 1, 1, dirty.R(1, 0, 2, 2), []string{"     ", " bc  ", " ef  "}},
		{"Whole", 0, 0, dirty.Rect{}, []string{"abc  ", "def  ", "     "}},
		{"ClippedRight", 4, 0, dirty.Rect{}, []string{"    a", "    d", "     "}},
		{"ClippedLeft", -2, 2, dirty.Rect{}, []string{"     ", "     ", "c    "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStrict(t, true)
			dst := NewFull(5, 3)
			if err := Blit(dst, tt.x, tt.y, src, tt.roi); err != nil {
				t.Fatalf("Blit: %v", err)
			}
			checkRows(t, dst, tt.want)
		})
	}
}

func TestBlitCutsWideGlyph(t *testing.T) {
	src := NewFull(3, 1)
	src.Set(1, 0, pixel.New("世", red, pixel.DefaultBg, 0))

	whole := NewFull(4, 1)
	if err := Blit(whole, 0, 0, src, dirty.Rect{}); err != nil {
		t.Fatalf("Blit: %v", err)
	}
	if got := whole.GetRaw(2, 0); !got.IsContinuation() {
		t.Errorf("continuation lost: %v", got)
	}

	tests := []struct {
		name string
		roi  dirty.Rect
	}{
		{"SecondHalfOutside", dirty.R(0, 0, 2, 1)},
		{"FirstHalfOutside", dirty.R(2, 0, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := NewFull(3, 1)
			if err := Blit(dst, 0, 0, src, tt.roi); err != nil {
				t.Fatalf("Blit: %v", err)
			}
			for x := 0; x < 3; x++ {
				if p := dst.GetRaw(x, 0); p.Width() == 2 || p.IsContinuation() {
					t.Errorf("(%d,0) = %v, want no wide glyph halves", x, p)
				}
			}
		})
	}
}

func TestBlitOverlappingSelf(t *testing.T) {
	s := NewFull(4, 1)
	WriteString(s, 0, 0, "abcd", red, pixel.DefaultBg, 0)
	if err := Blit(s, 1, 0, s, dirty.R(0, 0, 3, 1)); err != nil {
		t.Fatalf("Blit: %v", err)
	}
	checkRows(t, s, []string{"aabc"})
}

func TestHighRes(t *testing.T) {
	s := NewFull(2, 1)
	hr := NewHighRes(s, red, pixel.DefaultBg)
	if w, h := hr.Size(); w != 4 || h != 2 {
		t.Fatalf("Size = %dx%d, want 4x2", w, h)
	}

	steps := []struct {
		x, y int
		on   bool
		want string
	}{
		{0, 0, true, "▘"},
		{1, 1, true, "▚"},
		{0, 0, false, "▗"},
		{1, 0, true, "▐"},
	}
	for _, st := range steps {
		if err := hr.SetDot(st.x, st.y, st.on); err != nil {
			t.Fatalf("SetDot: %v", err)
		}
		if got := s.GetRaw(0, 0); got.Char != st.want || got.Fg != red {
			t.Errorf("after dot (%d,%d)=%v: cell = %v, want %q", st.x, st.y, st.on, got, st.want)
		}
	}
	if set, ok := hr.Dot(1, 1); !set || !ok {
		t.Errorf("Dot(1,1) = %v, %v", set, ok)
	}

	s.Set(1, 0, pixel.New("x", red, pixel.DefaultBg, 0))
	if _, ok := hr.Dot(2, 0); ok {
		t.Error("text cell reported as dots")
	}

	line := NewFull(2, 1)
	if err := NewHighRes(line, red, pixel.DefaultBg).Line(0, 1, 3, 1, true); err != nil {
		t.Fatalf("Line: %v", err)
	}
	checkRows(t, line, []string{"▄▄"})
}
