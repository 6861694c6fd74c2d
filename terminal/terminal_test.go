package terminal

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lixenwraith/cellforge/backend"
	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

var (
	red  = pixel.RGB(255, 0, 0)
	blue = pixel.RGB(0, 0, 255)
)

// toggleWriter fails while err is set
type toggleWriter struct {
	buf bytes.Buffer
	err error
}

func (w *toggleWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.buf.Write(p)
}

func scene() *backend.Grid {
	g := backend.NewGrid(8, 3)
	g.Put(0, 0, pixel.New("a", red, pixel.DefaultBg, pixel.EffectBold))
	g.Put(1, 0, pixel.New("b", red, pixel.DefaultBg, pixel.EffectBold))
	g.Put(2, 0, pixel.New("c", blue, red, 0))
	g.Put(3, 1, pixel.New("世", pixel.DefaultFg, blue, 0))
	g.Put(4, 1, pixel.New(pixel.Continuation, pixel.DefaultFg, blue, 0))
	g.Put(5, 1, pixel.New("x", pixel.DefaultFg, pixel.DefaultBg, pixel.EffectUnderline|pixel.EffectItalic))
	g.Put(7, 2, pixel.New("z", blue, pixel.DefaultBg, pixel.EffectReverse))
	return g
}

func drawFrame(t *testing.T, e *Emitter, src *backend.Grid) error {
	t.Helper()
	if err := e.BeginFrame(src.Width, src.Height); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	e.WriteRect(dirty.R(0, 0, src.Width, src.Height), src)
	return e.EndFrame()
}

func TestDiffMatchesNaive(t *testing.T) {
	src := scene()

	var diffOut, naiveOut bytes.Buffer
	diff := NewEmitter(&diffOut, ColorModeTrueColor, ModeDiff)
	naive := NewEmitter(&naiveOut, ColorModeTrueColor, ModeNaive)
	if err := drawFrame(t, diff, src); err != nil {
		t.Fatalf("diff EndFrame: %v", err)
	}
	if err := drawFrame(t, naive, src); err != nil {
		t.Fatalf("naive EndFrame: %v", err)
	}

	dg := backend.Replay(diffOut.Bytes(), src.Width, src.Height)
	ng := backend.Replay(naiveOut.Bytes(), src.Width, src.Height)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if dg.Get(x, y) != ng.Get(x, y) {
				t.Errorf("(%d,%d): diff %v, naive %v", x, y, dg.Get(x, y), ng.Get(x, y))
			}
		}
	}
	for _, pos := range [][2]int{{0, 0}, {2, 0}, {3, 1}, {5, 1}, {7, 2}} {
		x, y := pos[0], pos[1]
		if got, want := dg.Get(x, y), src.Get(x, y); got != want {
			t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
		}
	}
	if diffOut.Len() > naiveOut.Len() {
		t.Errorf("diff output %d bytes, naive %d", diffOut.Len(), naiveOut.Len())
	}
}

func TestDiffSkipsUnchanged(t *testing.T) {
	src := scene()
	w := &toggleWriter{}
	e := NewEmitter(w, ColorModeTrueColor, ModeDiff)
	if err := drawFrame(t, e, src); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	first := w.buf.Len()
	if err := drawFrame(t, e, src); err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if w.buf.Len() != first {
		t.Errorf("unchanged frame wrote %d bytes", w.buf.Len()-first)
	}

	src.Put(6, 2, pixel.New("q", red, pixel.DefaultBg, 0))
	if err := drawFrame(t, e, src); err != nil {
		t.Fatalf("frame 3: %v", err)
	}
	delta := w.buf.Bytes()[first:]
	if bytes.Count(delta, []byte("q")) != 1 || bytes.ContainsAny(delta, "abcxz") {
		t.Errorf("frame 3 rewrote more than the changed cell: %q", delta)
	}

	g := backend.Replay(w.buf.Bytes(), src.Width, src.Height)
	for i, want := range src.Cells {
		if got := g.Cells[i]; got != want {
			t.Errorf("cell %d = %v, want %v", i, got, want)
		}
	}
}

func TestSharedOffCode(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, ColorModeTrueColor, ModeDiff)
	e.BeginFrame(4, 1)
	e.WriteCell(0, 0, pixel.New("A", pixel.DefaultFg, pixel.DefaultBg, pixel.EffectBold|pixel.EffectFaint))
	e.WriteCell(1, 0, pixel.New("B", pixel.DefaultFg, pixel.DefaultBg, pixel.EffectFaint))
	if err := e.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	// 22 clears both bold and faint, so faint has to be restated
	if !strings.Contains(out.String(), "\x1b[22;2mB") {
		t.Errorf("output %q lacks off-then-restore sequence", out.String())
	}
	g := backend.Replay(out.Bytes(), 4, 1)
	if got := g.Get(1, 0).Effects; got != pixel.EffectFaint {
		t.Errorf("B effects = %v, want faint", got)
	}
}

func TestColorMode256Output(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, ColorMode256, ModeDiff)
	e.BeginFrame(2, 1)
	e.WriteCell(0, 0, pixel.New("r", red, pixel.DefaultBg, 0))
	if err := e.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if !strings.Contains(out.String(), "38;5;196m") {
		t.Errorf("output %q lacks palette color", out.String())
	}
	if strings.Contains(out.String(), "38;2;") {
		t.Errorf("truecolor sequence in 256 mode: %q", out.String())
	}
}

func TestWideGlyphLastColumn(t *testing.T) {
	var out bytes.Buffer
	e := NewEmitter(&out, ColorModeTrueColor, ModeDiff)
	e.BeginFrame(3, 1)
	e.WriteCell(2, 0, pixel.New("世", pixel.DefaultFg, pixel.DefaultBg, 0))
	if err := e.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if strings.Contains(out.String(), "世") {
		t.Errorf("wide glyph emitted in last column: %q", out.String())
	}
}

func TestWriteFailureRetry(t *testing.T) {
	src := scene()
	boom := errors.New("broken pipe")
	w := &toggleWriter{err: boom}
	e := NewEmitter(w, ColorModeTrueColor, ModeDiff)

	err := drawFrame(t, e, src)
	if !errors.Is(err, backend.ErrWrite) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrWrite wrapping cause", err)
	}
	if st := e.State(); st.CursorValid || st.StyleValid {
		t.Errorf("state trusted after failure: %+v", st)
	}

	w.err = nil
	if err := drawFrame(t, e, src); err != nil {
		t.Fatalf("retry: %v", err)
	}
	g := backend.Replay(w.buf.Bytes(), src.Width, src.Height)
	for i, want := range src.Cells {
		if got := g.Cells[i]; got != want {
			t.Errorf("cell %d after retry = %v, want %v", i, got, want)
		}
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"truecolor", ColorModeTrueColor, false},
		{"24BIT", ColorModeTrueColor, false},
		{"256", ColorMode256, false},
		{"16", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRGBTo256(t *testing.T) {
	tests := []struct {
		name string
		c    pixel.Color
		want uint8
	}{
		{"black", pixel.RGB(0, 0, 0), 16},
		{"red", pixel.RGB(255, 0, 0), 196},
		{"white", pixel.RGB(255, 255, 255), 231},
		{"mid gray", pixel.RGB(128, 128, 128), 244},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGBTo256(tt.c); got != tt.want {
				t.Errorf("RGBTo256(%v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

type fakeDevice struct {
	out      bytes.Buffer
	w, h     int
	resize   func(int, int)
	inits    int
	finis    int
	writeErr error
}

func (d *fakeDevice) Init() error { d.inits++; return nil }

func (d *fakeDevice) Fini() { d.finis++ }

func (d *fakeDevice) Size() (int, int) { return d.w, d.h }

func (d *fakeDevice) SetResizeHandler(f func(int, int)) { d.resize = f }

func (d *fakeDevice) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	return d.out.Write(p)
}

func TestTerminalLifecycle(t *testing.T) {
	d := &fakeDevice{w: 10, h: 4}
	term := NewWithDevice(d, ColorModeTrueColor, ModeDiff)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, seq := range [][]byte{csiAltScreenEnter, csiCursorHide, csiAutoWrapOff, csiClear} {
		if !bytes.Contains(d.out.Bytes(), seq) {
			t.Errorf("Init output lacks %q", seq)
		}
	}
	if w, h := term.Size(); w != 10 || h != 4 {
		t.Errorf("Size = %dx%d", w, h)
	}

	// cleared screen is known blank, so blank cells are skipped
	d.out.Reset()
	e := term.Emitter()
	e.BeginFrame(10, 4)
	e.WriteCell(0, 0, pixel.Blank)
	if err := e.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if d.out.Len() != 0 {
		t.Errorf("blank cell over cleared screen wrote %q", d.out.String())
	}

	d.resize(20, 5)
	d.resize(30, 6)
	if ev := <-term.ResizeChan(); ev.Width != 30 || ev.Height != 6 {
		t.Errorf("resize event = %+v, want latest size", ev)
	}

	term.Fini()
	term.Fini()
	if d.finis != 1 {
		t.Errorf("Fini reached device %d times", d.finis)
	}
	if !bytes.Contains(d.out.Bytes(), csiAltScreenExit) || !bytes.Contains(d.out.Bytes(), csiAutoWrapOn) {
		t.Errorf("Fini output %q", d.out.String())
	}
}

func TestTerminalInitClearFailure(t *testing.T) {
	d := &fakeDevice{w: 4, h: 2, writeErr: io.ErrClosedPipe}
	term := NewWithDevice(d, ColorModeTrueColor, ModeDiff)
	if err := term.Init(); !errors.Is(err, backend.ErrWrite) {
		t.Errorf("Init err = %v, want ErrWrite", err)
	}
}

func TestEmergencyReset(t *testing.T) {
	var out bytes.Buffer
	EmergencyReset(&out)
	for _, seq := range [][]byte{csiCursorShow, csiAltScreenExit, csiSGR0, csiRIS} {
		if !bytes.Contains(out.Bytes(), seq) {
			t.Errorf("reset output lacks %q", seq)
		}
	}
}
