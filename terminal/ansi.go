package terminal

import (
	"bytes"
)

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	// CSI sequences
	csi      = []byte("\x1b[")
	csiClear = []byte("\x1b[2J\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0  = []byte("\x1b[0m")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")
	csiCursorPos  = []byte("\x1b[") // followed by row;colH

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: Auto-Wrap Mode
	// ?7l disables wrapping (cursor sticks at right edge), preventing scroll when writing to bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// Color parameters, written inside an SGR
	sgrFgRGB = []byte("38;2;") // followed by R;G;B
	sgrBgRGB = []byte("48;2;")
	sgrFg256 = []byte("38;5;") // followed by N
	sgrBg256 = []byte("48;5;")
)

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w *bytes.Buffer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	// Fallback for >999 (rare)
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bytes.Buffer, x, y int) {
	w.Write(csiCursorPos)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// writeCursorForward writes cursor forward N positions
func writeCursorForward(w *bytes.Buffer, n int) {
	if n <= 0 {
		return
	}
	if n == 1 {
		w.WriteString("\x1b[C")
		return
	}
	w.Write(csi)
	writeInt(w, n)
	w.WriteByte('C')
}

// sgrWriter accumulates SGR parameters, emitting the CSI prefix lazily so an
// empty diff writes nothing
type sgrWriter struct {
	w     *bytes.Buffer
	begun bool
}

func (s *sgrWriter) sep() {
	if !s.begun {
		s.w.Write(csi)
		s.begun = true
		return
	}
	s.w.WriteByte(';')
}

func (s *sgrWriter) param(n int) {
	s.sep()
	writeInt(s.w, n)
}

func (s *sgrWriter) raw(prefix []byte) {
	s.sep()
	s.w.Write(prefix)
}

func (s *sgrWriter) end() {
	if s.begun {
		s.w.WriteByte('m')
	}
}
