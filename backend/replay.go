package backend

import (
	"bytes"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cellforge/pixel"
)

// Replay interprets a VT byte stream onto a blank width x height grid with
// autowrap off. It understands CUP, cursor movement, erase, SGR (attributes,
// 256-color and true-color) and UTF-8 text; anything else is skipped
func Replay(data []byte, width, height int) *Grid {
	vt := &vt{grid: NewGrid(width, height)}
	vt.resetStyle()
	vt.feed(data)
	return vt.grid
}

type vt struct {
	grid *Grid
	x, y int
	fg   pixel.Color
	bg   pixel.Color
	eff  pixel.Effects
}

var (
	sgrOn  = map[int]pixel.Effects{}
	sgrOff = map[int]pixel.Effects{}
)

func init() {
	for e, code := range pixel.EffectOn {
		sgrOn[code] |= e
	}
	for e, code := range pixel.EffectOff {
		sgrOff[code] |= e
	}
}

func (v *vt) resetStyle() {
	v.fg, v.bg, v.eff = pixel.DefaultFg, pixel.DefaultBg, pixel.EffectNone
}

func (v *vt) feed(data []byte) {
	for i := 0; i < len(data); {
		if data[i] == 0x1b {
			i = v.escape(data, i)
			continue
		}
		end := bytes.IndexByte(data[i:], 0x1b)
		if end < 0 {
			end = len(data)
		} else {
			end += i
		}
		v.text(string(data[i:end]))
		i = end
	}
}

// escape consumes one escape sequence starting at data[i] and returns the
// index after it
func (v *vt) escape(data []byte, i int) int {
	if i+1 >= len(data) {
		return len(data)
	}
	switch data[i+1] {
	case '[':
	case 'c':
		v.grid = NewGrid(v.grid.Width, v.grid.Height)
		v.x, v.y = 0, 0
		v.resetStyle()
		return i + 2
	default:
		return i + 2
	}

	j := i + 2
	start := j
	for j < len(data) && data[j] >= 0x20 && data[j] <= 0x3f {
		j++
	}
	params := string(data[start:j])
	if j >= len(data) {
		return len(data)
	}
	final := data[j]
	if len(params) > 0 && params[0] == '?' {
		return j + 1
	}
	args := parseParams(params)
	arg := func(n, def int) int {
		if n < len(args) && args[n] > 0 {
			return args[n]
		}
		return def
	}

	switch final {
	case 'H', 'f':
		v.moveTo(arg(1, 1)-1, arg(0, 1)-1)
	case 'C':
		v.moveTo(v.x+arg(0, 1), v.y)
	case 'D':
		v.moveTo(v.x-arg(0, 1), v.y)
	case 'A':
		v.moveTo(v.x, v.y-arg(0, 1))
	case 'B':
		v.moveTo(v.x, v.y+arg(0, 1))
	case 'G':
		v.moveTo(arg(0, 1)-1, v.y)
	case 'J':
		if arg(0, 0) == 2 {
			v.erase(0, 0, v.grid.Width*v.grid.Height)
		}
	case 'K':
		v.erase(v.x, v.y, v.grid.Width-v.x)
	case 'm':
		v.sgr(args)
	}
	return j + 1
}

func parseParams(s string) []int {
	if s == "" {
		return []int{0}
	}
	var out []int
	for _, f := range bytes.Split([]byte(s), []byte{';'}) {
		n, _ := strconv.Atoi(string(f))
		out = append(out, n)
	}
	return out
}

func (v *vt) moveTo(x, y int) {
	v.x = min(max(x, 0), max(v.grid.Width-1, 0))
	v.y = min(max(y, 0), max(v.grid.Height-1, 0))
}

func (v *vt) erase(x, y, n int) {
	blank := pixel.Pixel{Char: pixel.Empty, Fg: v.fg, Bg: v.bg}
	for i := y*v.grid.Width + x; n > 0 && i < len(v.grid.Cells); i, n = i+1, n-1 {
		v.grid.Cells[i] = blank
	}
}

func (v *vt) sgr(args []int) {
	for i := 0; i < len(args); i++ {
		code := args[i]
		switch {
		case code == 0:
			v.resetStyle()
		case code == 38 || code == 48:
			c, used := extendedColor(args[i+1:])
			i += used
			if used == 0 {
				continue
			}
			if code == 38 {
				v.fg = c
			} else {
				v.bg = c
			}
		case code == 39:
			v.fg = pixel.DefaultFg
		case code == 49:
			v.bg = pixel.DefaultBg
		case code >= 30 && code <= 37:
			v.fg = paletteColor(code - 30)
		case code >= 40 && code <= 47:
			v.bg = paletteColor(code - 40)
		case code >= 90 && code <= 97:
			v.fg = paletteColor(code - 90 + 8)
		case code >= 100 && code <= 107:
			v.bg = paletteColor(code - 100 + 8)
		default:
			if e, ok := sgrOn[code]; ok {
				v.eff |= e
			} else if e, ok := sgrOff[code]; ok {
				v.eff &^= e
			}
		}
	}
}

// extendedColor decodes the tail of a 38/48 sequence and reports how many
// parameters it consumed
func extendedColor(args []int) (pixel.Color, int) {
	if len(args) >= 2 && args[0] == 5 {
		return paletteColor(args[1]), 2
	}
	if len(args) >= 4 && args[0] == 2 {
		return pixel.RGB(uint8(args[1]), uint8(args[2]), uint8(args[3])), 4
	}
	return pixel.Color{}, 0
}

func paletteColor(n int) pixel.Color {
	r, g, b := tcell.PaletteColor(n).RGB()
	return pixel.RGB(uint8(r), uint8(g), uint8(b))
}

func (v *vt) text(s string) {
	for _, g := range pixel.Graphemes(s) {
		w := pixel.Width(g)
		if w == 0 {
			continue
		}
		if v.x+w > v.grid.Width {
			continue
		}
		v.detach(v.x)
		if w == 2 {
			v.detach(v.x + 1)
		}
		p := pixel.Pixel{Char: g, Fg: v.fg, Bg: v.bg, Effects: v.eff}
		v.grid.Put(v.x, v.y, p)
		if w == 2 {
			p.Char = pixel.Continuation
			v.grid.Put(v.x+1, v.y, p)
		}
		v.x += w
		if v.x >= v.grid.Width {
			// autowrap off: the cursor sticks to the last column
			v.x = v.grid.Width - 1
		}
	}
}

// detach blanks the other half of a wide glyph about to lose cell x
func (v *vt) detach(x int) {
	cur := v.grid.Get(x, v.y)
	switch {
	case cur.IsContinuation():
		left := v.grid.Get(x-1, v.y)
		left.Char = pixel.Empty
		v.grid.Put(x-1, v.y, left)
	case pixel.IsWide(cur.Char):
		right := v.grid.Get(x+1, v.y)
		if right.IsContinuation() {
			right.Char = pixel.Empty
			v.grid.Put(x+1, v.y, right)
		}
	}
}
