package transform

import (
	"strings"

	"github.com/lixenwraith/cellforge/pixel"
	"github.com/lixenwraith/cellforge/shape"
)

// KernelDefault is the table key used when no pattern matches
const KernelDefault = "default"

// Neighborhood reads the 3x3 block around (x, y) with raw reads. in[dy][dx]
// is false for cells outside the source
func Neighborhood(src shape.Shape, x, y int) (cells [3][3]pixel.Pixel, in [3][3]bool) {
	w, h := src.Size()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				cells[dy+1][dx+1] = pixel.Blank
				continue
			}
			cells[dy+1][dx+1] = shape.Raw(src, nx, ny)
			in[dy+1][dx+1] = true
		}
	}
	return cells, in
}

// KernelKey builds the 9-character pattern for (x, y), row-major, '#' for an
// occupied cell and ' ' for a blank or out-of-bounds one. With maskDiags the
// four corners are always ' '
func KernelKey(src shape.Shape, x, y int, maskDiags bool) string {
	cells, in := Neighborhood(src, x, y)
	var b strings.Builder
	b.Grow(9)
	for dy := 0; dy < 3; dy++ {
		for dx := 0; dx < 3; dx++ {
			if maskDiags && dx != 1 && dy != 1 {
				b.WriteByte(' ')
				continue
			}
			if in[dy][dx] && occupied(cells[dy][dx].Char) {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func occupied(char string) bool {
	switch char {
	case pixel.Empty, "", pixel.TransparentChar:
		return false
	}
	return true
}

// NewKernel builds a char transformer that replaces each cell by the table
// entry for its neighborhood pattern, falling back to the "default" key, then
// to the cell's own char. A non-empty matchOnly restricts rewriting to blank
// cells and cells whose char appears in it
func NewKernel(table map[string]string, maskDiags bool, matchOnly string) *Transformer {
	tbl := make(map[string]string, len(table))
	for k, v := range table {
		tbl[k] = v
	}
	return MustNew(Slots{
		Char: Func(func(a Args[string]) string {
			if matchOnly != "" && occupied(a.Value) && !strings.Contains(matchOnly, a.Value) {
				return a.Value
			}
			if v, ok := tbl[KernelKey(a.Source, a.X, a.Y, maskDiags)]; ok {
				return v
			}
			if v, ok := tbl[KernelDefault]; ok {
				return v
			}
			return a.Value
		}, "value", "source", "pos"),
	})
}
