package shape

import (
	"math"

	"github.com/lixenwraith/cellforge/dirty"
	"github.com/lixenwraith/cellforge/pixel"
)

// Point is a cell position
type Point struct {
	X, Y int
}

// Drawing primitives write through Set, so dirty tracking and wide-glyph
// handling stay with the shape. Points falling outside the shape are clipped
// silently, whatever the out-of-range policy

func setClipped(s Shape, x, y int, p pixel.Pixel) error {
	w, h := s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return nil
	}
	return s.Set(x, y, p)
}

// DrawLine draws a straight line from (x1, y1) to (x2, y2), both ends included
func DrawLine(s Shape, x1, y1, x2, y2 int, p pixel.Pixel) error {
	return line(x1, y1, x2, y2, cellPlot(s, p))
}

type plotFunc func(x, y int) error

func cellPlot(s Shape, p pixel.Pixel) plotFunc {
	return func(x, y int) error { return setClipped(s, x, y, p) }
}

func line(x1, y1, x2, y2 int, plot plotFunc) error {
	dx, dy := abs(x2-x1), -abs(y2-y1)
	sx, sy := sign(x2-x1), sign(y2-y1)
	e := dx + dy
	for {
		if err := plot(x1, y1); err != nil {
			return err
		}
		if x1 == x2 && y1 == y2 {
			return nil
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

// DrawRect draws the outline of r
func DrawRect(s Shape, r dirty.Rect, p pixel.Pixel) error {
	return outline(r, cellPlot(s, p))
}

func outline(r dirty.Rect, plot plotFunc) error {
	if r.Empty() {
		return nil
	}
	x2, y2 := r.Right()-1, r.Bottom()-1
	for _, seg := range [][4]int{
		{r.X, r.Y, x2, r.Y},
		{r.X, y2, x2, y2},
		{r.X, r.Y, r.X, y2},
		{x2, r.Y, x2, y2},
	} {
		if err := line(seg[0], seg[1], seg[2], seg[3], plot); err != nil {
			return err
		}
	}
	return nil
}

// FillRect writes p into every cell of r
func FillRect(s Shape, r dirty.Rect, p pixel.Pixel) error {
	w, h := s.Size()
	r = r.Clip(w, h)
	step := max(p.Width(), 1)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x+step <= r.Right(); x += step {
			if err := s.Set(x, y, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawEllipse draws the ellipse inscribed in r. Without fill only the cells
// on its rim are set: those inside with a cardinal neighbor outside
func DrawEllipse(s Shape, r dirty.Rect, p pixel.Pixel, fill bool) error {
	return ellipse(r, fill, cellPlot(s, p))
}

func ellipse(r dirty.Rect, fill bool, plot plotFunc) error {
	if r.Empty() {
		return nil
	}
	cx := float64(r.X) + float64(r.W-1)/2
	cy := float64(r.Y) + float64(r.H-1)/2
	rx := max(float64(r.W)/2, 0.5)
	ry := max(float64(r.H)/2, 0.5)
	inside := func(x, y int) bool {
		nx := (float64(x) - cx) / rx
		ny := (float64(y) - cy) / ry
		return nx*nx+ny*ny <= 1
	}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if !inside(x, y) {
				continue
			}
			rim := !inside(x-1, y) || !inside(x+1, y) || !inside(x, y-1) || !inside(x, y+1)
			if !fill && !rim {
				continue
			}
			if err := plot(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawBezier draws the cubic curve with control points c, stepping finely
// enough that consecutive samples land on touching cells
func DrawBezier(s Shape, c [4]Point, p pixel.Pixel) error {
	length := dist(c[0], c[1]) + dist(c[1], c[2]) + dist(c[2], c[3])
	if length == 0 {
		return setClipped(s, c[0].X, c[0].Y, p)
	}
	step := 1 / (2 * length)
	last := Point{X: math.MinInt, Y: math.MinInt}
	for t := 0.0; ; t += step {
		t = min(t, 1)
		u := 1 - t
		a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		pt := Point{
			X: int(math.Round(a*float64(c[0].X) + b*float64(c[1].X) + cc*float64(c[2].X) + d*float64(c[3].X))),
			Y: int(math.Round(a*float64(c[0].Y) + b*float64(c[1].Y) + cc*float64(c[2].Y) + d*float64(c[3].Y))),
		}
		if pt != last {
			if err := setClipped(s, pt.X, pt.Y, p); err != nil {
				return err
			}
			last = pt
		}
		if t == 1 {
			return nil
		}
	}
}

// Blit copies the raw cells of src inside roi onto dst with roi's corner at
// (x, y). An empty roi copies all of src. The copy is clipped to dst; a wide
// glyph cut by either edge lands as a blank cell
func Blit(dst Shape, x, y int, src Shape, roi dirty.Rect) error {
	sb := Bounds(src)
	if roi.Empty() {
		roi = sb
	}
	roi = roi.Intersect(sb)
	if roi.Empty() {
		return nil
	}
	if Owner(dst) == Owner(src) {
		src = Promote(src)
	}

	dw, dh := dst.Size()
	for sy := roi.Y; sy < roi.Bottom(); sy++ {
		ty := y + sy - roi.Y
		if ty < 0 || ty >= dh {
			continue
		}
		for sx := roi.X; sx < roi.Right(); sx++ {
			tx := x + sx - roi.X
			if tx < 0 || tx >= dw {
				continue
			}
			p := Raw(src, sx, sy)
			if p.IsContinuation() {
				if sx > roi.X && tx > 0 {
					// written with its glyph
					continue
				}
				p.Char = pixel.Empty
			}
			if p.Width() == 2 && (sx+1 >= roi.Right() || tx+1 >= dw) {
				p.Char = pixel.Empty
			}
			if err := dst.Set(tx, ty, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Owner returns the shape holding the cells s reads and writes: the parent of
// a view, s itself otherwise
func Owner(s Shape) Shape {
	if v, ok := s.(*View); ok {
		return v.parent
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func dist(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
