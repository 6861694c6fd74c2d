package dirty

// Coalesce merges possibly overlapping rectangles into a non-overlapping set
// covering exactly the same cells, ordered top to bottom then left to right
func Coalesce(rects []Rect) []Rect {
	var bounds Rect
	n := 0
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		bounds = bounds.Union(r)
		n++
	}
	switch n {
	case 0:
		return nil
	case 1:
		for _, r := range rects {
			if !r.Empty() {
				return []Rect{r}
			}
		}
	}

	grid := make([]bool, bounds.W*bounds.H)
	for _, r := range rects {
		if r.Empty() {
			continue
		}
		for y := r.Y; y < r.Bottom(); y++ {
			row := (y - bounds.Y) * bounds.W
			for x := r.X; x < r.Right(); x++ {
				grid[row+x-bounds.X] = true
			}
		}
	}

	merged := mergeSpans(bounds.W, bounds.H, func(x, y int) bool {
		return grid[y*bounds.W+x]
	})
	for i := range merged {
		merged[i] = merged[i].Translate(bounds.X, bounds.Y)
	}
	return merged
}

// mergeSpans turns a w x h occupancy grid into rectangles: horizontal runs per
// row, extended downward while the next row repeats the identical run
func mergeSpans(w, h int, set func(x, y int) bool) []Rect {
	var out []Rect
	var open []Rect

	for y := 0; y <= h; y++ {
		var runs []Rect
		if y < h {
			for x := 0; x < w; {
				if !set(x, y) {
					x++
					continue
				}
				start := x
				for x < w && set(x, y) {
					x++
				}
				runs = append(runs, Rect{X: start, Y: y, W: x - start, H: 1})
			}
		}

		next := open[:0:0]
		for _, run := range runs {
			extended := false
			for i := range open {
				if open[i].W > 0 && open[i].X == run.X && open[i].W == run.W {
					open[i].H++
					next = append(next, open[i])
					open[i].W = 0
					extended = true
					break
				}
			}
			if !extended {
				next = append(next, run)
			}
		}
		for _, r := range open {
			if r.W > 0 {
				out = append(out, r)
			}
		}
		open = next
	}

	sortRects(out)
	return out
}

func sortRects(rs []Rect) {
	// insertion sort; rect counts per frame are small
	for i := 1; i < len(rs); i++ {
		r := rs[i]
		j := i
		for j > 0 && (rs[j-1].Y > r.Y || (rs[j-1].Y == r.Y && rs[j-1].X > r.X)) {
			rs[j] = rs[j-1]
			j--
		}
		rs[j] = r
	}
}
