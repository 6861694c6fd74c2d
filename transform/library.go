package transform

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/cellforge/pixel"
)

// Alpha promotes blank chars, default colors and empty effects to TRANSPARENT
func Alpha(p pixel.Pixel) pixel.Pixel {
	if p.Char == pixel.Empty {
		p.Char = pixel.TransparentChar
	}
	if p.Fg.IsDefault() {
		p.Fg = pixel.Transparent
	}
	if p.Bg.IsDefault() {
		p.Bg = pixel.Transparent
	}
	if p.Effects == pixel.EffectNone {
		p.Effects = pixel.EffectsTransparent
	}
	return p
}

// AddAlpha applies Alpha to every cell read through it
var AddAlpha = MustNew(Slots{
	Pixel: Func(func(a Args[pixel.Pixel]) pixel.Pixel {
		return Alpha(a.Value)
	}, "value"),
})

// Channel selects which color a color transformer targets
type Channel uint8

const (
	ChannelForeground Channel = iota
	ChannelBackground
)

// Direction orients a gradient across the source
type Direction uint8

const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

// Stop is a gradient color at a relative position in [0, 1]
type Stop struct {
	Pos   float64
	Color pixel.Color
}

// Gradient interpolates between stops across the source shape. Cells whose
// target color is a sentinel are left alone
func Gradient(stops []Stop, dir Direction, ch Channel) *Transformer {
	sorted := append([]Stop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })

	fn := func(a Args[pixel.Color]) pixel.Color {
		if a.Value.IsSentinel() || len(sorted) == 0 {
			return a.Value
		}
		w, h := a.Source.Size()
		var rel float64
		switch dir {
		case LeftToRight:
			rel = fraction(a.X, w)
		case RightToLeft:
			rel = 1 - fraction(a.X, w)
		case TopToBottom:
			rel = fraction(a.Y, h)
		case BottomToTop:
			rel = 1 - fraction(a.Y, h)
		}
		return colorAt(sorted, rel)
	}
	slot := Func(fn, "value", "source", "pos")
	if ch == ChannelBackground {
		return MustNew(Slots{Background: slot})
	}
	return MustNew(Slots{Foreground: slot})
}

func fraction(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func colorAt(stops []Stop, rel float64) pixel.Color {
	if rel <= stops[0].Pos {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if rel <= hi.Pos {
			span := hi.Pos - lo.Pos
			if span <= 0 {
				return hi.Color
			}
			t := (rel - lo.Pos) / span
			return pixel.FromColorful(lo.Color.Colorful().BlendRgb(hi.Color.Colorful(), t))
		}
	}
	return stops[len(stops)-1].Color
}

// Threshold keeps a cell's char when its foreground luminance reaches
// threshold (or stays below it, with invert) and blanks it otherwise
func Threshold(threshold float64, invert bool) *Transformer {
	return MustNew(Slots{
		Char: Func(func(a Args[string]) string {
			if (a.Pixel.Fg.Luminance() >= threshold) != invert {
				return a.Value
			}
			return pixel.Empty
		}, "value", "pixel"),
	})
}

// Tint blends the foreground toward c by amount in [0, 1]
func Tint(c pixel.Color, amount float64) *Transformer {
	amount = min(max(amount, 0), 1)
	return MustNew(Slots{
		Foreground: Func(func(a Args[pixel.Color]) pixel.Color {
			if a.Value.IsSentinel() {
				return a.Value
			}
			return pixel.FromColorful(a.Value.Colorful().BlendLab(c.Colorful(), amount))
		}, "value"),
	})
}

// Flash blanks chars on alternating runs of period ticks
func Flash(period uint64) *Transformer {
	period = max(period, 1)
	return MustNew(Slots{
		Char: Func(func(a Args[string]) string {
			if (a.Tick/period)%2 == 1 {
				return pixel.Empty
			}
			return a.Value
		}, "value", "tick"),
	})
}

// Cycle assigns colors to successive processed cells in turn, per pass
func Cycle(colors ...pixel.Color) *Transformer {
	return MustNew(Slots{
		Foreground: Func(func(a Args[pixel.Color]) pixel.Color {
			if len(colors) == 0 || a.Value.IsSentinel() {
				return a.Value
			}
			return colors[a.Self.Seq()%len(colors)]
		}, "value", "self"),
	})
}

// Rainbow spreads n evenly spaced hues, for use with Cycle
func Rainbow(n int) []pixel.Color {
	out := make([]pixel.Color, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pixel.FromColorful(colorful.Hsv(360*float64(i)/float64(n), 0.8, 1)))
	}
	return out
}

// Dilate grows occupied areas by one cell in the four cardinal directions
func Dilate() *Transformer {
	return NewKernel(map[string]string{
		"         ":   pixel.Empty,
		KernelDefault: pixel.FullBlock,
	}, true, "")
}

// BoxLight redraws occupied cells as light box-drawing lines joining their
// cardinal neighbors
func BoxLight() *Transformer {
	return NewKernel(boxLightTable(), true, "")
}

var boxLightGlyphs = map[[4]bool]string{
	// up, down, left, right
	{false, false, false, false}: "▪",
	{true, false, false, false}:  "╵",
	{false, true, false, false}:  "╷",
	{false, false, true, false}:  "╴",
	{false, false, false, true}:  "╶",
	{true, true, false, false}:   "│",
	{false, false, true, true}:   "─",
	{false, true, false, true}:   "┌",
	{false, true, true, false}:   "┐",
	{true, false, false, true}:   "└",
	{true, false, true, false}:   "┘",
	{true, true, false, true}:    "├",
	{true, true, true, false}:    "┤",
	{false, true, true, true}:    "┬",
	{true, false, true, true}:    "┴",
	{true, true, true, true}:     "┼",
}

func boxLightTable() map[string]string {
	table := map[string]string{KernelDefault: pixel.Empty}
	for dirs, glyph := range boxLightGlyphs {
		key := []byte("    #    ")
		if dirs[0] {
			key[1] = '#'
		}
		if dirs[1] {
			key[7] = '#'
		}
		if dirs[2] {
			key[3] = '#'
		}
		if dirs[3] {
			key[5] = '#'
		}
		table[string(key)] = glyph
	}
	return table
}
