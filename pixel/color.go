package pixel

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a value cannot be normalized into a Color
var ErrInvalidColor = errors.New("invalid color")

// Kind discriminates concrete colors from sentinels
type Kind uint8

const (
	KindTransparent Kind = iota // inherit from the layer below
	KindRGB                     // concrete color
	KindDefaultFg               // terminal's ambient foreground
	KindDefaultBg               // terminal's ambient background
)

// Color is the canonical color representation. Sentinel kinds carry zero components,
// so plain struct equality is color equality
type Color struct {
	Kind       Kind
	R, G, B, A uint8
}

var (
	Transparent = Color{}
	DefaultFg   = Color{Kind: KindDefaultFg}
	DefaultBg   = Color{Kind: KindDefaultBg}
)

// RGB returns an opaque concrete color
func RGB(r, g, b uint8) Color {
	return Color{Kind: KindRGB, R: r, G: g, B: b, A: 255}
}

// RGBA returns a concrete color with alpha
func RGBA(r, g, b, a uint8) Color {
	return Color{Kind: KindRGB, R: r, G: g, B: b, A: a}
}

// IsSentinel reports whether c is TRANSPARENT, DEFAULT_FG or DEFAULT_BG
func (c Color) IsSentinel() bool {
	return c.Kind != KindRGB
}

// IsTransparent reports whether c defers to the layer below
func (c Color) IsTransparent() bool {
	return c.Kind == KindTransparent
}

// IsDefault reports whether c is one of the terminal-default sentinels
func (c Color) IsDefault() bool {
	return c.Kind == KindDefaultFg || c.Kind == KindDefaultBg
}

// Colorful converts a concrete color for blending. Sentinels convert to black
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// FromColorful normalizes a go-colorful value, clamping out-of-gamut components
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// Hex returns the #rrggbb form, or the sentinel name
func (c Color) Hex() string {
	if c.Kind != KindRGB {
		return c.String()
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Luminance returns relative brightness in [0, 1]. Sentinels report 0
func (c Color) Luminance() float64 {
	if c.Kind != KindRGB {
		return 0
	}
	return (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255.0
}

func (c Color) String() string {
	switch c.Kind {
	case KindTransparent:
		return "TRANSPARENT"
	case KindDefaultFg:
		return "DEFAULT_FG"
	case KindDefaultBg:
		return "DEFAULT_BG"
	}
	if c.A != 255 {
		return fmt.Sprintf("Color(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("Color(%d, %d, %d)", c.R, c.G, c.B)
}

// ParseColor normalizes integer (0-255) or float (0.0-1.0) triples and quads,
// names and hex strings into a Color
func ParseColor(v any) (Color, error) {
	switch c := v.(type) {
	case Color:
		return c, nil
	case colorful.Color:
		if !c.IsValid() {
			return Color{}, fmt.Errorf("%w: %v out of gamut", ErrInvalidColor, c)
		}
		return FromColorful(c), nil
	case tcell.Color:
		return fromTcell(c)
	case [3]int:
		return fromInts(c[:])
	case [4]int:
		return fromInts(c[:])
	case []int:
		return fromInts(c)
	case [3]float64:
		return fromFloats(c[:])
	case [4]float64:
		return fromFloats(c[:])
	case []float64:
		return fromFloats(c)
	case string:
		return parseName(c)
	}
	return Color{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidColor, v)
}

// MustParse is ParseColor for package-level constants; it panics on invalid input
func MustParse(v any) Color {
	c, err := ParseColor(v)
	if err != nil {
		panic(err)
	}
	return c
}

func fromInts(v []int) (Color, error) {
	if len(v) != 3 && len(v) != 4 {
		return Color{}, fmt.Errorf("%w: need 3 or 4 components, got %d", ErrInvalidColor, len(v))
	}
	var comp [4]uint8
	comp[3] = 255
	for i, n := range v {
		if n < 0 || n > 255 {
			return Color{}, fmt.Errorf("%w: component %d out of range 0-255", ErrInvalidColor, n)
		}
		comp[i] = uint8(n)
	}
	return RGBA(comp[0], comp[1], comp[2], comp[3]), nil
}

func fromFloats(v []float64) (Color, error) {
	if len(v) != 3 && len(v) != 4 {
		return Color{}, fmt.Errorf("%w: need 3 or 4 components, got %d", ErrInvalidColor, len(v))
	}
	var comp [4]uint8
	comp[3] = 255
	for i, f := range v {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return Color{}, fmt.Errorf("%w: component %g out of range 0.0-1.0", ErrInvalidColor, f)
		}
		comp[i] = uint8(math.Round(f * 255))
	}
	return RGBA(comp[0], comp[1], comp[2], comp[3]), nil
}

func fromTcell(c tcell.Color) (Color, error) {
	switch c {
	case tcell.ColorDefault:
		return Transparent, nil
	case tcell.ColorReset:
		return DefaultFg, nil
	}
	r, g, b := c.RGB()
	if r < 0 {
		return Color{}, fmt.Errorf("%w: tcell color %v has no RGB value", ErrInvalidColor, c)
	}
	return RGB(uint8(r), uint8(g), uint8(b)), nil
}

func parseName(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "transparent":
		return Transparent, nil
	case "default_fg", "default-fg":
		return DefaultFg, nil
	case "default_bg", "default-bg":
		return DefaultBg, nil
	}
	if strings.HasPrefix(name, "#") {
		c, err := colorful.Hex(name)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
		}
		return FromColorful(c), nil
	}
	if tc, ok := tcell.ColorNames[name]; ok {
		return fromTcell(tc)
	}
	return Color{}, fmt.Errorf("%w: unknown color name %q", ErrInvalidColor, s)
}
