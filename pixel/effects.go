package pixel

import (
	"fmt"
	"math/bits"
	"strings"
)

// Effects is a combinable set of text effects
type Effects uint32

const (
	EffectBold Effects = 1 << iota
	EffectItalic
	EffectUnderline
	EffectReverse
	EffectBlink
	EffectFaint
	EffectFastBlink
	EffectConceal
	EffectCrossedOut
	EffectDoubleUnderline
	EffectFramed
	EffectEncircled
	EffectOverlined
	EffectFraktur
	EffectSquared
	EffectNegativeSquared
	EffectNegativeCircled
	EffectParenthesized
	EffectFullwidth
	EffectMathBold
	EffectMathBoldItalic
	EffectSuperBold
	EffectSuperScript
	EffectUpsideDown
	EffectDoubleStruck

	EffectNone Effects = 0

	// EffectsTransparent is the TRANSPARENT sentinel for the effects channel
	EffectsTransparent Effects = 1 << 31
)

// UnicodeEffects are rendered by character translation rather than terminal attributes
const UnicodeEffects = EffectEncircled | EffectSquared | EffectNegativeSquared | EffectNegativeCircled |
	EffectParenthesized | EffectFullwidth | EffectMathBold | EffectMathBoldItalic |
	EffectSuperBold | EffectSuperScript | EffectUpsideDown | EffectDoubleStruck

// TerminalEffects are rendered by SGR attributes
const TerminalEffects = (EffectDoubleStruck<<1 - 1) &^ UnicodeEffects

var effectNames = [...]string{
	"bold", "italic", "underline", "reverse", "blink", "faint", "fast_blink",
	"conceal", "crossed_out", "double_underline", "framed", "encircled",
	"overlined", "fraktur", "squared", "negative_squared", "negative_circled",
	"parenthesized", "fullwidth", "math_bold", "math_bold_italic", "super_bold",
	"super_script", "upside_down", "double_struck",
}

// EffectOn holds the SGR parameter enabling each terminal effect
var EffectOn = map[Effects]int{
	EffectBold:            1,
	EffectItalic:          3,
	EffectUnderline:       4,
	EffectReverse:         7,
	EffectBlink:           5,
	EffectFaint:           2,
	EffectFastBlink:       6,
	EffectConceal:         8,
	EffectCrossedOut:      9,
	EffectDoubleUnderline: 21,
	EffectFramed:          51,
	EffectOverlined:       53,
	EffectFraktur:         20,
}

// EffectOff holds the SGR parameter disabling each terminal effect. Several
// effects share an off code (bold/faint both clear with 22)
var EffectOff = map[Effects]int{
	EffectBold:            22,
	EffectItalic:          23,
	EffectUnderline:       24,
	EffectReverse:         27,
	EffectBlink:           25,
	EffectFaint:           22,
	EffectFastBlink:       25,
	EffectConceal:         28,
	EffectCrossedOut:      29,
	EffectDoubleUnderline: 24,
	EffectFramed:          54,
	EffectOverlined:       55,
	EffectFraktur:         23,
}

// Has reports whether every flag of f is set
func (e Effects) Has(f Effects) bool {
	return e&f == f
}

// IsTransparent reports whether the effects channel defers to the layer below
func (e Effects) IsTransparent() bool {
	return e&EffectsTransparent != 0
}

// Terminal returns only the SGR-rendered effects
func (e Effects) Terminal() Effects {
	if e.IsTransparent() {
		return EffectNone
	}
	return e & TerminalEffects
}

// Unicode returns only the character-translation effects
func (e Effects) Unicode() Effects {
	if e.IsTransparent() {
		return EffectNone
	}
	return e & UnicodeEffects
}

// Each calls fn for every set flag in ascending bit order
func (e Effects) Each(fn func(Effects)) {
	v := uint32(e &^ EffectsTransparent)
	for v != 0 {
		bit := Effects(1) << bits.TrailingZeros32(v)
		fn(bit)
		v &^= uint32(bit)
	}
}

func (e Effects) String() string {
	if e.IsTransparent() {
		return "TRANSPARENT"
	}
	if e == EffectNone {
		return "none"
	}
	var names []string
	e.Each(func(f Effects) {
		names = append(names, effectNames[bits.TrailingZeros32(uint32(f))])
	})
	return strings.Join(names, "|")
}

// ParseEffects accepts names joined by '|', ',' or spaces
func ParseEffects(s string) (Effects, error) {
	var e Effects
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	for _, f := range fields {
		if f == "none" {
			continue
		}
		found := false
		for i, name := range effectNames {
			if name == f {
				e |= 1 << i
				found = true
				break
			}
		}
		if !found {
			return EffectNone, fmt.Errorf("unknown effect %q", f)
		}
	}
	return e, nil
}
