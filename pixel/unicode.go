package pixel

import (
	"strings"

	"golang.org/x/text/width"
)

// runeMapper translates one rune, returning ok=false to keep it unchanged
type runeMapper func(r rune) (rune, bool)

var unicodeMappers = map[Effects]runeMapper{
	EffectEncircled:       mapEncircled,
	EffectSquared:         offsetLetters(0x1F130, 0x1F130),
	EffectNegativeSquared: offsetLetters(0x1F170, 0x1F170),
	EffectNegativeCircled: mapNegativeCircled,
	EffectParenthesized:   mapParenthesized,
	EffectMathBold:        offsetAlnum(0x1D5D4, 0x1D5EE, 0x1D7EC),
	EffectMathBoldItalic:  offsetAlnum(0x1D63C, 0x1D656, 0),
	EffectSuperBold:       offsetLetters(0x1F1E6, 0x1F1E6),
	EffectSuperScript:     tableMapper(superScript),
	EffectUpsideDown:      tableMapper(upsideDown),
	EffectDoubleStruck:    mapDoubleStruck,
}

// ApplyUnicodeEffects translates char through every character-translation
// effect set in eff, in ascending flag order
func ApplyUnicodeEffects(char string, eff Effects) string {
	u := eff.Unicode()
	if u == EffectNone || char == TransparentChar || char == Continuation {
		return char
	}
	u.Each(func(f Effects) {
		if f == EffectFullwidth {
			char = width.Widen.String(char)
			return
		}
		if m, ok := unicodeMappers[f]; ok {
			char = mapRunes(char, m)
		}
	})
	return char
}

func mapRunes(s string, m runeMapper) string {
	var b strings.Builder
	b.Grow(len(s) * 4)
	for _, r := range s {
		if t, ok := m(r); ok {
			b.WriteRune(t)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// offsetLetters maps both letter cases onto one contiguous block
func offsetLetters(upper, lower rune) runeMapper {
	return func(r rune) (rune, bool) {
		switch {
		case r >= 'A' && r <= 'Z':
			return upper + r - 'A', true
		case r >= 'a' && r <= 'z':
			return lower + r - 'a', true
		}
		return r, false
	}
}

// offsetAlnum maps letters and, when digit is non-zero, digits
func offsetAlnum(upper, lower, digit rune) runeMapper {
	letters := offsetLetters(upper, lower)
	return func(r rune) (rune, bool) {
		if digit != 0 && r >= '0' && r <= '9' {
			return digit + r - '0', true
		}
		return letters(r)
	}
}

func mapEncircled(r rune) (rune, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return 0x24B6 + r - 'A', true
	case r >= 'a' && r <= 'z':
		return 0x24D0 + r - 'a', true
	case r == '0':
		return 0x24EA, true
	case r >= '1' && r <= '9':
		return 0x2460 + r - '1', true
	}
	return r, false
}

func mapNegativeCircled(r rune) (rune, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return 0x1F150 + r - 'A', true
	case r >= 'a' && r <= 'z':
		return 0x1F150 + r - 'a', true
	case r == '0':
		return 0x24FF, true
	case r >= '1' && r <= '9':
		return 0x2776 + r - '1', true
	}
	return r, false
}

func mapParenthesized(r rune) (rune, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return 0x249C + r - 'a', true
	case r >= 'A' && r <= 'Z':
		return 0x249C + r - 'A', true
	case r >= '1' && r <= '9':
		return 0x2474 + r - '1', true
	}
	return r, false
}

// Double-struck capitals that predate the mathematical alphanumerics block
var doubleStruckHoles = map[rune]rune{
	'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ',
}

func mapDoubleStruck(r rune) (rune, bool) {
	if t, ok := doubleStruckHoles[r]; ok {
		return t, true
	}
	return offsetAlnum(0x1D538, 0x1D552, 0x1D7D8)(r)
}

func tableMapper(table map[rune]rune) runeMapper {
	return func(r rune) (rune, bool) {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		t, ok := table[r]
		return t, ok
	}
}

var superScript = map[rune]rune{
	'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ', 'f': 'ᶠ', 'g': 'ᵍ',
	'h': 'ʰ', 'i': 'ᴵ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ', 'm': 'ᵐ', 'n': 'ⁿ',
	'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ', 'u': 'ᵘ', 'v': 'ᵛ',
	'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ',
}

var upsideDown = map[rune]rune{
	'a': 'ɐ', 'b': 'q', 'c': 'ɔ', 'd': 'p', 'e': 'ǝ', 'f': 'ɟ', 'g': 'ƃ',
	'h': 'ɥ', 'i': 'ᴉ', 'j': 'ɾ', 'k': 'ʞ', 'm': 'ɯ', 'n': 'u', 'p': 'd',
	'q': 'b', 'r': 'ɹ', 't': 'ʇ', 'u': 'n', 'v': 'ʌ', 'w': 'ʍ', 'y': 'ʎ',
	'!': '¡', '?': '¿',
}
