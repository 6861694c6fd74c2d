package pixel

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Width returns the terminal cell width of a grapheme cluster, clamped to 0..2
func Width(char string) int {
	if char == "" {
		return 0
	}
	var w int
	if r, size := utf8.DecodeRuneInString(char); size == len(char) {
		if r < 0x80 {
			if r < 0x20 || r == 0x7f {
				return 0
			}
			return 1
		}
		w = runewidth.RuneWidth(r)
	} else {
		w = uniseg.StringWidth(char)
	}
	return min(max(w, 0), 2)
}

// IsWide reports whether the glyph needs a continuation cell
func IsWide(char string) bool {
	return Width(char) == 2
}

// Graphemes splits text into user-perceived characters
func Graphemes(text string) []string {
	out := make([]string, 0, len(text))
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		out = append(out, cluster)
	}
	return out
}
