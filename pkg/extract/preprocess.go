package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// zeroWidth covers zero-width characters and the byte order mark.
var zeroWidth = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200B, Hi: 0x200D, Stride: 1},
		{Lo: 0x2060, Hi: 0x2060, Stride: 1},
		{Lo: 0xFEFF, Hi: 0xFEFF, Stride: 1},
	},
}

// newCleanup composes to NFC so composed and decomposed Cyrillic compare
// equal, drops zero-width characters and turns the non-breaking and
// typographic spaces lex.uz puts between "Статья" and the number into plain
// spaces. Chained transformers carry buffers, so each call gets its own.
func newCleanup() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Remove(runes.In(zeroWidth)),
		runes.Map(func(r rune) rune {
			if r != ' ' && unicode.Is(unicode.Zs, r) {
				return ' '
			}
			return r
		}),
	)
}

// Preprocess prepares extracted text for segmentation: Unicode cleanup and
// unified line endings.
//
// When splitLabels is non-empty, a line break is inserted before every
// occurrence of each label so documents flattened onto few lines still have
// their chapter and article headers at line starts.
func Preprocess(text string, splitLabels ...string) string {
	if cleaned, _, err := transform.String(newCleanup(), text); err == nil {
		text = cleaned
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	for _, label := range splitLabels {
		if label == "" {
			continue
		}
		text = strings.ReplaceAll(text, label, "\n"+label)
	}
	return text
}
