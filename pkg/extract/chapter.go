package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UnifiedChapterTitle is the title of the synthetic chapter emitted when a
// document has no chapter markers.
const UnifiedChapterTitle = "Unified chapter"

// ChapterNumbering selects how chapter numerals are converted to integers.
type ChapterNumbering string

const (
	// NumberingArabicOnly parses Arabic numerals; Roman numerals become 0.
	NumberingArabicOnly ChapterNumbering = "arabic-only"
	// NumberingRomanOrArabic parses both; invalid Roman numerals become 0.
	NumberingRomanOrArabic ChapterNumbering = "roman-or-arabic"
)

// ParseChapterNumbering validates a numbering strategy name. An empty name
// selects NumberingRomanOrArabic.
func ParseChapterNumbering(name string) (ChapterNumbering, error) {
	switch ChapterNumbering(strings.ToLower(strings.TrimSpace(name))) {
	case "", NumberingRomanOrArabic:
		return NumberingRomanOrArabic, nil
	case NumberingArabicOnly:
		return NumberingArabicOnly, nil
	}
	return "", fmt.Errorf("unknown chapter numbering %q (want %s or %s)",
		name, NumberingArabicOnly, NumberingRomanOrArabic)
}

// Chapter is a chapter-labelled span of a document.
type Chapter struct {
	Title string `json:"title"`
	// Number is nil only for the synthetic unified chapter.
	Number *int   `json:"number,omitempty"`
	Body   string `json:"-"`
}

// ChapterSegmenter splits a document into chapters at marker lines such as
// "ГЛАВА IV. Сделки" or "CHAPTER 2 General provisions".
type ChapterSegmenter struct {
	pattern   *regexp.Regexp
	numbering ChapterNumbering
}

// superscriptChars may follow a chapter numeral for inserted chapters such
// as "ГЛАВА XVII¹"; the chapter keeps the number of its base numeral.
const superscriptChars = "⁰¹²³⁴⁵⁶⁷⁸⁹"

// NewChapterSegmenter creates a segmenter for the given marker token. The
// marker is matched case-insensitively at the start of a line.
func NewChapterSegmenter(marker string, numbering ChapterNumbering) *ChapterSegmenter {
	if numbering == "" {
		numbering = NumberingRomanOrArabic
	}
	return &ChapterSegmenter{
		pattern: regexp.MustCompile(`(?im)^[ \t]*(` + regexp.QuoteMeta(marker) +
			`[ \t]+([IVXLCDM]+|\d+)[`+superscriptChars+`]*(?:[^\pL\pN\n][^\n]*)?)[ \t]*$`),
		numbering: numbering,
	}
}

// Segment splits text into chapters. Each chapter body runs from the end of
// its marker line to the next marker line or the end of the text. Text before
// the first marker belongs to no chapter. Without any marker the whole text
// is returned as one chapter titled UnifiedChapterTitle.
func (s *ChapterSegmenter) Segment(text string) []Chapter {
	matches := s.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Chapter{{Title: UnifiedChapterTitle, Body: text}}
	}

	chapters := make([]Chapter, 0, len(matches))
	for i, m := range matches {
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		number := s.parseNumeral(text[m[4]:m[5]])
		chapters = append(chapters, Chapter{
			Title:  strings.TrimSpace(text[m[2]:m[3]]),
			Number: &number,
			Body:   text[m[1]:bodyEnd],
		})
	}
	return chapters
}

// parseNumeral converts a chapter numeral. Chapter numbers are advisory, so
// anything unparseable becomes 0 rather than an error.
func (s *ChapterSegmenter) parseNumeral(numeral string) int {
	if n, err := strconv.Atoi(numeral); err == nil {
		return n
	}
	if s.numbering == NumberingRomanOrArabic {
		return romanToArabic(numeral)
	}
	return 0
}

// romanNumerals lists numeral values from largest to smallest, including
// the subtractive pairs.
var romanNumerals = []struct {
	symbol string
	value  int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4}, {"I", 1},
}

// romanToArabic converts a Roman numeral in canonical form. Malformed
// numerals such as "IIII", "VX" or "IC" yield 0.
func romanToArabic(roman string) int {
	roman = strings.ToUpper(roman)
	rest := roman
	total := 0
	for _, numeral := range romanNumerals {
		for strings.HasPrefix(rest, numeral.symbol) {
			total += numeral.value
			rest = rest[len(numeral.symbol):]
		}
	}
	if rest != "" || total == 0 || arabicToRoman(total) != roman {
		return 0
	}
	return total
}

func arabicToRoman(n int) string {
	var b strings.Builder
	for _, numeral := range romanNumerals {
		for n >= numeral.value {
			b.WriteString(numeral.symbol)
			n -= numeral.value
		}
	}
	return b.String()
}
