package extract

import (
	"regexp"
	"strings"
)

// subPartChars are the characters that may follow the digit run of an
// article number to mark an inserted sub-article: "26¹", "26.1", "26-1".
const subPartChars = `.0-9¹²³⁰⁴⁵⁶⁷⁸⁹-`

// Article is a segmented article.
type Article struct {
	// Number is the canonical number, e.g. "130(1)". Empty when the header
	// has no digits after the label.
	Number string `json:"number"`
	Header string `json:"header"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body"`

	ChapterNumber *int   `json:"chapter_number,omitempty"`
	ChapterTitle  string `json:"chapter_title,omitempty"`
}

// HasNumber reports whether a number was detected in the article header.
func (a *Article) HasNumber() bool {
	return a.Number != ""
}

// rawMatch is one article span before number normalization.
type rawMatch struct {
	headerLine    string
	numericPrefix string
	subPart       string
	title         string
	body          string
}

// ArticleSegmenter splits chapter text into articles at label lines such as
// "Статья 26¹. Title".
type ArticleSegmenter struct {
	label        string
	abbreviation string
	maxArticle   int

	startPattern  *regexp.Regexp
	headerPattern *regexp.Regexp
}

// NewArticleSegmenter creates a segmenter for the given label token. The
// abbreviation is appended to every generated header and maxArticle drives
// NormalizeNumber.
func NewArticleSegmenter(label, abbreviation string, maxArticle int) *ArticleSegmenter {
	quoted := regexp.QuoteMeta(label)
	return &ArticleSegmenter{
		label:         label,
		abbreviation:  strings.TrimSpace(abbreviation),
		maxArticle:    maxArticle,
		startPattern:  regexp.MustCompile(`(?im)^[ \t]*` + quoted + `(?:[ \t]|$)`),
		headerPattern: regexp.MustCompile(`(?i)^` + quoted + `\s+(\d+)([` + subPartChars + `]*)\.?\s*(.*)$`),
	}
}

// Segment splits text into articles. An article runs from its label line to
// the line before the next label line, or to the end of the text. Text before
// the first label is ignored.
func (s *ArticleSegmenter) Segment(text string) []*Article {
	matches := s.split(text)
	articles := make([]*Article, 0, len(matches))
	for _, m := range matches {
		articles = append(articles, s.build(m))
	}
	return articles
}

// split finds the article spans and extracts their raw parts.
func (s *ArticleSegmenter) split(text string) []rawMatch {
	starts := s.startPattern.FindAllStringIndex(text, -1)
	matches := make([]rawMatch, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		matches = append(matches, s.parseBlock(text[loc[0]:end]))
	}
	return matches
}

// parseBlock splits one article block into header and body. The first line
// is the header; all further non-empty lines are trimmed and joined with
// single spaces.
func (s *ArticleSegmenter) parseBlock(block string) rawMatch {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	m := rawMatch{headerLine: strings.TrimSpace(lines[0])}

	var bodyParts []string
	for _, line := range lines[1:] {
		if line = strings.TrimSpace(line); line != "" {
			bodyParts = append(bodyParts, line)
		}
	}
	m.body = strings.Join(bodyParts, " ")

	if h := s.headerPattern.FindStringSubmatch(m.headerLine); h != nil {
		m.numericPrefix = h[1]
		m.subPart = h[2]
		m.title = strings.TrimSpace(h[3])
	}
	return m
}

// build turns a raw match into an Article with a canonical number and header.
func (s *ArticleSegmenter) build(m rawMatch) *Article {
	if m.numericPrefix == "" {
		return &Article{Header: m.headerLine, Body: m.body}
	}
	number := CanonicalNumber(m.numericPrefix, m.subPart, s.maxArticle)
	return &Article{
		Number: number,
		Header: strings.TrimSpace(s.label + " " + number + " " + s.abbreviation),
		Title:  m.title,
		Body:   m.body,
	}
}
