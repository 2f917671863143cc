package source

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lex.uz markup: every article header is a CLAUSE_DEFAULT block with the
// "Статья N" prefix and the title in separate spans; article text follows
// in ACT_TEXT blocks, chapter and section headings in TEXT_HEADER_DEFAULT.
const (
	clauseSelector  = "div.CLAUSE_DEFAULT"
	contentSelector = "div.CLAUSE_DEFAULT, div.ACT_TEXT, div.TEXT_HEADER_DEFAULT"
	prefixSelector  = "span.clausePrfx"
	suffixSelector  = "span.clauseSuff"

	fallbackSelector = "h1, h2, h3, h4, h5, h6, p, li"
)

var superscripts = strings.NewReplacer(
	"0", "⁰", "1", "¹", "2", "²", "3", "³", "4", "⁴",
	"5", "⁵", "6", "⁶", "7", "⁷", "8", "⁸", "9", "⁹",
)

func toSuperscript(s string) string {
	return superscripts.Replace(s)
}

// parseHTML reduces a lex.uz page to text. Pages without clause markup fall
// back to the text of headings, paragraphs and list items.
func parseHTML(data []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	result := &Document{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	if doc.Find(clauseSelector).Length() > 0 {
		lines = clauseLines(doc)
	} else {
		lines = fallbackLines(doc)
	}
	result.Text = strings.Join(lines, "\n")
	return result, nil
}

// clauseLines walks lex.uz content blocks in document order.
func clauseLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		var line string
		switch {
		case s.HasClass("CLAUSE_DEFAULT"):
			line = clauseHeader(s)
		case s.HasClass("TEXT_HEADER_DEFAULT"):
			raiseSuperscripts(s)
			line = cleanText(s.Text())
		default:
			line = cleanText(s.Text())
		}
		if line != "" {
			lines = append(lines, line)
		}
	})
	return lines
}

// clauseHeader renders "Статья 26<sup>1</sup>." plus its title as
// "Статья 26¹. Title".
func clauseHeader(clause *goquery.Selection) string {
	prefix := clause.Find(prefixSelector).First()
	if prefix.Length() == 0 {
		return cleanText(clause.Text())
	}

	raiseSuperscripts(prefix)

	header := cleanText(prefix.Text())
	if title := cleanText(clause.Find(suffixSelector).First().Text()); title != "" {
		header += " " + title
	}
	return header
}

// raiseSuperscripts replaces <sup> elements under sel with superscript
// digits, so "ГЛАВА XVII<sup>1</sup>" reads "ГЛАВА XVII¹".
func raiseSuperscripts(sel *goquery.Selection) {
	sel.Find("sup").Each(func(_ int, sup *goquery.Selection) {
		sup.ReplaceWithHtml(html.EscapeString(toSuperscript(strings.TrimSpace(sup.Text()))))
	})
}

func fallbackLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find(fallbackSelector).Each(func(_ int, s *goquery.Selection) {
		if line := cleanText(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		for _, line := range strings.Split(doc.Find("body").Text(), "\n") {
			if line = cleanText(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// cleanText collapses whitespace runs (including newlines) to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
