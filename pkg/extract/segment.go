// Package extract segments legal-code text into chapters and articles.
//
// The engine is purely lexical. Chapters start at marker lines ("ГЛАВА IV"),
// articles at label lines ("Статья 26¹."). Article numbers are canonicalized
// against the code's highest article number so inserted sub-articles come
// out as "130(1)".
package extract

import (
	"fmt"
	"strings"
)

// Default labels for lex.uz Russian-language codes.
const (
	DefaultChapterMarker = "ГЛАВА"
	DefaultArticleLabel  = "Статья"
)

// WarningKind classifies a non-fatal segmentation problem.
type WarningKind string

const (
	// WarningAmbiguousNumber marks an article label without a number.
	WarningAmbiguousNumber WarningKind = "ambiguous_article_number"
)

// Warning describes an article that could not be segmented cleanly. The
// article is still captured for human review unless Options.Strict is set.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Text    string      `json:"text"`
	Chapter string      `json:"chapter,omitempty"`
}

func (w Warning) String() string {
	if w.Chapter != "" {
		return fmt.Sprintf("%s: %q (in %q)", w.Kind, w.Text, w.Chapter)
	}
	return fmt.Sprintf("%s: %q", w.Kind, w.Text)
}

// Options configures a Segmenter for one legal code.
type Options struct {
	ChapterMarker string
	ArticleLabel  string
	// Abbreviation is appended to article headers, e.g. "ГК РУз".
	Abbreviation string
	// MaxArticle is the highest canonical article number of the code. Zero
	// disables overflow normalization.
	MaxArticle int
	Numbering  ChapterNumbering
	// SplitInlineLabels inserts line breaks before every marker and label
	// occurrence before segmenting.
	SplitInlineLabels bool
	// Strict drops articles without a number instead of emitting them under
	// the NoNumber sentinel. A warning is recorded either way.
	Strict bool
}

// DefaultOptions returns options for lex.uz Russian texts with overflow
// normalization disabled.
func DefaultOptions() Options {
	return Options{
		ChapterMarker: DefaultChapterMarker,
		ArticleLabel:  DefaultArticleLabel,
		Numbering:     NumberingRomanOrArabic,
	}
}

// Validate checks that the options can drive a segmenter.
func (o Options) Validate() error {
	if strings.TrimSpace(o.ChapterMarker) == "" {
		return fmt.Errorf("chapter marker is required")
	}
	if strings.TrimSpace(o.ArticleLabel) == "" {
		return fmt.Errorf("article label is required")
	}
	if o.MaxArticle < 0 {
		return fmt.Errorf("max article must not be negative, got %d", o.MaxArticle)
	}
	if _, err := ParseChapterNumbering(string(o.Numbering)); err != nil {
		return err
	}
	return nil
}

// Segmentation is the output of one Segment call.
type Segmentation struct {
	Chapters []Chapter  `json:"chapters"`
	Articles []*Article `json:"articles"`
	Warnings []Warning  `json:"warnings,omitempty"`
}

// Statistics summarizes a segmentation.
type Statistics struct {
	Chapters   int `json:"chapters"`
	Articles   int `json:"articles"`
	Unnumbered int `json:"unnumbered"`
	Warnings   int `json:"warnings"`
}

// Statistics returns counts for reporting.
func (s *Segmentation) Statistics() Statistics {
	stats := Statistics{
		Chapters: len(s.Chapters),
		Articles: len(s.Articles),
		Warnings: len(s.Warnings),
	}
	for _, a := range s.Articles {
		if !a.HasNumber() {
			stats.Unnumbered++
		}
	}
	return stats
}

// Segmenter runs preprocessing, chapter segmentation and article
// segmentation with one set of Options. It holds no mutable state and is
// safe for concurrent use.
type Segmenter struct {
	opts     Options
	chapters *ChapterSegmenter
	articles *ArticleSegmenter
}

// NewSegmenter creates a Segmenter after validating opts.
func NewSegmenter(opts Options) (*Segmenter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid segmenter options: %w", err)
	}
	numbering, _ := ParseChapterNumbering(string(opts.Numbering))
	opts.Numbering = numbering

	return &Segmenter{
		opts:     opts,
		chapters: NewChapterSegmenter(opts.ChapterMarker, opts.Numbering),
		articles: NewArticleSegmenter(opts.ArticleLabel, opts.Abbreviation, opts.MaxArticle),
	}, nil
}

// Options returns the options the segmenter was built with.
func (s *Segmenter) Options() Options {
	return s.opts
}

// Segment splits text into chapters and articles. Text without labels is
// not an error: it yields the unified chapter and no articles.
func (s *Segmenter) Segment(text string) *Segmentation {
	var splitLabels []string
	if s.opts.SplitInlineLabels {
		splitLabels = []string{s.opts.ChapterMarker, s.opts.ArticleLabel}
	}
	text = Preprocess(text, splitLabels...)

	result := &Segmentation{
		Chapters: s.chapters.Segment(text),
		Articles: make([]*Article, 0),
	}

	for _, chapter := range result.Chapters {
		for _, article := range s.articles.Segment(chapter.Body) {
			if !article.HasNumber() {
				result.Warnings = append(result.Warnings, Warning{
					Kind:    WarningAmbiguousNumber,
					Text:    article.Header,
					Chapter: chapter.Title,
				})
				if s.opts.Strict {
					continue
				}
			}
			article.ChapterNumber = chapter.Number
			article.ChapterTitle = chapter.Title
			result.Articles = append(result.Articles, article)
		}
	}

	return result
}
