// Package codes provides the registry of legal codes handled by the
// extractor: identity, header abbreviation, highest article number and the
// file-name keys used to recognize a code's source documents.
package codes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/lexarticles/pkg/extract"
)

// Identity names a legal code.
type Identity string

const (
	Civil                   Identity = "civil"
	Criminal                Identity = "criminal"
	Family                  Identity = "family"
	Labor                   Identity = "labor"
	Administrative          Identity = "administrative"
	Budget                  Identity = "budget"
	CivilProcedure          Identity = "civil_procedure"
	Constitution            Identity = "constitution"
	CriminalExecutive       Identity = "criminal_executive"
	Customs                 Identity = "customs"
	EconomicProcedure       Identity = "economic_procedure"
	Housing                 Identity = "housing"
	Land                    Identity = "land"
	Tax                     Identity = "tax"
	AdministrativeProcedure Identity = "administrative_procedure"
	Unknown                 Identity = "unknown"
)

// ErrUnknownCode is returned when a source cannot be attributed to a code.
var ErrUnknownCode = errors.New("unknown legal code")

// UnknownCodeError reports the source that could not be attributed.
type UnknownCodeError struct {
	Source string
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("cannot determine legal code for %q", e.Source)
}

// Unwrap lets errors.Is match ErrUnknownCode.
func (e *UnknownCodeError) Unwrap() error {
	return ErrUnknownCode
}

// CodeConfig describes how to segment and store one legal code.
type CodeConfig struct {
	Identity     Identity `yaml:"identity" json:"identity"`
	Name         string   `yaml:"name" json:"name"`
	Folder       string   `yaml:"folder,omitempty" json:"folder,omitempty"`
	Abbreviation string   `yaml:"abbreviation" json:"abbreviation"`

	// MaxArticle is the highest article number of the code. Zero disables
	// overflow normalization of article numbers.
	MaxArticle int `yaml:"max_article" json:"max_article"`

	// DetectionKeys are lowercase substrings matched against source file
	// names. The longest matching key across the registry wins.
	DetectionKeys []string `yaml:"detection_keys" json:"detection_keys"`

	// DocumentIDs are lex.uz document ids; cached pages are named by id.
	DocumentIDs []string `yaml:"document_ids,omitempty" json:"document_ids,omitempty"`
	URL         string   `yaml:"url,omitempty" json:"url,omitempty"`

	ChapterMarker     string                   `yaml:"chapter_marker,omitempty" json:"chapter_marker,omitempty"`
	ArticleLabel      string                   `yaml:"article_label,omitempty" json:"article_label,omitempty"`
	ChapterNumbering  extract.ChapterNumbering `yaml:"chapter_numbering,omitempty" json:"chapter_numbering,omitempty"`
	SplitInlineLabels bool                     `yaml:"split_inline_labels,omitempty" json:"split_inline_labels,omitempty"`
}

// Validate checks the configuration for required fields.
func (c *CodeConfig) Validate() error {
	if c.Identity == "" {
		return fmt.Errorf("identity is required")
	}
	if c.Identity == Unknown {
		return fmt.Errorf("identity %q cannot be registered", Unknown)
	}
	if strings.TrimSpace(c.Abbreviation) == "" {
		return fmt.Errorf("code %q: abbreviation is required", c.Identity)
	}
	if c.MaxArticle < 0 {
		return fmt.Errorf("code %q: max_article must not be negative", c.Identity)
	}
	if len(c.DetectionKeys) == 0 && len(c.DocumentIDs) == 0 {
		return fmt.Errorf("code %q: at least one detection key or document id is required", c.Identity)
	}
	if strings.ContainsAny(c.OutputFolder(), `\/:*?"<>|`) {
		return fmt.Errorf("code %q: folder %q contains path characters", c.Identity, c.OutputFolder())
	}
	if _, err := extract.ParseChapterNumbering(string(c.ChapterNumbering)); err != nil {
		return fmt.Errorf("code %q: %w", c.Identity, err)
	}
	return nil
}

// OutputFolder returns the folder articles of this code are written to.
func (c *CodeConfig) OutputFolder() string {
	if c.Folder != "" {
		return c.Folder
	}
	return string(c.Identity)
}

// SegmentOptions builds segmenter options for this code. Labels left empty
// fall back to the lex.uz defaults.
func (c *CodeConfig) SegmentOptions() extract.Options {
	opts := extract.DefaultOptions()
	if c.ChapterMarker != "" {
		opts.ChapterMarker = c.ChapterMarker
	}
	if c.ArticleLabel != "" {
		opts.ArticleLabel = c.ArticleLabel
	}
	if c.ChapterNumbering != "" {
		opts.Numbering = c.ChapterNumbering
	}
	opts.Abbreviation = c.Abbreviation
	opts.MaxArticle = c.MaxArticle
	opts.SplitInlineLabels = c.SplitInlineLabels
	return opts
}

// clone returns a deep copy so callers cannot mutate registry state.
func (c *CodeConfig) clone() *CodeConfig {
	cp := *c
	cp.DetectionKeys = append([]string(nil), c.DetectionKeys...)
	cp.DocumentIDs = append([]string(nil), c.DocumentIDs...)
	return &cp
}
