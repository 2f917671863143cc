package records

import (
	"fmt"
	"path/filepath"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/extract"
)

// BuildOptions adjusts one build. Zero values keep the code's configuration.
type BuildOptions struct {
	// Code forces the code identity instead of detecting it from the
	// source name.
	Code codes.Identity
	// MaxArticle overrides the code's highest article number when set.
	MaxArticle *int
	Numbering  extract.ChapterNumbering
	Strict     bool
}

// Batch is the set of records built from one source document.
type Batch struct {
	Source   string             `json:"source"`
	Identity codes.Identity     `json:"identity"`
	Config   *codes.CodeConfig  `json:"config"`
	Records  []*ArticleRecord   `json:"records"`
	Manifest Manifest           `json:"manifest"`
	Warnings []extract.Warning  `json:"warnings,omitempty"`
	Stats    extract.Statistics `json:"stats"`
}

// OutputDir returns the folder under root that the batch is written to.
func (b *Batch) OutputDir(root string) string {
	return filepath.Join(root, b.Config.OutputFolder())
}

// Builder resolves source documents to codes and segments them.
type Builder struct {
	registry *codes.Registry
}

// NewBuilder creates a Builder backed by registry.
func NewBuilder(registry *codes.Registry) *Builder {
	return &Builder{registry: registry}
}

// Resolve returns the configuration for a source document. An explicit code
// wins over detection from the file name.
func (b *Builder) Resolve(sourcePath string, code codes.Identity) (*codes.CodeConfig, error) {
	if code != "" {
		cfg, ok := b.registry.Get(code)
		if !ok {
			return nil, &codes.UnknownCodeError{Source: string(code)}
		}
		return cfg, nil
	}
	return b.registry.Detect(sourcePath)
}

// Build segments text read from sourcePath into records. A source that
// cannot be attributed to a code fails with codes.ErrUnknownCode.
func (b *Builder) Build(sourcePath, text string, opts BuildOptions) (*Batch, error) {
	cfg, err := b.Resolve(sourcePath, opts.Code)
	if err != nil {
		return nil, err
	}

	segOpts := cfg.SegmentOptions()
	if opts.MaxArticle != nil {
		segOpts.MaxArticle = *opts.MaxArticle
	}
	if opts.Numbering != "" {
		segOpts.Numbering = opts.Numbering
	}
	segOpts.Strict = opts.Strict

	segmenter, err := extract.NewSegmenter(segOpts)
	if err != nil {
		return nil, fmt.Errorf("code %s: %w", cfg.Identity, err)
	}

	seg := segmenter.Segment(text)

	recs := make([]*ArticleRecord, 0, len(seg.Articles))
	for _, article := range seg.Articles {
		recs = append(recs, NewArticleRecord(article, cfg.Identity))
	}

	return &Batch{
		Source:   sourcePath,
		Identity: cfg.Identity,
		Config:   cfg,
		Records:  recs,
		Manifest: NewManifest(recs),
		Warnings: seg.Warnings,
		Stats:    seg.Statistics(),
	}, nil
}

// Merge concatenates batches of the same code in the given order, for codes
// published as several documents such as the two parts of the civil code.
func Merge(batches ...*Batch) (*Batch, error) {
	if len(batches) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}
	if len(batches) == 1 {
		return batches[0], nil
	}

	first := batches[0]
	merged := &Batch{
		Source:   first.Source,
		Identity: first.Identity,
		Config:   first.Config,
	}
	for i, batch := range batches {
		if batch.Identity != first.Identity {
			return nil, fmt.Errorf("cannot merge %s (%s) into %s (%s)",
				batch.Source, batch.Identity, first.Source, first.Identity)
		}
		if i > 0 {
			merged.Source += ", " + batch.Source
		}
		merged.Records = append(merged.Records, batch.Records...)
		merged.Warnings = append(merged.Warnings, batch.Warnings...)
		merged.Stats.Chapters += batch.Stats.Chapters
		merged.Stats.Articles += batch.Stats.Articles
		merged.Stats.Unnumbered += batch.Stats.Unnumbered
		merged.Stats.Warnings += batch.Stats.Warnings
	}
	merged.Manifest = NewManifest(merged.Records)
	return merged, nil
}
