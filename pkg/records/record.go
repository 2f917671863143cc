// Package records turns segmented articles into per-article files and the
// metadata.json manifest that indexes them.
package records

import (
	"regexp"
	"strings"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/extract"
)

const (
	// NoNumber names the file of an article whose header carries no number.
	// Several such articles in one code overwrite each other.
	NoNumber = "NoNumber"

	// ManifestFile is the name of the manifest in every code folder.
	ManifestFile = "metadata.json"

	recordExt = ".txt"
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// ArticleRecord is one article ready to be written to disk.
type ArticleRecord struct {
	Number        string         `json:"number"`
	Header        string         `json:"header"`
	Title         string         `json:"title,omitempty"`
	Body          string         `json:"body"`
	ChapterNumber *int           `json:"chapter_number,omitempty"`
	CodeType      codes.Identity `json:"code_type"`
}

// NewArticleRecord wraps a segmented article for the given code.
func NewArticleRecord(article *extract.Article, code codes.Identity) *ArticleRecord {
	return &ArticleRecord{
		Number:        article.Number,
		Header:        article.Header,
		Title:         article.Title,
		Body:          article.Body,
		ChapterNumber: article.ChapterNumber,
		CodeType:      code,
	}
}

// SanitizeFilename strips characters that are not allowed in file names.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "")
}

// FileName returns the record's file name, e.g. "130(1).txt".
func (r *ArticleRecord) FileName() string {
	name := SanitizeFilename(r.Number)
	if strings.TrimSpace(name) == "" {
		name = NoNumber
	}
	return name + recordExt
}

// HeadingLine is the first line of the record file: the header, followed by
// the title when there is one.
func (r *ArticleRecord) HeadingLine() string {
	if r.Title == "" {
		return r.Header
	}
	return r.Header + ". " + r.Title
}

// Render returns the file content: heading line, blank line, body.
func (r *ArticleRecord) Render() []byte {
	return []byte(r.HeadingLine() + "\n\n" + r.Body + "\n")
}
