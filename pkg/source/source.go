// Package source reduces downloaded legal documents to the plain text the
// segmenter works on.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies the on-disk format of a source document.
type Format string

const (
	FormatText Format = "text"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for files the loader cannot read, such as
// legacy .doc files that must be converted first.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Document is a source file reduced to newline-separated paragraphs.
type Document struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"-"`
}

// DetectFormat infers the format from the file extension. Files without an
// extension are lex.uz cache entries and are read as HTML.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".text":
		return FormatText, nil
	case ".docx":
		return FormatDOCX, nil
	case ".html", ".htm", "":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads path and reduces it to text according to its format.
func Load(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source %s: %w", path, err)
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	if doc.Title == "" {
		doc.Title = titleFromPath(path)
	}
	return doc, nil
}

// Parse reduces raw content of the given format to a Document.
func Parse(data []byte, format Format) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatText:
		doc, err = parseText(data)
	case FormatDOCX:
		doc, err = parseDOCX(data)
	case FormatHTML:
		doc, err = parseHTML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	doc.Format = format
	return doc, nil
}

func parseText(data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("text is not valid UTF-8")
	}
	return &Document{Text: strings.TrimPrefix(string(data), "\ufeff")}, nil
}

func titleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}
