package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ManifestEntry indexes one record file.
type ManifestEntry struct {
	LawType       string `json:"law_type"`
	ArticleNumber string `json:"article_number"`
	// ArticleTitleNumber is the number of the enclosing chapter, null for
	// articles of an unnumbered or unified chapter.
	ArticleTitleNumber *int `json:"article_title_number"`
	// FilePath is relative to the directory holding the manifest.
	FilePath string `json:"file_path"`
}

// Manifest lists one entry per record, in document order.
type Manifest []ManifestEntry

// NewManifest builds the manifest for records.
func NewManifest(recs []*ArticleRecord) Manifest {
	manifest := make(Manifest, 0, len(recs))
	for _, rec := range recs {
		manifest = append(manifest, ManifestEntry{
			LawType:            string(rec.CodeType),
			ArticleNumber:      rec.Number,
			ArticleTitleNumber: rec.ChapterNumber,
			FilePath:           rec.FileName(),
		})
	}
	return manifest
}

// Encode renders the manifest as indented JSON with non-ASCII text kept
// verbatim. The output depends only on the entries.
func (m Manifest) Encode() ([]byte, error) {
	if m == nil {
		m = Manifest{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadManifest reads the manifest of a code folder.
func LoadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if manifest == nil {
		manifest = Manifest{}
	}
	return manifest, nil
}

// Verification compares a manifest with the record files next to it.
type Verification struct {
	Dir     string `json:"dir"`
	Entries int    `json:"entries"`
	Files   int    `json:"files"`
	// Missing lists manifest paths with no file on disk.
	Missing []string `json:"missing,omitempty"`
	// Unlisted lists record files the manifest does not mention.
	Unlisted []string `json:"unlisted,omitempty"`
	// Duplicates lists paths that several entries share. Their files hold
	// only the last article written.
	Duplicates []string `json:"duplicates,omitempty"`
}

// OK reports whether every entry has a file and every file an entry.
func (v *Verification) OK() bool {
	return len(v.Missing) == 0 && len(v.Unlisted) == 0
}

// Verify checks a code folder written by Persist.
func Verify(dir string) (*Verification, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	files, err := recordFiles(dir)
	if err != nil {
		return nil, err
	}

	result := &Verification{
		Dir:     dir,
		Entries: len(manifest),
		Files:   len(files),
	}

	onDisk := make(map[string]bool, len(files))
	for _, name := range files {
		onDisk[name] = true
	}

	listed := make(map[string]int, len(manifest))
	for _, entry := range manifest {
		listed[entry.FilePath]++
		if listed[entry.FilePath] == 2 {
			result.Duplicates = append(result.Duplicates, entry.FilePath)
		}
		if listed[entry.FilePath] == 1 && !onDisk[entry.FilePath] {
			result.Missing = append(result.Missing, entry.FilePath)
		}
	}

	for _, name := range files {
		if listed[name] == 0 {
			result.Unlisted = append(result.Unlisted, name)
		}
	}

	return result, nil
}

// recordFiles returns the sorted names of the .txt files in dir.
func recordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
