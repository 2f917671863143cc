package records

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/coolbeans/lexarticles/pkg/logger"
)

// Persist writes the batch into dir: one file per record plus the manifest.
// Record files listed in the manifest of an earlier run are removed first,
// so the folder matches the new manifest. Files the old manifest does not
// list are left alone.
func Persist(dir string, batch *Batch) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	for _, name := range previousRecords(dir) {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale record %s: %w", path, err)
		}
	}

	for _, rec := range batch.Records {
		path := filepath.Join(dir, rec.FileName())
		if err := os.WriteFile(path, rec.Render(), 0644); err != nil {
			return fmt.Errorf("failed to write record %s: %w", path, err)
		}
	}

	manifest := batch.Manifest
	if manifest == nil {
		manifest = NewManifest(batch.Records)
	}
	return writeManifest(dir, manifest)
}

// previousRecords returns the record files named by the manifest already in
// dir. Entries pointing outside dir are ignored.
func previousRecords(dir string) []string {
	manifest, err := LoadManifest(dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Keeping existing files in %s: %v", dir, err)
		}
		return nil
	}

	var names []string
	for _, entry := range manifest {
		name := entry.FilePath
		if name == "" || name != filepath.Base(name) || filepath.Ext(name) != recordExt {
			continue
		}
		names = append(names, name)
	}
	return names
}

// writeManifest replaces the manifest atomically.
func writeManifest(dir string, manifest Manifest) error {
	data, err := manifest.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary manifest in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write manifest %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set manifest permissions: %w", err)
	}

	path := filepath.Join(dir, ManifestFile)
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace manifest %s: %w", path, err)
	}
	return nil
}
