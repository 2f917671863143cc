package pipeline

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/records"
)

// CodeStatus reports whether a code has been extracted under an output root.
type CodeStatus struct {
	Identity  codes.Identity `json:"identity"`
	Name      string         `json:"name"`
	Folder    string         `json:"folder"`
	Processed bool           `json:"processed"`
	Articles  int            `json:"articles"`
	// Err is set when a manifest exists but cannot be read.
	Err error `json:"-"`
}

// Status lists every registered code with the article count of its
// manifest under root. Codes without a manifest are not processed.
func Status(root string, registry *codes.Registry) []CodeStatus {
	configs := registry.List()
	statuses := make([]CodeStatus, 0, len(configs))
	for _, cfg := range configs {
		status := CodeStatus{
			Identity: cfg.Identity,
			Name:     cfg.Name,
			Folder:   cfg.OutputFolder(),
		}

		manifest, err := records.LoadManifest(filepath.Join(root, status.Folder))
		switch {
		case err == nil:
			status.Processed = true
			status.Articles = len(manifest)
		case !errors.Is(err, os.ErrNotExist):
			status.Err = err
		}
		statuses = append(statuses, status)
	}
	return statuses
}
