package clip

import (
	"fmt"
	"os"
	"path/filepath"

	"clipper/internal/config"
)

// Writer persists clips under the configured output directory.
type Writer struct {
	dir          string
	createBackup bool
}

// NewWriter creates a writer for the given output settings.
func NewWriter(cfg config.OutputConfig) *Writer {
	return &Writer{
		dir:          cfg.Dir,
		createBackup: cfg.CreateBackup,
	}
}

// Write saves the clip document and returns the path it was written to.
// When backups are enabled an existing file is moved aside first instead
// of being overwritten in place.
func (w *Writer) Write(c *Clip) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.dir, c.Filename())

	if w.createBackup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				return "", fmt.Errorf("failed to back up existing clip: %w", err)
			}
		}
	}

	if err := os.WriteFile(path, []byte(c.Document), 0644); err != nil {
		return "", fmt.Errorf("failed to write clip: %w", err)
	}

	return path, nil
}
