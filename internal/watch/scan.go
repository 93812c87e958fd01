package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scan walks the watch directory once (non-recursive) and tracks every
// matching file whose modification time is newer than its processed marker.
// Files written while the daemon was down are picked up at startup without
// waiting for a fresh filesystem event; already-processed files are left
// alone thanks to the persistent markers.
func Scan(tr *Tracker, dir, ext string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("watch: scan %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if !tr.ShouldTrack(full) {
			continue
		}
		tr.Touch(full)
		logger.Debug("scan: tracking existing file", slog.String("path", full))
	}
	return nil
}
