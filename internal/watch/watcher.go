package watch

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Converter processes one stable .dat file. A non-nil error means the file
// exits tracking without a marker update, leaving it eligible again only on
// a future genuine modification.
type Converter interface {
	Convert(path string) error
}

// EventCallback is called after a watcher-driven state change.
// kind is one of "tracked", "processed", "dropped".
type EventCallback func(kind string, path string)

// Options configures the watch loop.
type Options struct {
	// Extension selects which files are considered, e.g. ".dat".
	Extension string
	// Inactivity is the quiet period after which a tracked file is stable.
	Inactivity time.Duration
	// PollInterval is how often tracked files are checked for stability.
	PollInterval time.Duration
}

// Watch starts an fsnotify watcher on a single directory (non-recursive) and
// runs the event filter plus the periodic stability dispatcher until ctx is
// cancelled. It calls cb (if non-nil) after each state change.
//
// Filesystem watchers on some platforms fire several events for one logical
// write and may re-fire events for already-processed files; both are absorbed
// by ShouldTrack, which gates on modification time against the marker store.
func Watch(ctx context.Context, tr *Tracker, conv Converter, dir string, opts Options, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started",
		slog.String("dir", dir),
		slog.String("extension", opts.Extension),
		slog.Duration("inactivity", opts.Inactivity),
		slog.Duration("poll_interval", opts.PollInterval))

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-ticker.C:
			dispatch(tr, conv, opts.Inactivity, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(ev.Name, opts.Extension) {
				continue
			}
			if !tr.ShouldTrack(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				logger.Info("watcher: detected new file", slog.String("path", ev.Name))
			}
			tr.Touch(ev.Name)
			logger.Debug("watcher: activity", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			if cb != nil {
				cb("tracked", ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// dispatch runs one poll cycle: every tracked file quiet for longer than
// inactivity is processed. The modification time is re-read immediately
// before conversion so the marker records exactly the revision that was
// converted. Per-file failures never stop the cycle.
func dispatch(tr *Tracker, conv Converter, inactivity time.Duration, logger *slog.Logger, cb EventCallback) {
	for _, path := range tr.Due(inactivity) {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("watcher: file disappeared before processing", slog.String("path", path))
			tr.Drop(path)
			if cb != nil {
				cb("dropped", path)
			}
			continue
		}
		mtime := info.ModTime()

		if err := conv.Convert(path); err != nil {
			logger.Error("watcher: convert failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			tr.Drop(path)
			if cb != nil {
				cb("dropped", path)
			}
			continue
		}

		if err := tr.Commit(path, mtime); err != nil {
			// The file was converted but the marker write failed, so a
			// duplicate event could re-queue this revision.
			logger.Error("watcher: record marker failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}

		logger.Info("watcher: processed", slog.String("path", path))
		if cb != nil {
			cb("processed", path)
		}
	}
}
