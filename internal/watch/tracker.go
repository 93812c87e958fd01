// Package watch implements the debounced file-stability detector: it tracks
// recently touched .dat files and promotes them for conversion once they have
// been quiet for the configured inactivity window.
package watch

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/starford/datwatch/internal/markers"
)

// Tracker holds the candidate set of recently touched, not yet processed
// files together with the persistent processed-modification-time markers.
//
// Concurrency model: the fsnotify event loop and the poll dispatcher both
// touch the activity map, so every access goes through one mutex. The marker
// store is safe for concurrent use on its own.
type Tracker struct {
	mu       sync.Mutex
	activity map[string]time.Time
	markers  markers.Store
}

// NewTracker creates a Tracker backed by the given marker store.
func NewTracker(store markers.Store) *Tracker {
	return &Tracker{
		activity: make(map[string]time.Time),
		markers:  store,
	}
}

// ShouldTrack reports whether path carries genuinely new data: the file must
// still exist, must not be a directory, and its modification time must be
// strictly greater than the recorded processed marker (zero time when the
// path has never been processed). It is a read-only predicate, so duplicate
// or re-fired filesystem events are harmless.
func (t *Tracker) ShouldTrack(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	last, err := t.markers.Get(path)
	if err != nil {
		return false
	}
	return info.ModTime().After(last)
}

// Touch records activity for path now. Repeated touches overwrite the
// previous timestamp, pushing the file's ready time forward.
func (t *Tracker) Touch(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activity[path] = time.Now()
}

// Due returns the paths whose last activity is older than inactivity,
// oldest first. It does not mutate tracking state; promotion to a terminal
// state happens only through Commit or Drop.
func (t *Tracker) Due(inactivity time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	type entry struct {
		path string
		last time.Time
	}
	var due []entry
	for path, last := range t.activity {
		if now.Sub(last) > inactivity {
			due = append(due, entry{path, last})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].last.Before(due[j].last) })

	out := make([]string, len(due))
	for i, e := range due {
		out[i] = e.path
	}
	return out
}

// Drop removes path from tracking without recording a marker: the file
// vanished or its conversion failed, so a future modification (or the file
// reappearing) makes it trackable again.
func (t *Tracker) Drop(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.activity, path)
}

// Commit removes path from tracking and records mtime as processed, so
// duplicate events for the same revision no longer re-queue the file.
func (t *Tracker) Commit(path string, mtime time.Time) error {
	t.mu.Lock()
	delete(t.activity, path)
	t.mu.Unlock()

	if err := t.markers.Put(path, mtime, time.Now()); err != nil {
		return fmt.Errorf("watch: commit %s: %w", path, err)
	}
	return nil
}

// Tracked returns the number of files currently awaiting stability.
func (t *Tracker) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.activity)
}
