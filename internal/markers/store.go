// Package markers persists the last-processed modification time per watched
// file, used to suppress reprocessing of unchanged content.
package markers

import "time"

// Marker is one persisted processed-modification-time record.
type Marker struct {
	Path        string
	ModTime     time.Time
	ProcessedAt time.Time
}

// Store is the interface for marker persistence. Consumers should depend on
// this interface rather than the concrete *DB type to facilitate testing.
type Store interface {
	// Get returns the recorded modification time for path, or the zero
	// time if the path has never been processed.
	Get(path string) (time.Time, error)
	// Put records mtime as the processed modification time for path.
	Put(path string, mtime, processedAt time.Time) error
	// All returns every stored marker ordered by path.
	All() ([]Marker, error)
	// Count returns the number of stored markers.
	Count() (int, error)
	// Prune deletes markers for which exists(path) reports false and
	// returns the number of rows removed.
	Prune(exists func(path string) bool) (int, error)
	Close() error
}

// Verify implementations satisfy Store at compile time.
var (
	_ Store = (*DB)(nil)
	_ Store = (*Memory)(nil)
)
