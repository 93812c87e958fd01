package markers

import (
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used in tests and as a fallback when no
// database path is configured. Markers do not survive a restart.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Marker
}

// NewMemory creates an empty in-memory marker store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Marker)}
}

func (m *Memory) Get(path string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[path]
	if !ok {
		return time.Time{}, nil
	}
	return e.ModTime, nil
}

func (m *Memory) Put(path string, mtime, processedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = Marker{Path: path, ModTime: mtime, ProcessedAt: processedAt}
	return nil
}

func (m *Memory) All() ([]Marker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Marker, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Memory) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *Memory) Prune(exists func(path string) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for p := range m.entries {
		if !exists(p) {
			delete(m.entries, p)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) Close() error { return nil }
