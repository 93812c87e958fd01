package api

import (
	"sync/atomic"
	"time"

	"github.com/starford/datwatch/internal/markers"
	"github.com/starford/datwatch/internal/watch"
)

// Service exposes watcher state to the HTTP layer.
type Service struct {
	tracker *watch.Tracker
	store   markers.Store

	startedAt time.Time
	processed atomic.Int64
	dropped   atomic.Int64
}

// NewService creates a Service over the given tracker and marker store.
func NewService(tracker *watch.Tracker, store markers.Store) *Service {
	return &Service{
		tracker:   tracker,
		store:     store,
		startedAt: time.Now(),
	}
}

// RecordEvent updates the lifetime counters from a watcher callback.
func (s *Service) RecordEvent(kind string) {
	switch kind {
	case "processed":
		s.processed.Add(1)
	case "dropped":
		s.dropped.Add(1)
	}
}

// Status returns a snapshot of the watcher's current state.
func (s *Service) Status() (StatusResponse, error) {
	count, err := s.store.Count()
	if err != nil {
		return StatusResponse{}, err
	}
	return StatusResponse{
		Tracked:       s.tracker.Tracked(),
		Markers:       count,
		Processed:     s.processed.Load(),
		Dropped:       s.dropped.Load(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}, nil
}

// Markers returns every persisted processed-file marker.
func (s *Service) Markers() ([]markers.Marker, error) {
	return s.store.All()
}
