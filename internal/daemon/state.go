package daemon

import (
	"sync"
	"time"

	"filemover/internal/model"
	"filemover/internal/sweep"
)

type Stats struct {
	mu        sync.RWMutex
	SourceDir string
	DestDir   string
	StartedAt time.Time
	Moved     int
	Vanished  int
	Failed    int
	LastMove  *time.Time
	LastSweep *time.Time
	Sweeps    int
}

func NewStats(src, dst string) *Stats {
	return &Stats{
		SourceDir: src,
		DestDir:   dst,
		StartedAt: time.Now(),
	}
}

func (s *Stats) RecordOutcome(outcome model.MoveOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch outcome.Kind {
	case model.OutcomeMoved:
		s.Moved++
		s.LastMove = new(time.Now())
	case model.OutcomeSourceVanished:
		s.Vanished++
	default:
		s.Failed++
	}
}

func (s *Stats) RecordSweep(res sweep.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sweeps++
	s.LastSweep = new(res.StartedAt)
}

func (s *Stats) Snapshot(state model.WatcherState) model.ServiceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.ServiceSnapshot{
		SourceDir:    s.SourceDir,
		DestDir:      s.DestDir,
		WatcherState: state,
		StartedAt:    s.StartedAt,
		Moved:        s.Moved,
		Vanished:     s.Vanished,
		Failed:       s.Failed,
		LastMove:     s.LastMove,
		LastSweep:    s.LastSweep,
		Sweeps:       s.Sweeps,
	}
}
