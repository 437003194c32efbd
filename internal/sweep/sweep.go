// Package sweep periodically re-submits files left in the source directory,
// catching anything the change watcher missed.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filemover/internal/logger"
	"filemover/internal/model"
	"filemover/internal/notify"
	"filemover/internal/pipeline"
	"filemover/internal/util"

	"go.uber.org/zap"
)

var ErrNotRunning = errors.New("sweep scheduler not running")

type Handler func(model.PendingFile)

type Result struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Listed    int           `json:"listed"`
	Submitted int           `json:"submitted"`
	TooYoung  int           `json:"too_young"`
	Err       error         `json:"-"`
}

type Scheduler struct {
	dir        string
	interval   time.Duration
	minAge     time.Duration
	ignoreList []string
	handle     Handler
	sink       notify.Sink
	onSweep    func(Result)
	now        func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	triggers chan chan Result
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

func WithMinAge(d time.Duration) Option {
	return func(s *Scheduler) { s.minAge = d }
}

func WithIgnoreList(patterns []string) Option {
	return func(s *Scheduler) { s.ignoreList = patterns }
}

func WithSink(sink notify.Sink) Option {
	return func(s *Scheduler) { s.sink = sink }
}

// WithSweepHook registers fn to be called with every finished sweep.
func WithSweepHook(fn func(Result)) Option {
	return func(s *Scheduler) { s.onSweep = fn }
}

func New(dir string, handle Handler, opts ...Option) *Scheduler {
	s := &Scheduler{
		dir:      dir,
		interval: 30 * time.Second,
		minAge:   5 * time.Second,
		handle:   handle,
		sink:     notify.LogSink{},
		now:      time.Now,
		triggers: make(chan chan Result),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the ticker loop. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(s.stopCh, s.doneCh)

	logger.Log.Info("sweep scheduler started",
		zap.String("dir", s.dir),
		zap.Duration("interval", s.interval),
		zap.Duration("min_age", s.minAge))
}

// Stop halts the ticker and waits for a sweep in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	logger.Log.Info("sweep scheduler stopped")
}

// TriggerNow runs a sweep on the scheduler goroutine, so it never overlaps
// a timed one, and returns its result.
func (s *Scheduler) TriggerNow(ctx context.Context) (Result, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return Result{}, ErrNotRunning
	}

	reply := make(chan Result, 1)
	select {
	case s.triggers <- reply:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Scheduler) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.SweepOnce()
		case reply := <-s.triggers:
			reply <- s.SweepOnce()
		}
	}
}

// SweepOnce lists the directory and hands every old enough file to the
// handler. A listing failure is reported and ends this sweep only.
func (s *Scheduler) SweepOnce() Result {
	res := Result{StartedAt: s.now()}
	defer func() {
		res.Duration = s.now().Sub(res.StartedAt)
		if s.onSweep != nil {
			s.onSweep(res)
		}
	}()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		res.Err = fmt.Errorf("failed to list %s: %w", s.dir, err)
		_ = s.sink.Notify(notify.Error, "sweep failed",
			zap.String("dir", s.dir),
			zap.Error(err))
		return res
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if pipeline.ShouldIgnore(entry.Name(), s.ignoreList) {
			continue
		}
		res.Listed++

		path := filepath.Join(s.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			// gone since the listing; whoever took it is done with it
			continue
		}

		if s.age(path, info) < s.minAge {
			res.TooYoung++
			continue
		}

		logger.Log.Info("sweep processing file",
			zap.String("path", path))
		res.Submitted++
		s.submit(model.NewPendingFile(path, entry.Name(), model.OriginSweep))
	}

	if res.Submitted > 0 {
		logger.Log.Info("sweep finished",
			zap.Int("listed", res.Listed),
			zap.Int("submitted", res.Submitted))
	}

	return res
}

// age is measured from the file's creation time, or its modification time
// where the file system records no birth time.
func (s *Scheduler) age(path string, info os.FileInfo) time.Duration {
	return s.now().Sub(util.CreationTime(path, info))
}

func (s *Scheduler) submit(f model.PendingFile) {
	defer func() {
		if r := recover(); r != nil {
			_ = s.sink.Notify(notify.Error, "sweep handler panicked",
				zap.String("id", f.ID),
				zap.String("path", f.SourcePath),
				zap.Any("panic", r))
		}
	}()

	s.handle(f)
}
