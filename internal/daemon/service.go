package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"filemover/internal/config"
	"filemover/internal/logger"
	"filemover/internal/metrics"
	"filemover/internal/model"
	"filemover/internal/mover"
	"filemover/internal/notify"
	"filemover/internal/sweep"
	"filemover/internal/watcher"

	"go.uber.org/zap"
)

var ErrNotStarted = errors.New("service not started")

// Recorder persists move outcomes. Failures are logged and never affect
// the move pipeline.
type Recorder interface {
	Save(model.MoveOutcome) error
}

// Service owns the move engine, the change watcher and the sweep
// scheduler for one source/destination pair.
type Service struct {
	cfg         config.Config
	sink        notify.Sink
	recorder    Recorder
	watcherOpts []watcher.Option

	mu      sync.Mutex
	running bool
	engine  *mover.Engine
	watcher *watcher.Watcher
	sweeper *sweep.Scheduler
	stats   *Stats
}

type Option func(*Service)

func WithSink(s notify.Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

func WithRecorder(r Recorder) Option {
	return func(svc *Service) { svc.recorder = r }
}

func withWatcherOptions(opts ...watcher.Option) Option {
	return func(svc *Service) { svc.watcherOpts = append(svc.watcherOpts, opts...) }
}

func NewService(cfg config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		sink:  notify.LogSink{},
		stats: NewStats(cfg.SourceDir, cfg.DestDir),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates both directories, subscribes to the source directory and
// starts the sweep timer. It is a no-op while running; on failure every
// partially started component is released before the error is returned.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			stopComponents(s.watcher, s.sweeper)
			_ = s.sink.Notify(notify.Error, "failed to start service", zap.Error(err))
		}
	}()

	if err := s.ensureDirs(); err != nil {
		return err
	}

	s.engine, err = mover.NewEngine(s.cfg.DestDir,
		mover.WithMaxAttempts(s.cfg.MaxAttempts),
		mover.WithBaseDelay(s.cfg.RetryBaseDelay))
	if err != nil {
		return err
	}

	s.stats = NewStats(s.cfg.SourceDir, s.cfg.DestDir)

	wopts := append([]watcher.Option{
		watcher.WithSettleDelay(s.cfg.SettleDelay),
		watcher.WithIgnoreList(s.cfg.IgnoreList),
		watcher.WithSink(s.sink),
		watcher.WithStateHook(s.onWatcherState),
	}, s.watcherOpts...)

	s.watcher, err = watcher.New(s.cfg.SourceDir, s.handle, wopts...)
	if err != nil {
		return err
	}
	if err := s.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.sweeper = sweep.New(s.cfg.SourceDir, s.handle,
		sweep.WithInterval(s.cfg.SweepInterval),
		sweep.WithMinAge(s.cfg.MinAge),
		sweep.WithIgnoreList(s.cfg.IgnoreList),
		sweep.WithSink(s.sink),
		sweep.WithSweepHook(s.onSweep))
	s.sweeper.Start()

	s.running = true
	_ = s.sink.Notify(notify.Info, "service started",
		zap.String("src", s.cfg.SourceDir),
		zap.String("dst", s.cfg.DestDir))

	return nil
}

// Stop disables watching and the sweep timer, then waits for in-flight
// moves until ctx expires. Moves are never aborted. Safe to call at any
// time, including after a failed Start.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	w, sw := s.watcher, s.sweeper
	s.mu.Unlock()

	// a sweep in progress calls back into process, so no lock is held here
	stopComponents(w, sw)

	var err error
	if w != nil {
		if drainErr := w.Drain(ctx); drainErr != nil {
			err = fmt.Errorf("moves still in flight at shutdown: %w", drainErr)
		}
	}

	_ = s.sink.Notify(notify.Info, "service stopped",
		zap.String("src", s.cfg.SourceDir))

	return err
}

func stopComponents(w *watcher.Watcher, sw *sweep.Scheduler) {
	if w != nil {
		w.Stop()
	}
	if sw != nil {
		sw.Stop()
	}
}

func (s *Service) ensureDirs() error {
	for _, dir := range []string{s.cfg.SourceDir, s.cfg.DestDir} {
		if _, err := os.Stat(dir); err == nil {
			continue
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		_ = s.sink.Notify(notify.Info, "created directory",
			zap.String("dir", dir))
	}

	return nil
}

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) Snapshot() model.ServiceSnapshot {
	s.mu.Lock()
	w, stats := s.watcher, s.stats
	s.mu.Unlock()

	state := model.WatcherStopped
	if w != nil {
		state = w.State()
	}

	return stats.Snapshot(state)
}

// Sweep runs a sweep immediately on the scheduler goroutine.
func (s *Service) Sweep(ctx context.Context) (sweep.Result, error) {
	s.mu.Lock()
	sw := s.sweeper
	running := s.running
	s.mu.Unlock()

	if !running || sw == nil {
		return sweep.Result{}, ErrNotStarted
	}

	return sw.TriggerNow(ctx)
}

// MoveFile moves a single file through the same engine as the watcher and
// sweep paths. The service must be running.
func (s *Service) MoveFile(path string) (model.MoveOutcome, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if !running {
		return model.MoveOutcome{}, ErrNotStarted
	}

	f, err := model.NewPendingFileAt(path, model.OriginManual)
	if err != nil {
		return model.MoveOutcome{}, err
	}

	return s.process(f), nil
}

func (s *Service) handle(f model.PendingFile) {
	s.process(f)
}

func (s *Service) process(f model.PendingFile) model.MoveOutcome {
	s.mu.Lock()
	engine, stats := s.engine, s.stats
	s.mu.Unlock()

	outcome := engine.Move(f)
	s.report(outcome, stats)

	return outcome
}

func (s *Service) report(outcome model.MoveOutcome, stats *Stats) {
	f := outcome.File
	fields := []zap.Field{
		zap.String("id", f.ID),
		zap.String("origin", string(f.Origin)),
		zap.String("src", f.SourcePath),
	}

	switch outcome.Kind {
	case model.OutcomeMoved:
		_ = s.sink.Notify(notify.Info, "file moved",
			append(fields,
				zap.String("dst", outcome.DestPath),
				zap.Int("attempts", outcome.Attempts))...)
	case model.OutcomeSourceVanished:
		_ = s.sink.Notify(notify.Info, "source file no longer exists", fields...)
	case model.OutcomeExhaustedRetries:
		_ = s.sink.Notify(notify.Error, "failed to move file after retries",
			append(fields,
				zap.Int("attempts", outcome.Attempts),
				zap.Error(outcome.Err))...)
	default:
		_ = s.sink.Notify(notify.Error, "unexpected error moving file",
			append(fields, zap.Error(outcome.Err))...)
	}

	stats.RecordOutcome(outcome)
	metrics.ObserveOutcome(outcome)

	if s.recorder != nil {
		if err := s.recorder.Save(outcome); err != nil {
			logger.Log.Warn("failed to save history",
				zap.String("id", f.ID),
				zap.Error(err))
		}
	}
}

func (s *Service) onWatcherState(state model.WatcherState) {
	metrics.SetWatcherState(state)
	logger.Log.Debug("watcher state changed",
		zap.String("state", string(state)))
}

func (s *Service) onSweep(res sweep.Result) {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()

	stats.RecordSweep(res)
	metrics.SweepDuration.Observe(res.Duration.Seconds())
	if res.Err != nil {
		metrics.SweepErrorsTotal.Inc()
	}
}
