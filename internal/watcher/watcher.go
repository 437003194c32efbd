// Package watcher detects files created in the top level of a directory and
// hands them off after a settle delay. It recreates its fsnotify
// subscription when the OS reports a fault such as an event queue overflow.
package watcher

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

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// bufferSize only affects the Windows backend, where it sizes the
// ReadDirectoryChangesW buffer.
const bufferSize = 256 * 1024

type Handler func(model.PendingFile)

type Watcher struct {
	dir         string
	settleDelay time.Duration
	ignoreList  []string
	handle      Handler
	sink        notify.Sink
	onState     func(model.WatcherState)
	subscribe   func(dir string) (*fsnotify.Watcher, error)

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	state   model.WatcherState
	stopped bool
	doneCh  chan struct{}

	loops    sync.WaitGroup
	inflight sync.WaitGroup
}

type Option func(*Watcher)

func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) { w.settleDelay = d }
}

func WithIgnoreList(patterns []string) Option {
	return func(w *Watcher) { w.ignoreList = patterns }
}

func WithSink(s notify.Sink) Option {
	return func(w *Watcher) { w.sink = s }
}

// WithStateHook registers fn to be called after every state transition.
func WithStateHook(fn func(model.WatcherState)) Option {
	return func(w *Watcher) { w.onState = fn }
}

// WithSubscriber replaces the function that opens the fsnotify subscription
// on Start and after a fault.
func WithSubscriber(fn func(dir string) (*fsnotify.Watcher, error)) Option {
	return func(w *Watcher) { w.subscribe = fn }
}

func New(dir string, handle Handler, opts ...Option) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	if handle == nil {
		return nil, errors.New("watcher: nil handler")
	}

	w := &Watcher{
		dir:         filepath.Clean(absDir),
		settleDelay: 100 * time.Millisecond,
		handle:      handle,
		sink:        notify.LogSink{},
		subscribe:   subscribe,
		state:       model.WatcherStopped,
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

func subscribe(dir string) (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := fw.AddWith(dir, fsnotify.WithBufferSize(bufferSize)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return fw, nil
}

// Start subscribes to the directory. Calling Start on an active watcher is
// a no-op; a stopped watcher cannot be restarted.
func (w *Watcher) Start() error {
	w.mu.Lock()

	if w.stopped {
		w.mu.Unlock()
		return errors.New("watcher already stopped")
	}
	if w.fw != nil {
		w.mu.Unlock()
		return nil
	}

	if _, err := os.Stat(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("source directory not found: %w", err)
	}

	fw, err := w.subscribe(w.dir)
	if err != nil {
		w.mu.Unlock()
		return err
	}

	w.fw = fw
	w.loops.Add(1)
	go w.run(fw)
	w.mu.Unlock()

	w.setState(model.WatcherActive)
	logger.Log.Info("watcher started",
		zap.String("dir", w.dir))

	return nil
}

// Stop closes the subscription. In-flight handlers keep running; use Drain
// to wait for them. Safe to call more than once and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.doneCh)

	fw := w.fw
	w.fw = nil
	w.mu.Unlock()

	if fw != nil {
		_ = fw.Close()
	}
	w.loops.Wait()

	w.setState(model.WatcherStopped)
	logger.Log.Info("watcher stopped",
		zap.String("dir", w.dir))
}

// Drain waits for in-flight handlers or until ctx is done.
func (w *Watcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Watcher) State() model.WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) Dir() string {
	return w.dir
}

func (w *Watcher) setState(s model.WatcherState) {
	w.mu.Lock()
	changed := w.state != s
	w.state = s
	w.mu.Unlock()

	if changed && w.onState != nil {
		w.onState(s)
	}
}

func (w *Watcher) run(fw *fsnotify.Watcher) {
	defer w.loops.Done()

	for {
		select {
		case <-w.doneCh:
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.onEvent(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			// the replacement subscription gets its own loop
			w.fault(fw, err)
			return
		}
	}
}

func (w *Watcher) onEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}

	path := filepath.Clean(ev.Name)
	if filepath.Dir(path) != w.dir {
		return
	}

	name := filepath.Base(path)
	if pipeline.ShouldIgnore(name, w.ignoreList) {
		logger.Log.Debug("ignored file",
			zap.String("path", path))
		return
	}

	if info, err := os.Lstat(path); err == nil && !info.Mode().IsRegular() {
		return
	}

	logger.Log.Info("file created",
		zap.String("path", path))

	file := model.NewPendingFile(path, name, model.OriginWatcher)
	w.inflight.Add(1)
	go w.dispatch(file)
}

func (w *Watcher) dispatch(file model.PendingFile) {
	defer w.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			_ = w.sink.Notify(notify.Warning, "error processing file creation event",
				zap.String("id", file.ID),
				zap.String("path", file.SourcePath),
				zap.Any("panic", r))
		}
	}()

	if w.settleDelay > 0 {
		time.Sleep(w.settleDelay)
	}

	w.handle(file)
}

// fault tears down old and subscribes again. If that fails the watcher
// stays FAILED and only the sweep keeps detecting files.
func (w *Watcher) fault(old *fsnotify.Watcher, cause error) {
	w.setState(model.WatcherFaulted)
	_ = w.sink.Notify(notify.Error, "watcher fault",
		zap.String("dir", w.dir),
		zap.Bool("overflow", errors.Is(cause, fsnotify.ErrEventOverflow)),
		zap.Error(cause))

	w.mu.Lock()
	if w.stopped || w.fw != old {
		w.mu.Unlock()
		return
	}
	w.fw = nil
	w.mu.Unlock()

	_ = old.Close()
	w.setState(model.WatcherReinitializing)

	fw, err := w.subscribe(w.dir)

	w.mu.Lock()
	if err == nil && w.stopped {
		w.mu.Unlock()
		_ = fw.Close()
		return
	}
	if err != nil {
		w.mu.Unlock()
		w.setState(model.WatcherFailed)
		_ = w.sink.Notify(notify.Fatal, "failed to reinitialize watcher, relying on sweep",
			zap.String("dir", w.dir),
			zap.Error(err))
		return
	}

	w.fw = fw
	w.loops.Add(1)
	go w.run(fw)
	w.mu.Unlock()

	w.setState(model.WatcherActive)
	_ = w.sink.Notify(notify.Info, "watcher reinitialized after fault",
		zap.String("dir", w.dir))
}
