package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"filemover/internal/model"

	"github.com/fsnotify/fsnotify"
)

type collector struct {
	mu    sync.Mutex
	files []model.PendingFile
}

func (c *collector) handle(f model.PendingFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, f)
}

func (c *collector) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.files))
	for _, f := range c.files {
		out = append(out, f.LogicalName)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestWatcher(t *testing.T, c *collector, opts ...Option) (*Watcher, string) {
	t.Helper()
	dir := t.TempDir()

	opts = append([]Option{WithSettleDelay(10 * time.Millisecond)}, opts...)
	w, err := New(dir, c.handle, opts...)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(w.Stop)

	return w, dir
}

func currentSubscription(w *Watcher) *fsnotify.Watcher {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fw
}

func TestWatcherDispatchesCreatedFile(t *testing.T) {
	c := &collector{}
	w, dir := newTestWatcher(t, c)

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if w.State() != model.WatcherActive {
		t.Fatalf("expected ACTIVE, got %s", w.State())
	}

	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, "created file", func() bool { return len(c.names()) == 1 })

	c.mu.Lock()
	f := c.files[0]
	c.mu.Unlock()
	if f.LogicalName != "report.txt" || f.Origin != model.OriginWatcher {
		t.Fatalf("unexpected pending file %+v", f)
	}
	if f.SourcePath != filepath.Join(w.Dir(), "report.txt") {
		t.Fatalf("unexpected source path %s", f.SourcePath)
	}
}

func TestWatcherSkipsDirectoriesAndIgnored(t *testing.T) {
	c := &collector{}
	w, dir := newTestWatcher(t, c, WithIgnoreList([]string{"*.tmp"}))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial.tmp"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "deep.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, "keep.txt", func() bool { return len(c.names()) >= 1 })
	time.Sleep(100 * time.Millisecond)

	names := c.names()
	if len(names) != 1 || names[0] != "keep.txt" {
		t.Fatalf("expected only keep.txt, got %v", names)
	}
}

func TestWatcherRecoversFromFault(t *testing.T) {
	c := &collector{}
	var states []model.WatcherState
	var statesMu sync.Mutex
	w, dir := newTestWatcher(t, c, WithStateHook(func(s model.WatcherState) {
		statesMu.Lock()
		states = append(states, s)
		statesMu.Unlock()
	}))

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	old := currentSubscription(w)
	w.fault(old, fsnotify.ErrEventOverflow)

	if w.State() != model.WatcherActive {
		t.Fatalf("expected ACTIVE after reinit, got %s", w.State())
	}
	if cur := currentSubscription(w); cur == nil || cur == old {
		t.Fatal("expected a fresh subscription")
	}

	statesMu.Lock()
	got := append([]model.WatcherState(nil), states...)
	statesMu.Unlock()
	want := []model.WatcherState{
		model.WatcherActive,
		model.WatcherFaulted,
		model.WatcherReinitializing,
		model.WatcherActive,
	}
	if len(got) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, got)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "after.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, "event after reinit", func() bool { return len(c.names()) == 1 })
}

func TestWatcherFailedResubscribe(t *testing.T) {
	c := &collector{}
	w, _ := newTestWatcher(t, c)

	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	w.subscribe = func(string) (*fsnotify.Watcher, error) {
		return nil, errors.New("inotify instances exhausted")
	}
	w.fault(currentSubscription(w), errors.New("boom"))

	if w.State() != model.WatcherFailed {
		t.Fatalf("expected FAILED, got %s", w.State())
	}
	if currentSubscription(w) != nil {
		t.Fatal("failed watcher must not hold a subscription")
	}

	w.Stop()
	if w.State() != model.WatcherStopped {
		t.Fatalf("expected STOPPED, got %s", w.State())
	}
}

func TestWatcherStartMissingDir(t *testing.T) {
	c := &collector{}
	w, err := New(filepath.Join(t.TempDir(), "missing"), c.handle)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	c := &collector{}
	w, _ := newTestWatcher(t, c)

	w.Stop()
	w.Stop()

	if err := w.Start(); err == nil {
		t.Fatal("expected start after stop to fail")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	w, err := New(t.TempDir(), func(model.PendingFile) { panic("handler blew up") },
		WithSettleDelay(0))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	w.inflight.Add(1)
	w.dispatch(model.NewPendingFile("/tmp/x", "x", model.OriginWatcher))
}
