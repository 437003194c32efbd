package notify

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
	"testing"

	"go.uber.org/zap"
)

type recordingSink struct {
	calls []string
	err   error
}

func (r *recordingSink) Notify(sev Severity, msg string, fields ...zap.Field) error {
	r.calls = append(r.calls, sev.String()+":"+msg)
	return r.err
}

type panickingSink struct{}

func (panickingSink) Notify(Severity, string, ...zap.Field) error {
	panic("event log exploded")
}

func TestGuardSwallowsErrors(t *testing.T) {
	inner := &recordingSink{err: errors.New("access denied")}
	g := NewGuard("eventlog", inner)

	if err := g.Notify(Error, "move failed"); err != nil {
		t.Fatalf("guard must swallow errors, got %v", err)
	}
	if len(inner.calls) != 1 || inner.calls[0] != "ERROR:move failed" {
		t.Fatalf("unexpected calls %v", inner.calls)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	g := NewGuard("eventlog", panickingSink{})

	if err := g.Notify(Fatal, "watcher failed"); err != nil {
		t.Fatalf("guard must swallow panics, got %v", err)
	}
}

func TestGuardRemembersBoundedFailures(t *testing.T) {
	inner := &recordingSink{}
	g := NewGuard("eventlog", inner)

	for i := range 500 {
		inner.err = &fs.PathError{
			Op:   "write",
			Path: fmt.Sprintf("/var/log/events-%d.log", i),
			Err:  syscall.ENOSPC,
		}
		_ = g.Notify(Error, "move failed")
	}

	if n := len(g.seen); n != 1 {
		t.Fatalf("expected failures on different paths to share one entry, got %d", n)
	}

	for i := range 500 {
		inner.err = fmt.Errorf("failure %d", i)
		_ = g.Notify(Error, "move failed")
	}

	if n := len(g.seen); n > maxSeen {
		t.Fatalf("expected at most %d remembered failures, got %d", maxSeen, n)
	}
}

func TestNilGuardIsNoop(t *testing.T) {
	var g *Guard
	if err := g.Notify(Info, "noop"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("boom")}
	m := Multi{a, nil, b}

	err := m.Notify(Warning, "retrying")
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Fatalf("expected both sinks called, got %d and %d", len(a.calls), len(b.calls))
	}
}

func TestRenderFlattensFields(t *testing.T) {
	got := Render("file moved",
		zap.String("src", "/tmp/in/a.txt"),
		zap.Int("attempts", 2),
		zap.Error(nil))

	if !strings.HasPrefix(got, "file moved") {
		t.Fatalf("unexpected render %q", got)
	}
	if !strings.Contains(got, "src=/tmp/in/a.txt") || !strings.Contains(got, "attempts=2") {
		t.Fatalf("missing fields in %q", got)
	}
	if strings.Contains(got, "<nil>") {
		t.Fatalf("skip fields must be dropped: %q", got)
	}
}

func TestSeverityString(t *testing.T) {
	if Fatal.String() != "FATAL" || Info.String() != "INFO" {
		t.Fatal("unexpected severity names")
	}
}
