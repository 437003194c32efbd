package notify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"filemover/internal/logger"

	"go.uber.org/zap"
)

// Guard shields callers from a secondary sink. Errors and panics from the
// inner sink are logged locally (once per distinct failure) and swallowed,
// so Notify on a Guard always returns nil.
type Guard struct {
	name  string
	inner Sink

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewGuard(name string, inner Sink) *Guard {
	return &Guard{
		name:  name,
		inner: inner,
		seen:  make(map[string]struct{}),
	}
}

func (g *Guard) Notify(sev Severity, msg string, fields ...zap.Field) (err error) {
	if g == nil || g.inner == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			g.report(fmt.Errorf("panic: %v", r))
		}
		err = nil
	}()

	if innerErr := g.inner.Notify(sev, msg, fields...); innerErr != nil {
		g.report(innerErr)
	}

	return nil
}

// maxSeen bounds the set of remembered failures; once full it starts over.
const maxSeen = 64

func (g *Guard) report(err error) {
	key := failureKey(err)

	g.mu.Lock()
	_, dup := g.seen[key]
	if !dup {
		if len(g.seen) >= maxSeen {
			clear(g.seen)
		}
		g.seen[key] = struct{}{}
	}
	g.mu.Unlock()

	if dup {
		return
	}

	logger.Log.Warn("notification channel failed",
		zap.String("channel", g.name),
		zap.Error(err))
}

// failureKey groups failures that differ only by path.
func failureKey(err error) string {
	if pe, ok := errors.AsType[*fs.PathError](err); ok {
		return "path:" + pe.Op + ":" + pe.Err.Error()
	}
	if le, ok := errors.AsType[*os.LinkError](err); ok {
		return "link:" + le.Op + ":" + le.Err.Error()
	}

	return err.Error()
}
