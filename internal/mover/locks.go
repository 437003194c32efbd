package mover

import (
	"strings"
	"sync"
)

// nameLocks serializes destination claims per logical name within the
// process. Keys are case-folded because Windows and macOS volumes are
// usually case-insensitive.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	mu   sync.Mutex
	refs int
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*nameLock)}
}

func (l *nameLocks) lock(name string) func() {
	key := strings.ToLower(name)

	l.mu.Lock()
	nl, ok := l.locks[key]
	if !ok {
		nl = &nameLock{}
		l.locks[key] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.mu.Lock()

	return func() {
		nl.mu.Unlock()

		l.mu.Lock()
		nl.refs--
		if nl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
