// Package mover relocates files into the destination directory without ever
// overwriting an existing file.
package mover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"filemover/internal/logger"
	"filemover/internal/model"
	"filemover/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

type Engine struct {
	destDir     string
	maxAttempts int
	baseDelay   time.Duration
	locks       *nameLocks

	rename func(src, dst string) error
	sleep  func(time.Duration)
}

type Option func(*Engine)

func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the backoff unit; the wait after attempt n is n × d.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.baseDelay = d
		}
	}
}

func NewEngine(destDir string, opts ...Option) (*Engine, error) {
	absDst, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("invalid dest path: %w", err)
	}

	e := &Engine{
		destDir:     absDst,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		locks:       newNameLocks(),
		rename:      util.RenameNoReplace,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) DestDir() string {
	return e.destDir
}

// Move relocates f into the destination directory. It is safe to call
// concurrently, including for the same source file: the caller that loses
// the race observes OutcomeSourceVanished.
func (e *Engine) Move(f model.PendingFile) model.MoveOutcome {
	outcome := model.MoveOutcome{File: f}

	for attempt := 0; ; {
		if !util.Exists(f.SourcePath) {
			outcome.Kind = model.OutcomeSourceVanished
			return outcome
		}

		outcome.Attempts = attempt + 1
		dst, err := e.moveOnce(f)
		if err == nil {
			outcome.Kind = model.OutcomeMoved
			outcome.DestPath = dst
			return outcome
		}

		if !util.Exists(f.SourcePath) {
			outcome.Kind = model.OutcomeSourceVanished
			return outcome
		}

		outcome.Err = err
		if !IsTransient(err) {
			outcome.Kind = model.OutcomeFatal
			return outcome
		}

		attempt++
		logger.Log.Warn("move attempt failed",
			zap.String("id", f.ID),
			zap.String("src", f.SourcePath),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.maxAttempts),
			zap.Error(err))

		if attempt >= e.maxAttempts {
			outcome.Kind = model.OutcomeExhaustedRetries
			return outcome
		}

		e.sleep(time.Duration(attempt) * e.baseDelay)
	}
}

func (e *Engine) moveOnce(f model.PendingFile) (string, error) {
	unlock := e.locks.lock(f.LogicalName)
	defer unlock()

	dst, err := e.freeName(f.LogicalName)
	if err != nil {
		return "", err
	}

	err = e.rename(f.SourcePath, dst)
	if err != nil && util.IsCrossDevice(err) {
		err = util.MoveAcrossDevices(f.SourcePath, dst)
	}
	if err != nil {
		return "", err
	}

	return dst, nil
}

// freeName returns the first unused path among name.ext, name_1.ext,
// name_2.ext, ... in the destination directory.
func (e *Engine) freeName(logicalName string) (string, error) {
	stem, ext := splitExt(logicalName)

	for counter := 0; ; counter++ {
		name := logicalName
		if counter > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, counter, ext)
		}

		candidate := filepath.Join(e.destDir, name)
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
	}
}

// splitExt splits off the last extension. A leading dot does not start an
// extension, so ".env" becomes ".env_1". A plain split at the last dot
// would treat the whole name as the extension and produce "_1.env".
func splitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}

	return name[:len(name)-len(ext)], ext
}
