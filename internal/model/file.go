package model

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Origin string

const (
	OriginWatcher Origin = "WATCHER"
	OriginSweep   Origin = "SWEEP"
	OriginManual  Origin = "MANUAL"
)

// PendingFile is a file awaiting relocation. It lives only until the move
// engine resolves it.
type PendingFile struct {
	ID          string
	SourcePath  string
	LogicalName string
	Origin      Origin
	DetectedAt  time.Time
}

func NewPendingFile(sourcePath, logicalName string, origin Origin) PendingFile {
	return PendingFile{
		ID:          uuid.NewString(),
		SourcePath:  sourcePath,
		LogicalName: logicalName,
		Origin:      origin,
		DetectedAt:  time.Now(),
	}
}

// NewPendingFileAt resolves path to an absolute source path and uses its
// base name as the logical name.
func NewPendingFileAt(path string, origin Origin) (PendingFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return PendingFile{}, fmt.Errorf("invalid path %s: %w", path, err)
	}

	return NewPendingFile(abs, filepath.Base(abs), origin), nil
}

type OutcomeKind string

const (
	OutcomeMoved            OutcomeKind = "MOVED"
	OutcomeSourceVanished   OutcomeKind = "SOURCE_VANISHED"
	OutcomeExhaustedRetries OutcomeKind = "EXHAUSTED_RETRIES"
	OutcomeFatal            OutcomeKind = "FATAL"
)

type MoveOutcome struct {
	Kind     OutcomeKind
	File     PendingFile
	DestPath string
	Attempts int
	Err      error
}

func (o MoveOutcome) Moved() bool {
	return o.Kind == OutcomeMoved
}

func (o MoveOutcome) Failed() bool {
	return o.Kind == OutcomeExhaustedRetries || o.Kind == OutcomeFatal
}
