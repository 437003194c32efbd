//go:build !windows

package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"filemover/internal/logger"

	"go.uber.org/zap"
)

// EventLogSink appends one JSON line per notification to a rotating file.
// It stands in for the Windows Application event log on other platforms.
type EventLogSink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

type eventLogEntry struct {
	Time     time.Time `json:"time"`
	Source   string    `json:"source"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
}

func OpenEventLog(source, path string) (*EventLogSink, error) {
	if path == "" {
		return nil, fmt.Errorf("event log %s: no file configured", source)
	}

	return &EventLogSink{w: logger.NewRotatingWriter(path)}, nil
}

func (s *EventLogSink) Notify(sev Severity, msg string, fields ...zap.Field) error {
	line, err := json.Marshal(eventLogEntry{
		Time:     time.Now(),
		Source:   EventSource,
		Severity: sev.String(),
		Message:  Render(msg, fields...),
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}

	return nil
}

func (s *EventLogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.w.Close()
}
