package notify

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc/eventlog"
)

// EventLogSink writes to the Windows Application event log. The source must
// have been registered (see autostart.Install); path is ignored.
type EventLogSink struct {
	log *eventlog.Log
}

const eventID = 1

func OpenEventLog(source, _ string) (*EventLogSink, error) {
	l, err := eventlog.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", source, err)
	}

	return &EventLogSink{log: l}, nil
}

func (s *EventLogSink) Notify(sev Severity, msg string, fields ...zap.Field) error {
	text := Render(msg, fields...)

	switch sev {
	case Info:
		return s.log.Info(eventID, text)
	case Warning:
		return s.log.Warning(eventID, text)
	default:
		return s.log.Error(eventID, text)
	}
}

func (s *EventLogSink) Close() error {
	return s.log.Close()
}
