// Package notify carries operator-facing notifications: state transitions,
// move outcomes and faults. The primary channel is the process log;
// secondary channels (the system event log) are best-effort and must be
// wrapped in a Guard.
package notify

import (
	"fmt"
	"strings"

	"filemover/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("SEVERITY(%d)", int(s))
	}
}

type Sink interface {
	Notify(sev Severity, msg string, fields ...zap.Field) error
}

// LogSink writes notifications to the process logger. Fatal is logged at
// error level with a severity field; a notification never exits the process.
type LogSink struct{}

func (LogSink) Notify(sev Severity, msg string, fields ...zap.Field) error {
	lvl := zapcore.InfoLevel
	switch sev {
	case Warning:
		lvl = zapcore.WarnLevel
	case Error, Fatal:
		lvl = zapcore.ErrorLevel
	}

	if ce := logger.Log.Check(lvl, msg); ce != nil {
		ce.Write(append(fields, zap.Stringer("severity", sev))...)
	}

	return nil
}

type Multi []Sink

func (m Multi) Notify(sev Severity, msg string, fields ...zap.Field) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Notify(sev, msg, fields...); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sink(s) failed: %w", len(errs), errs[0])
	}

	return nil
}

// Render flattens structured fields into a single line for sinks that only
// accept text.
func Render(msg string, fields ...zap.Field) string {
	if len(fields) == 0 {
		return msg
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		if f.Type == zapcore.SkipType {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", f.Key, enc.Fields[f.Key])
	}

	return b.String()
}
