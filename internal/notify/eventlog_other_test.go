//go:build !windows

package notify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestEventLogSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")

	sink, err := OpenEventLog(EventSource, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := sink.Notify(Warning, "move attempt failed", zap.String("src", "a.txt")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var entry eventLogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if entry.Severity != "WARNING" || entry.Source != EventSource {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !strings.Contains(entry.Message, "src=a.txt") {
		t.Fatalf("expected fields in message, got %q", entry.Message)
	}
}

func TestOpenEventLogRequiresPath(t *testing.T) {
	if _, err := OpenEventLog(EventSource, ""); err == nil {
		t.Fatal("expected error without a path")
	}
}
