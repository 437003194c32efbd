package metrics

import (
	"testing"

	"filemover/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetWatcherStateIsOneHot(t *testing.T) {
	SetWatcherState(model.WatcherFailed)

	if got := testutil.ToFloat64(WatcherState.WithLabelValues(string(model.WatcherFailed))); got != 1 {
		t.Fatalf("expected FAILED=1, got %v", got)
	}
	if got := testutil.ToFloat64(WatcherState.WithLabelValues(string(model.WatcherActive))); got != 0 {
		t.Fatalf("expected ACTIVE=0, got %v", got)
	}
}

func TestObserveOutcomeCounts(t *testing.T) {
	counter := MovesTotal.WithLabelValues(string(model.OutcomeMoved), string(model.OriginSweep))
	before := testutil.ToFloat64(counter)

	ObserveOutcome(model.MoveOutcome{
		Kind:     model.OutcomeMoved,
		File:     model.PendingFile{Origin: model.OriginSweep},
		Attempts: 1,
	})

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, got)
	}
}
