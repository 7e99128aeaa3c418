package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveModerationIncrementsCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveModeration("approve", "succeeded")
	m.ObserveModeration("approve", "succeeded")
	m.ObserveModeration("approve", "conflict")

	if got := testutil.ToFloat64(m.ModerationDecisions.WithLabelValues("approve", "succeeded")); got != 2 {
		t.Fatalf("expected 2 succeeded approvals, got %v", got)
	}
	if got := testutil.ToFloat64(m.ModerationDecisions.WithLabelValues("approve", "conflict")); got != 1 {
		t.Fatalf("expected 1 conflicting approval, got %v", got)
	}
}

func TestObserveBulkModerationSplitsOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBulkModeration("reject", 4, 1, 120*time.Millisecond)

	if got := testutil.ToFloat64(m.BulkItems.WithLabelValues("reject", "succeeded")); got != 4 {
		t.Fatalf("expected 4 succeeded items, got %v", got)
	}
	if got := testutil.ToFloat64(m.BulkItems.WithLabelValues("reject", "failed")); got != 1 {
		t.Fatalf("expected 1 failed item, got %v", got)
	}
	if count := testutil.CollectAndCount(m.BulkDuration); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveModeration("approve", "succeeded")
	m.ObserveBulkModeration("approve", 1, 0, time.Second)
	m.ObserveCollaboration("approve", "succeeded")
}
