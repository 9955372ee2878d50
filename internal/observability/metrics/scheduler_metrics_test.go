package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSchedulerMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newSchedulerMetrics(registry)

	m.IncJobRun("notification_sweep")
	m.IncJobRun("notification_sweep")
	m.IncJobError("notification_sweep")
	m.ObserveJobDuration("notification_sweep", 50*time.Millisecond)
	m.AddSweepDelivered(3)
	m.AddSweepFailed(1)
	m.IncOverlapSkip()

	runs := testutil.ToFloat64(m.jobRuns.WithLabelValues("notification_sweep"))
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %v", runs)
	}
	if got := testutil.ToFloat64(m.sweepDelivered); got != 3 {
		t.Fatalf("expected 3 delivered, got %v", got)
	}
	if got := testutil.ToFloat64(m.sweepFailed); got != 1 {
		t.Fatalf("expected 1 failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.overlapSkips); got != 1 {
		t.Fatalf("expected 1 overlap skip, got %v", got)
	}
}

func TestDuplicateRegistrationReturnsExisting(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newSchedulerMetrics(registry)
	second := newSchedulerMetrics(registry)

	first.AddSweepDelivered(1)
	second.AddSweepDelivered(1)

	if got := testutil.ToFloat64(second.sweepDelivered); got != 2 {
		t.Fatalf("expected shared collector across instances, got %v", got)
	}
}
