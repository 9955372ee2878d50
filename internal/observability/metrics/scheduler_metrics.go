package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics captures background job health signals.
type SchedulerMetrics struct {
	jobRuns        *prometheus.CounterVec
	jobErrors      *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	overlapSkips   prometheus.Counter
	sweepDelivered prometheus.Counter
	sweepFailed    prometheus.Counter
}

var (
	schedulerOnce    sync.Once
	schedulerMetrics *SchedulerMetrics
)

// Scheduler returns the singleton scheduler metrics registry.
func Scheduler() *SchedulerMetrics {
	schedulerOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer)
	})
	return schedulerMetrics
}

// ResetSchedulerMetricsForTest resets the scheduler metrics singleton for tests.
func ResetSchedulerMetricsForTest() {
	schedulerOnce = sync.Once{}
	schedulerMetrics = nil
}

func newSchedulerMetrics(registerer prometheus.Registerer) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clouget_scheduler_job_runs_total",
		Help: "Scheduler job runs by name.",
	}, []string{"job"})

	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clouget_scheduler_job_errors_total",
		Help: "Scheduler job failures by name.",
	}, []string{"job"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clouget_scheduler_job_duration_seconds",
		Help:    "Scheduler job duration by name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	overlapSkips := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clouget_scheduler_overlap_skips_total",
		Help: "Ticks skipped because the previous run was still in flight.",
	})

	sweepDelivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clouget_notification_sweep_delivered_total",
		Help: "Notifications delivered by the sweep.",
	})

	sweepFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clouget_notification_sweep_failed_total",
		Help: "Notifications dead-lettered by the sweep.",
	})

	return &SchedulerMetrics{
		jobRuns:        register(registerer, jobRuns).(*prometheus.CounterVec),
		jobErrors:      register(registerer, jobErrors).(*prometheus.CounterVec),
		jobDuration:    register(registerer, jobDuration).(*prometheus.HistogramVec),
		overlapSkips:   register(registerer, overlapSkips).(prometheus.Counter),
		sweepDelivered: register(registerer, sweepDelivered).(prometheus.Counter),
		sweepFailed:    register(registerer, sweepFailed).(prometheus.Counter),
	}
}

func (m *SchedulerMetrics) IncJobRun(job string)   { m.jobRuns.WithLabelValues(job).Inc() }
func (m *SchedulerMetrics) IncJobError(job string) { m.jobErrors.WithLabelValues(job).Inc() }

func (m *SchedulerMetrics) ObserveJobDuration(job string, d time.Duration) {
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SchedulerMetrics) IncOverlapSkip() { m.overlapSkips.Inc() }

func (m *SchedulerMetrics) AddSweepDelivered(n int) { m.sweepDelivered.Add(float64(n)) }
func (m *SchedulerMetrics) AddSweepFailed(n int)    { m.sweepFailed.Add(float64(n)) }
