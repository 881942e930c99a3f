// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "futureview"

	// Labels
	outcomeLabel = "outcome"
	resultLabel  = "result"
)

// Worker outcomes recorded per processed job.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeConflict  = "conflict"
	OutcomeStuck     = "stuck"
	OutcomeMissing   = "missing"
)

/**
* Metrics definition
**/
var submittedTotalMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewings_submitted_total",
		Help:      "number of future viewings accepted and enqueued",
	},
)

var workerOutcomesMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_outcomes_total",
		Help:      "jobs processed by the worker partitioned by outcome",
	},
	[]string{outcomeLabel},
)

var queueDepthMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "task_queue_depth",
		Help:      "descriptors waiting in the in-process task queue",
	},
)

var generationDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "latency of image generation provider calls",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80},
	},
	[]string{resultLabel},
)

var recencyMarkedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recency_marked_total",
		Help:      "viewing records created by screen selections",
	},
)

var recencyConflictsMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recency_mark_conflicts_total",
		Help:      "screen selections rejected because a concurrent selection marked the same viewing",
	},
)

var sweepDeletedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_deleted_files_total",
		Help:      "artifact files removed by the sweep",
	},
)

var sweepErrorsMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_errors_total",
		Help:      "artifact files the sweep failed to inspect or remove",
	},
)

// IncreaseSubmitted counts an accepted submission.
func IncreaseSubmitted() {
	submittedTotalMetric.Inc()
}

// IncreaseWorkerOutcome counts a processed job by outcome.
func IncreaseWorkerOutcome(outcome string) {
	workerOutcomesMetric.With(prometheus.Labels{outcomeLabel: outcome}).Inc()
}

// SetQueueDepth records the current task queue length.
func SetQueueDepth(n int) {
	queueDepthMetric.Set(float64(n))
}

// ObserveGeneration records one provider call. result is "image", "empty" or "error".
func ObserveGeneration(result string, d time.Duration) {
	generationDurationMetric.With(prometheus.Labels{resultLabel: result}).Observe(d.Seconds())
}

// AddMarked counts viewing records created by a selection.
func AddMarked(n int) {
	recencyMarkedMetric.Add(float64(n))
}

// IncreaseMarkConflict counts a selection lost to a concurrent one.
func IncreaseMarkConflict() {
	recencyConflictsMetric.Inc()
}

// AddSwept records the result of one sweep run.
func AddSwept(deleted, errors int) {
	sweepDeletedMetric.Add(float64(deleted))
	sweepErrorsMetric.Add(float64(errors))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(submittedTotalMetric)
	prometheus.MustRegister(workerOutcomesMetric)
	prometheus.MustRegister(queueDepthMetric)
	prometheus.MustRegister(generationDurationMetric)
	prometheus.MustRegister(recencyMarkedMetric)
	prometheus.MustRegister(recencyConflictsMetric)
	prometheus.MustRegister(sweepDeletedMetric)
	prometheus.MustRegister(sweepErrorsMetric)
}
