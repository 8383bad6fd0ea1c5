// Package metrics records Prometheus metrics for sync runs. A run is a batch
// job, so the registry is pushed to a Pushgateway once the run ends rather
// than scraped.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/constants"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/reconciler"
)

// Recorder holds the metrics of one process. It implements
// reconciler.Observer and is safe for concurrent use.
type Recorder struct {
	// Counters
	RecordsTotal  *prometheus.CounterVec
	FetchFailures prometheus.Counter

	// Histograms
	RecordDuration *prometheus.HistogramVec
	RunDuration    prometheus.Histogram

	// Gauges
	LastRunRecords *prometheus.GaugeVec
	LastSuccess    prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "records_total",
			Help:      "Records processed by terminal state and skip reason.",
		},
		[]string{"state", "reason"},
	)

	r.FetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "fetch_failures_total",
			Help:      "Runs aborted because the source batch could not be fetched.",
		},
	)

	r.RecordDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "record_duration_seconds",
			Help:      "Time to take one record to its terminal state.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"state"},
	)

	r.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full sync run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	r.LastRunRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "last_run_records",
			Help:      "Record tallies of the most recent completed run.",
		},
		[]string{"category"},
	)

	r.LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the most recent run that fetched its batch.",
		},
	)

	r.registry.MustRegister(
		r.RecordsTotal,
		r.FetchFailures,
		r.RecordDuration,
		r.RunDuration,
		r.LastRunRecords,
		r.LastSuccess,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one record outcome.
func (r *Recorder) Observe(_ context.Context, o reconciler.Outcome) {
	r.RecordsTotal.WithLabelValues(string(o.State), o.Reason.String()).Inc()
	r.RecordDuration.WithLabelValues(string(o.State)).Observe(o.Duration.Seconds())
}

// ObserveRun records the end of a run. err is the error returned by the run.
func (r *Recorder) ObserveRun(report *reconciler.Report, err error) {
	if report != nil {
		r.RunDuration.Observe(report.Duration.Seconds())
	}
	if err != nil {
		if errors.IsFetchError(err) {
			r.FetchFailures.Inc()
		}
		return
	}
	if report == nil {
		return
	}

	r.LastRunRecords.WithLabelValues(string(reconciler.CategorySynced)).Set(float64(report.Synced))
	r.LastRunRecords.WithLabelValues(string(reconciler.CategorySkipped)).Set(float64(report.Skipped))
	r.LastRunRecords.WithLabelValues(string(reconciler.CategoryFailed)).Set(float64(report.Failed))
	r.LastSuccess.Set(float64(report.EndTime.Unix()))
}

// Push sends every metric to the Pushgateway at url under job, replacing the
// previous push of the same job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = constants.DefaultMetricsJob
	}

	ctx, cancel := context.WithTimeout(ctx, constants.PushTimeout)
	defer cancel()

	start := time.Now()
	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	logging.Ctx(ctx).Debug().
		Str("pushgateway", url).
		Str("job", job).
		Dur("elapsed", time.Since(start)).
		Msg("metrics pushed")
	return nil
}
