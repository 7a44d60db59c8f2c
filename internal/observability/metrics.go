// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Dispatcher metrics
	RequestsDispatched *prometheus.CounterVec
	DispatchRetries    prometheus.Counter
	DispatchFailures   prometheus.Counter
	RateLimitWaits     *prometheus.CounterVec
	QueueDepth         prometheus.Gauge

	// Crawl metrics
	PagesFetched *prometheus.CounterVec
	PagesFailed  *prometheus.CounterVec

	// Reconciliation metrics
	RecordsProcessed *prometheus.CounterVec
	TradeActions     *prometheus.CounterVec
	RecordErrors     *prometheus.CounterVec

	// Checkpoint metrics
	CheckpointWrites *prometheus.CounterVec

	// Sync metrics
	SyncRunsTotal      *prometheus.CounterVec
	SyncDuration       *prometheus.HistogramVec
	LastSuccessfulSync *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "disclosure_sync"
	}

	return &Metrics{
		RequestsDispatched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Total number of requests dispatched by status code",
		}, []string{"status"}),
		DispatchRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "retries_total",
			Help:      "Total number of transparent dispatcher retries",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "failures_total",
			Help:      "Total number of requests that exhausted all retries",
		}),
		RateLimitWaits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "rate_limit_waits_total",
			Help:      "Total number of rate-limit backoff sleeps by window",
		}, []string{"window"}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Current number of requests waiting in the dispatch queue",
		}),

		PagesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "pages_fetched_total",
			Help:      "Total number of pages fetched successfully by source",
		}, []string{"source"}),
		PagesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "pages_failed_total",
			Help:      "Total number of page fetches that failed by source",
		}, []string{"source"}),

		RecordsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "records_processed_total",
			Help:      "Total number of records processed by source",
		}, []string{"source"}),
		TradeActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "trade_actions_total",
			Help:      "Total number of reconciliation outcomes by source and action",
		}, []string{"source", "action"}),
		RecordErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "record_errors_total",
			Help:      "Total number of record-level errors by source",
		}, []string{"source"}),

		CheckpointWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkpoint",
			Name:      "writes_total",
			Help:      "Total number of checkpoint writes by sync type",
		}, []string{"sync_type"}),

		SyncRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of sync runs by status",
		}, []string{"status"}),
		SyncDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Sync run duration in seconds",
			Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
		}, []string{"source"}),
		LastSuccessfulSync: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful sync by source",
		}, []string{"source"}),
	}
}

// DefaultMetrics is the package-level metrics instance.
var DefaultMetrics = NewMetrics("")

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDispatch records a completed outbound request.
func RecordDispatch(statusCode int) {
	DefaultMetrics.RequestsDispatched.WithLabelValues(statusLabel(statusCode)).Inc()
}

// RecordDispatchRetry increments the transparent retry counter.
func RecordDispatchRetry() {
	DefaultMetrics.DispatchRetries.Inc()
}

// RecordDispatchFailure increments the exhausted-retries counter.
func RecordDispatchFailure() {
	DefaultMetrics.DispatchFailures.Inc()
}

// RecordRateLimitWait records a backoff sleep for the given window scope.
func RecordRateLimitWait(window string) {
	DefaultMetrics.RateLimitWaits.WithLabelValues(window).Inc()
}

// SetQueueDepth updates the dispatch queue depth gauge.
func SetQueueDepth(n int) {
	DefaultMetrics.QueueDepth.Set(float64(n))
}

// RecordPage records the outcome of one page fetch.
func RecordPage(source string, failed bool) {
	if failed {
		DefaultMetrics.PagesFailed.WithLabelValues(source).Inc()
	} else {
		DefaultMetrics.PagesFetched.WithLabelValues(source).Inc()
	}
}

// RecordTradeAction records one reconciliation outcome.
func RecordTradeAction(source, action string) {
	DefaultMetrics.RecordsProcessed.WithLabelValues(source).Inc()
	DefaultMetrics.TradeActions.WithLabelValues(source, action).Inc()
}

// RecordRecordError records a record-level failure.
func RecordRecordError(source string) {
	DefaultMetrics.RecordsProcessed.WithLabelValues(source).Inc()
	DefaultMetrics.RecordErrors.WithLabelValues(source).Inc()
}

// RecordCheckpointWrite records one checkpoint write.
func RecordCheckpointWrite(syncType string) {
	DefaultMetrics.CheckpointWrites.WithLabelValues(syncType).Inc()
}

// RecordSyncRun records a completed sync run.
func RecordSyncRun(status string) {
	DefaultMetrics.SyncRunsTotal.WithLabelValues(status).Inc()
}

// RecordSourceSync records a per-source sync duration and success time.
func RecordSourceSync(source string, seconds float64, success bool, nowUnix int64) {
	DefaultMetrics.SyncDuration.WithLabelValues(source).Observe(seconds)
	if success {
		DefaultMetrics.LastSuccessfulSync.WithLabelValues(source).Set(float64(nowUnix))
	}
}

func statusLabel(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
