// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request lifecycle
	RequestsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_requests_submitted_total",
			Help: "Song requests submitted, by outcome",
		},
		[]string{"result"}, // "ok", "rejected", "rolled_back"
	)

	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_request_transitions_total",
			Help: "Queue state transitions, by target status and outcome",
		},
		[]string{"status", "result"}, // result: "changed", "noop", "rejected", "error"
	)

	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ktv_queue_length",
			Help: "Number of queued requests in the latest snapshot",
		},
	)

	// Snapshot
	SnapshotRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ktv_snapshot_refresh_duration_seconds",
			Help:    "Time to re-fetch songs, requests and users",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotRefreshErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ktv_snapshot_refresh_errors_total",
			Help: "Snapshot refreshes that failed and kept the previous snapshot",
		},
	)

	ChangeNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_change_notifications_total",
			Help: "Change notifications received, by table",
		},
		[]string{"table"},
	)

	// Catalog import
	SongsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_songs_imported_total",
			Help: "Songs processed by bulk import, by outcome",
		},
		[]string{"result"}, // "ok", "failed"
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_api_requests_total",
			Help: "HTTP requests, by method, route and status code",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ktv_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ktv_websocket_clients",
			Help: "Connected WebSocket clients",
		},
	)

	CronRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ktv_cron_runs_total",
			Help: "Scheduled maintenance job runs",
		},
		[]string{"job", "result"},
	)
)

// RecordAPIRequest records one HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTransition records the outcome of a markPlayed / cancel.
func RecordTransition(status, result string) {
	RequestTransitions.WithLabelValues(status, result).Inc()
}

// RecordSubmit records the outcome of a submitted request.
func RecordSubmit(result string) {
	RequestsSubmitted.WithLabelValues(result).Inc()
}

// RecordRefresh records a snapshot refresh.
func RecordRefresh(duration time.Duration, err error) {
	SnapshotRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotRefreshErrors.Inc()
	}
}

// RecordImport records bulk import counts.
func RecordImport(succeeded, failed int) {
	SongsImported.WithLabelValues("ok").Add(float64(succeeded))
	SongsImported.WithLabelValues("failed").Add(float64(failed))
}

// RecordCronRun records one scheduled job run.
func RecordCronRun(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CronRuns.WithLabelValues(job, result).Inc()
}
