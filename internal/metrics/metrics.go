// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Refresh run metrics
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of bulk refresh runs",
		},
		[]string{"trigger"}, // "manual", "scheduled"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of bulk refresh runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	RefreshProjectFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_project_failures_total",
			Help: "Total number of per-project refresh failures",
		},
	)

	ProjectsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "projects_tracked",
			Help: "Number of annotation projects seen in the last refresh",
		},
	)

	// Upstream annotation tool metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests to the annotation tool API",
		},
		[]string{"endpoint", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Annotation tool request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	UpstreamBreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "upstream_circuit_breaker_open",
			Help: "1 when the annotation tool circuit breaker is open, 0 otherwise",
		},
	)

	// Notification metrics
	ActiveNotifications = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_notifications",
			Help: "Current number of stored growth notifications",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Document store metrics
	StoreReadRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docstore_read_retries_total",
			Help: "Total number of retried document store reads",
		},
	)

	SnapshotsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timeseries_snapshots_stored_total",
			Help: "Total number of daily time-series snapshots written",
		},
	)

	BackfillDaysFilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timeseries_backfill_days_filled_total",
			Help: "Total number of missing days filled by backfill runs",
		},
	)
)

// RecordRefreshRun records a completed bulk refresh.
func RecordRefreshRun(trigger string, duration time.Duration, failed int) {
	RefreshRunsTotal.WithLabelValues(trigger).Inc()
	RefreshDuration.Observe(duration.Seconds())
	if failed > 0 {
		RefreshProjectFailures.Add(float64(failed))
	}
}

// RecordUpstreamRequest records one request to the annotation tool.
func RecordUpstreamRequest(endpoint string, statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetBreakerOpen mirrors the upstream circuit breaker state into a gauge.
func SetBreakerOpen(open bool) {
	if open {
		UpstreamBreakerOpen.Set(1)
		return
	}
	UpstreamBreakerOpen.Set(0)
}

// RecordAPIRequest records one handled API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
