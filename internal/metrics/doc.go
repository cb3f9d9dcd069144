// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

/*
Package metrics provides Prometheus instrumentation for the dashboard.

Collectors are registered at package load via promauto and exported at the
/metrics endpoint in Prometheus text format:

	curl http://localhost:8090/metrics

Covered areas:
  - refresh runs: refresh_runs_total, refresh_duration_seconds,
    refresh_project_failures_total, projects_tracked
  - upstream annotation tool: upstream_requests_total,
    upstream_request_duration_seconds, upstream_circuit_breaker_open
  - notifications: active_notifications
  - API surface: api_requests_total, api_request_duration_seconds
  - document store: docstore_read_retries_total,
    timeseries_snapshots_stored_total, timeseries_backfill_days_filled_total

Helpers like RecordRefreshRun and RecordUpstreamRequest keep label handling
in one place so call sites never build label values by hand.
*/
package metrics
