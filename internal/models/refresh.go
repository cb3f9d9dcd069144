// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import "time"

// RefreshProgress is a point-in-time view of a bulk refresh run. Handlers
// receive copies; only the refresh task mutates the live record, so
// intermediate snapshots may lag but converge once all batches settle.
type RefreshProgress struct {
	JobID      string     `json:"job_id"`
	Running    bool       `json:"running"`
	Total      int        `json:"total"`
	Completed  int        `json:"completed"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// SchedulerConfig is the persisted scheduler configuration document.
type SchedulerConfig struct {
	Enabled         bool   `json:"enabled"`
	IntervalMinutes int    `json:"interval_minutes"`
	LastRunAt       string `json:"last_run_at,omitempty"`
}
