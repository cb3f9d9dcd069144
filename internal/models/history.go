// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import "time"

// HistoryEntry is one timestamped metrics snapshot in an entity's bounded
// history log. Entries are immutable once written and kept in ascending
// timestamp order.
type HistoryEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Metrics   MetricsSnapshot `json:"metrics"`
}

// HistoryLimit is the maximum number of history entries retained per entity.
// Appends beyond the limit drop the oldest entries first.
const HistoryLimit = 50
