// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

// DateFormat is the calendar-day key format used throughout the time-series
// store. Snapshots are daily granularity; there is no intra-day history.
const DateFormat = "2006-01-02"

// SeriesKey builds the "{class}-{modality}" key under which daily totals are
// bucketed inside a day's snapshot.
func SeriesKey(className, modality string) string {
	return className + "-" + modality
}

// TimeSeriesDocument is the persisted time-series store:
// date (YYYY-MM-DD) -> "{class}-{modality}" -> totals for that day.
type TimeSeriesDocument map[string]map[string]ClassTotals

// DailyPoint is one day in a series, with day-over-day deltas relative to the
// chronologically prior day. The oldest day in a range has zero deltas.
type DailyPoint struct {
	Date             string `json:"date"`
	Images           int    `json:"images"`
	Annotations      int    `json:"annotations"`
	ImagesDelta      int    `json:"images_delta"`
	AnnotationsDelta int    `json:"annotations_delta"`
}

// SeriesEntry is one (class, modality) series over a queried range.
// DailyData is sorted by date descending, so index 0 is the most recent day
// and also the source of the Current* totals.
type SeriesEntry struct {
	ClassName          string       `json:"class_name"`
	Modality           string       `json:"modality"`
	CurrentImages      int          `json:"current_images"`
	CurrentAnnotations int          `json:"current_annotations"`
	DailyData          []DailyPoint `json:"daily_data"`
}
