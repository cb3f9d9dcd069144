// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package timeseries persists daily snapshots of (class, modality) totals
// and answers range queries with day-over-day deltas.
//
// Granularity is one calendar day: the snapshot written last for a given
// day wins, and there is no intra-day history. Dates are plain YYYY-MM-DD
// strings, not time-of-day aware.
package timeseries

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/metrics"
	"github.com/tomtom215/annolytics/internal/models"
)

// DocKey is the persisted time-series document.
const DocKey = "time_series"

// Preset range identifiers accepted by PresetRange.
const (
	Preset24h = "24h"
	Preset7d  = "7d"
	Preset30d = "30d"
)

// Engine builds and queries the daily time-series store.
type Engine struct {
	docs        *docstore.Store
	aggregator  *aggregate.Aggregator
	projects    *history.Store
	assignments AssignmentReader
	now         func() time.Time
}

// AssignmentReader exposes the stored project -> modality map, needed by the
// backfill to bucket historical entries.
type AssignmentReader interface {
	All(ctx context.Context) (map[string]string, error)
}

// NewEngine builds a time-series engine.
func NewEngine(docs *docstore.Store, aggregator *aggregate.Aggregator, projects *history.Store, assignments AssignmentReader) *Engine {
	return &Engine{
		docs:        docs,
		aggregator:  aggregator,
		projects:    projects,
		assignments: assignments,
		now:         time.Now,
	}
}

// WithClock overrides the date source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// StoreSnapshot computes the current cross-project (class, modality) totals
// from cached history and writes them under today's date key, overwriting
// any snapshot already recorded for today. Idempotent per day,
// last-call-wins.
func (e *Engine) StoreSnapshot(ctx context.Context) error {
	aggregated, err := e.aggregator.ByModality(ctx)
	if err != nil {
		return err
	}

	day := make(map[string]models.ClassTotals)
	for class, byModality := range aggregated {
		for modality, metric := range byModality {
			key := models.SeriesKey(class, modality)
			totals := day[key]
			totals.Images += metric.ImageCount
			totals.Annotations += metric.AnnotationCount
			day[key] = totals
		}
	}

	date := e.now().Format(models.DateFormat)
	err = docstore.Update(ctx, e.docs, DocKey, models.TimeSeriesDocument{}, func(doc *models.TimeSeriesDocument) error {
		(*doc)[date] = day
		return nil
	})
	if err != nil {
		return err
	}
	metrics.SnapshotsStored.Inc()
	logging.Info().Str("date", date).Int("series", len(day)).Msg("Daily snapshot stored")
	return nil
}

// GetRange returns one series per (class, modality) key over the inclusive
// [start, end] date range, each with its dailyData sorted by date
// descending. Deltas are zero; apply CalculateDailyDeltas for day-over-day
// values.
func (e *Engine) GetRange(ctx context.Context, start, end string) ([]models.SeriesEntry, error) {
	doc := models.TimeSeriesDocument{}
	if _, err := e.docs.Read(ctx, DocKey, &doc); err != nil {
		return nil, err
	}

	byKey := make(map[string][]models.DailyPoint)
	for date, day := range doc {
		if date < start || date > end {
			continue
		}
		for key, totals := range day {
			byKey[key] = append(byKey[key], models.DailyPoint{
				Date:        date,
				Images:      totals.Images,
				Annotations: totals.Annotations,
			})
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make([]models.SeriesEntry, 0, len(keys))
	for _, key := range keys {
		points := byKey[key]
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date > points[j].Date
		})
		class, modality := splitSeriesKey(key)
		series = append(series, models.SeriesEntry{
			ClassName: class,
			Modality:  modality,
			DailyData: points,
		})
	}
	return series, nil
}

// CalculateDailyDeltas fills in day-over-day deltas for each series. The
// lists are date-descending, so each point's delta is its value minus the
// next list entry (the chronologically prior day); the oldest point gets
// zero deltas. Current totals are taken from index 0, the most recent day.
func CalculateDailyDeltas(series []models.SeriesEntry) []models.SeriesEntry {
	for i := range series {
		points := series[i].DailyData
		for j := range points {
			if j == len(points)-1 {
				points[j].ImagesDelta = 0
				points[j].AnnotationsDelta = 0
				continue
			}
			points[j].ImagesDelta = points[j].Images - points[j+1].Images
			points[j].AnnotationsDelta = points[j].Annotations - points[j+1].Annotations
		}
		if len(points) > 0 {
			series[i].CurrentImages = points[0].Images
			series[i].CurrentAnnotations = points[0].Annotations
		}
	}
	return series
}

// Backfill reconstructs daily snapshots from every project's full history,
// bucketing each entry by its own date, then merges with the existing
// time-series giving priority to days already recorded: backfill only fills
// gaps, it never overwrites. Returns the number of days filled in.
func (e *Engine) Backfill(ctx context.Context) (int, error) {
	histories, err := e.projects.All(ctx)
	if err != nil {
		return 0, err
	}
	assignments, err := e.assignments.All(ctx)
	if err != nil {
		return 0, err
	}

	computed := models.TimeSeriesDocument{}
	for projectID, entries := range histories {
		modality, ok := assignments[projectID]
		if !ok {
			modality = "Others"
		}
		for _, entry := range entries {
			date := entry.Timestamp.Format(models.DateFormat)
			if computed[date] == nil {
				computed[date] = make(map[string]models.ClassTotals)
			}
			for class, metric := range entry.Metrics.Classes {
				key := models.SeriesKey(class, modality)
				totals := computed[date][key]
				totals.Images += metric.ImageCount
				totals.Annotations += metric.AnnotationCount
				computed[date][key] = totals
			}
		}
	}

	filled := 0
	err = docstore.Update(ctx, e.docs, DocKey, models.TimeSeriesDocument{}, func(doc *models.TimeSeriesDocument) error {
		for date, day := range computed {
			if _, exists := (*doc)[date]; exists {
				continue
			}
			(*doc)[date] = day
			filled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.BackfillDaysFilled.Add(float64(filled))
	logging.Info().Int("days_filled", filled).Msg("Time-series backfill complete")
	return filled, nil
}

// PresetRange maps a preset identifier to an inclusive [start, end] date
// pair ending today. Unrecognized presets default to 7 days.
func (e *Engine) PresetRange(preset string) (start, end string) {
	now := e.now()
	end = now.Format(models.DateFormat)
	switch preset {
	case Preset24h:
		start = now.AddDate(0, 0, -1).Format(models.DateFormat)
	case Preset30d:
		start = now.AddDate(0, 0, -30).Format(models.DateFormat)
	case Preset7d:
		start = now.AddDate(0, 0, -7).Format(models.DateFormat)
	default:
		start = now.AddDate(0, 0, -7).Format(models.DateFormat)
	}
	return start, end
}

// splitSeriesKey splits "{class}-{modality}" at the last separator, since
// class names may themselves contain dashes.
func splitSeriesKey(key string) (class, modality string) {
	idx := strings.LastIndex(key, "-")
	if idx < 0 {
		return key, "Others"
	}
	return key[:idx], key[idx+1:]
}
