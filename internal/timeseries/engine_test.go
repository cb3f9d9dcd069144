// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package timeseries

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

type fakeLister struct {
	projects []lsmodels.Project
}

func (f *fakeLister) ListProjects(_ context.Context) ([]lsmodels.Project, error) {
	return f.projects, nil
}

type fixture struct {
	docs        *docstore.Store
	projects    *history.Store
	assignments *classify.AssignmentStore
	engine      *Engine
}

func newFixture(t *testing.T, lister aggregate.ProjectLister) *fixture {
	t.Helper()
	docs, err := docstore.Open(docstore.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { docs.Close() })

	projects := history.NewProjectStore(docs)
	categories := history.NewCategoryStore(docs)
	assignments := classify.NewAssignmentStore(docs, classify.NewModalityDetector(nil))
	catalog := classify.NewCategoryCatalog(nil)
	aggregator := aggregate.NewAggregator(lister, assignments, projects, categories, catalog)
	return &fixture{
		docs:        docs,
		projects:    projects,
		assignments: assignments,
		engine:      NewEngine(docs, aggregator, projects, assignments),
	}
}

func snapshotWith(classes map[string]int) models.MetricsSnapshot {
	s := models.NewMetricsSnapshot()
	for class, images := range classes {
		s.Classes[class] = models.ClassMetric{ImageCount: images, AnnotationCount: images}
	}
	return s
}

func fixedClock(date string) func() time.Time {
	ts, _ := time.Parse(models.DateFormat, date)
	return func() time.Time { return ts }
}

func seedDay(t *testing.T, docs *docstore.Store, date string, day map[string]models.ClassTotals) {
	t.Helper()
	err := docstore.Update(context.Background(), docs, DocKey, models.TimeSeriesDocument{}, func(doc *models.TimeSeriesDocument) error {
		(*doc)[date] = day
		return nil
	})
	if err != nil {
		t.Fatalf("seed day %s: %v", date, err)
	}
}

func TestStoreSnapshot_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	lister := &fakeLister{projects: []lsmodels.Project{{ID: 1, Title: "OPG one"}}}
	f := newFixture(t, lister)
	f.engine.WithClock(fixedClock("2026-08-30"))

	if err := f.projects.Append(ctx, "1", snapshotWith(map[string]int{"cavity": 5})); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.engine.StoreSnapshot(ctx); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}

	// A later snapshot on the same day overwrites the earlier one.
	if err := f.projects.Append(ctx, "1", snapshotWith(map[string]int{"cavity": 8})); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.engine.StoreSnapshot(ctx); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}

	series, err := f.engine.GetRange(ctx, "2026-08-30", "2026-08-30")
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	if len(series[0].DailyData) != 1 || series[0].DailyData[0].Images != 8 {
		t.Errorf("day totals = %+v, want images 8", series[0].DailyData)
	}
}

func TestGetRange_FiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeLister{})

	seedDay(t, f.docs, "2026-08-25", map[string]models.ClassTotals{"cavity-OPG": {Images: 1, Annotations: 2}})
	seedDay(t, f.docs, "2026-08-26", map[string]models.ClassTotals{"cavity-OPG": {Images: 3, Annotations: 6}})
	seedDay(t, f.docs, "2026-08-27", map[string]models.ClassTotals{"cavity-OPG": {Images: 5, Annotations: 10}})
	seedDay(t, f.docs, "2026-08-28", map[string]models.ClassTotals{"cavity-OPG": {Images: 9, Annotations: 18}})

	series, err := f.engine.GetRange(ctx, "2026-08-26", "2026-08-27")
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	points := series[0].DailyData
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 inside range", len(points))
	}
	// Date descending: the newest day first.
	if points[0].Date != "2026-08-27" || points[1].Date != "2026-08-26" {
		t.Errorf("points out of order: %s, %s", points[0].Date, points[1].Date)
	}
	if series[0].ClassName != "cavity" || series[0].Modality != "OPG" {
		t.Errorf("key split wrong: %s / %s", series[0].ClassName, series[0].Modality)
	}
}

func TestSplitSeriesKey_ClassWithDash(t *testing.T) {
	class, modality := splitSeriesKey("root-canal-Bitewing")
	if class != "root-canal" || modality != "Bitewing" {
		t.Errorf("splitSeriesKey = %q / %q, want root-canal / Bitewing", class, modality)
	}

	class, modality = splitSeriesKey("plainkey")
	if class != "plainkey" || modality != "Others" {
		t.Errorf("splitSeriesKey fallback = %q / %q", class, modality)
	}
}

func TestCalculateDailyDeltas(t *testing.T) {
	series := []models.SeriesEntry{{
		ClassName: "cavity",
		Modality:  "OPG",
		DailyData: []models.DailyPoint{
			{Date: "2026-08-28", Images: 9, Annotations: 18},
			{Date: "2026-08-27", Images: 5, Annotations: 10},
			{Date: "2026-08-26", Images: 3, Annotations: 6},
		},
	}}

	got := CalculateDailyDeltas(series)
	points := got[0].DailyData

	if points[0].ImagesDelta != 4 || points[0].AnnotationsDelta != 8 {
		t.Errorf("newest deltas = %d/%d, want 4/8", points[0].ImagesDelta, points[0].AnnotationsDelta)
	}
	if points[1].ImagesDelta != 2 {
		t.Errorf("middle delta = %d, want 2", points[1].ImagesDelta)
	}
	// The oldest day has nothing to diff against.
	if points[2].ImagesDelta != 0 || points[2].AnnotationsDelta != 0 {
		t.Errorf("oldest deltas = %d/%d, want 0/0", points[2].ImagesDelta, points[2].AnnotationsDelta)
	}
	if got[0].CurrentImages != 9 || got[0].CurrentAnnotations != 18 {
		t.Errorf("current totals = %d/%d, want 9/18", got[0].CurrentImages, got[0].CurrentAnnotations)
	}
}

func TestBackfill_FillsGapsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeLister{})

	// Two history entries on different days for an OPG-assigned project.
	if err := f.assignments.Override(ctx, "1", classify.ModalityOPG); err != nil {
		t.Fatalf("Override: %v", err)
	}
	f.projects.WithClock(fixedClock("2026-08-25"))
	if err := f.projects.Append(ctx, "1", snapshotWith(map[string]int{"cavity": 2})); err != nil {
		t.Fatalf("Append: %v", err)
	}
	f.projects.WithClock(fixedClock("2026-08-26"))
	if err := f.projects.Append(ctx, "1", snapshotWith(map[string]int{"cavity": 4})); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// The 26th already has a recorded snapshot that must survive.
	seedDay(t, f.docs, "2026-08-26", map[string]models.ClassTotals{"cavity-OPG": {Images: 999, Annotations: 999}})

	filled, err := f.engine.Backfill(ctx)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if filled != 1 {
		t.Errorf("filled = %d, want 1 (only the missing day)", filled)
	}

	series, err := f.engine.GetRange(ctx, "2026-08-25", "2026-08-26")
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	points := series[0].DailyData
	if points[0].Date != "2026-08-26" || points[0].Images != 999 {
		t.Errorf("existing day overwritten: %+v", points[0])
	}
	if points[1].Date != "2026-08-25" || points[1].Images != 2 {
		t.Errorf("backfilled day = %+v, want images 2", points[1])
	}
}

func TestBackfill_UnassignedProjectBucketsToOthers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &fakeLister{})

	f.projects.WithClock(fixedClock("2026-08-25"))
	if err := f.projects.Append(ctx, "42", snapshotWith(map[string]int{"cavity": 3})); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if _, err := f.engine.Backfill(ctx); err != nil {
		t.Fatalf("Backfill: %v", err)
	}

	series, err := f.engine.GetRange(ctx, "2026-08-25", "2026-08-25")
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(series) != 1 || series[0].Modality != "Others" {
		t.Fatalf("expected Others bucket, got %+v", series)
	}
}

func TestPresetRange(t *testing.T) {
	f := newFixture(t, &fakeLister{})
	f.engine.WithClock(fixedClock("2026-08-31"))

	tests := []struct {
		preset    string
		wantStart string
	}{
		{Preset24h, "2026-08-30"},
		{Preset7d, "2026-08-24"},
		{Preset30d, "2026-08-01"},
		{"bogus", "2026-08-24"},
		{"", "2026-08-24"},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			start, end := f.engine.PresetRange(tt.preset)
			if start != tt.wantStart {
				t.Errorf("start = %s, want %s", start, tt.wantStart)
			}
			if end != "2026-08-31" {
				t.Errorf("end = %s, want 2026-08-31", end)
			}
		})
	}
}
