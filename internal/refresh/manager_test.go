// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/checkpoint"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/notify"
	"github.com/tomtom215/annolytics/internal/timeseries"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

type fakeClient struct {
	projects []lsmodels.Project
	tasks    map[int64][]lsmodels.Task
	failFor  map[int64]bool
}

func (f *fakeClient) ListProjects(_ context.Context) ([]lsmodels.Project, error) {
	return f.projects, nil
}

func (f *fakeClient) ListProjectTasks(_ context.Context, projectID int64) ([]lsmodels.Task, error) {
	if f.failFor[projectID] {
		return nil, errors.New("upstream unavailable")
	}
	return f.tasks[projectID], nil
}

func cavityTasks(n int) []lsmodels.Task {
	tasks := make([]lsmodels.Task, 0, n)
	for i := 0; i < n; i++ {
		tasks = append(tasks, lsmodels.Task{
			ID: int64(i + 1),
			Annotations: []lsmodels.Annotation{{
				Result: []lsmodels.AnnotationResult{{
					Value: lsmodels.ResultValue{RectangleLabels: []string{"cavity"}},
				}},
			}},
		})
	}
	return tasks
}

type fixture struct {
	docs       *docstore.Store
	projects   *history.Store
	categories *history.Store
	series     *timeseries.Engine
	manager    *Manager
}

func newFixture(t *testing.T, client *fakeClient) *fixture {
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
	checkpoints := checkpoint.NewStore(docs, projects, categories, assignments, client, checkpoint.Config{})
	notifier := notify.NewEngine(docs, projects, categories, checkpoints, 20)
	aggregator := aggregate.NewAggregator(client, assignments, projects, categories, catalog)
	series := timeseries.NewEngine(docs, aggregator, projects, assignments)
	return &fixture{
		docs:       docs,
		projects:   projects,
		categories: categories,
		series:     series,
		manager:    NewManager(client, projects, aggregator, notifier, series, catalog, 2),
	}
}

func TestRefreshProject(t *testing.T) {
	client := &fakeClient{
		projects: []lsmodels.Project{{ID: 1, Title: "OPG one"}},
		tasks:    map[int64][]lsmodels.Task{1: cavityTasks(4)},
	}
	f := newFixture(t, client)

	snapshot, err := f.manager.RefreshProject(context.Background(), 1)
	if err != nil {
		t.Fatalf("RefreshProject: %v", err)
	}
	if snapshot.Classes["cavity"].ImageCount != 4 {
		t.Errorf("snapshot cavity = %d, want 4", snapshot.Classes["cavity"].ImageCount)
	}

	entries, err := f.projects.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("history has %d entries, want 1", len(entries))
	}
}

func TestRefreshProject_UpstreamError(t *testing.T) {
	client := &fakeClient{failFor: map[int64]bool{1: true}}
	f := newFixture(t, client)

	if _, err := f.manager.RefreshProject(context.Background(), 1); err == nil {
		t.Fatal("expected error from failing upstream")
	}

	entries, err := f.projects.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed refresh must not append history, got %d entries", len(entries))
	}
}

func TestRun_FullPipeline(t *testing.T) {
	client := &fakeClient{
		projects: []lsmodels.Project{
			{ID: 1, Title: "OPG one"},
			{ID: 2, Title: "Bitewing two"},
			{ID: 3, Title: "OPG broken"},
		},
		tasks: map[int64][]lsmodels.Task{
			1: cavityTasks(3),
			2: cavityTasks(2),
		},
		failFor: map[int64]bool{3: true},
	}
	f := newFixture(t, client)
	ctx := context.Background()

	if err := f.manager.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	progress := f.manager.Progress()
	if progress.Running {
		t.Error("run finished but progress still Running")
	}
	if progress.Total != 3 || progress.Completed != 2 || progress.Failed != 1 {
		t.Errorf("progress = %+v, want total 3 completed 2 failed 1", progress)
	}
	if progress.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}

	// Category aggregation ran off the fresh history.
	latest, ok, err := f.categories.Latest(ctx, "Pathology")
	if err != nil || !ok {
		t.Fatalf("Latest Pathology: ok=%v err=%v", ok, err)
	}
	if latest.Metrics.Classes["cavity"].ImageCount != 5 {
		t.Errorf("Pathology cavity = %d, want 5", latest.Metrics.Classes["cavity"].ImageCount)
	}
}

func TestRun_GuardsAgainstConcurrentRuns(t *testing.T) {
	client := &fakeClient{}
	f := newFixture(t, client)

	// Simulate an in-flight run by holding the progress flag.
	f.manager.mu.Lock()
	f.manager.progress.Running = true
	f.manager.mu.Unlock()

	if err := f.manager.Run(context.Background()); !errors.Is(err, ErrRefreshRunning) {
		t.Fatalf("Run = %v, want ErrRefreshRunning", err)
	}
	if _, err := f.manager.RefreshAll(context.Background()); !errors.Is(err, ErrRefreshRunning) {
		t.Fatalf("RefreshAll = %v, want ErrRefreshRunning", err)
	}
}
