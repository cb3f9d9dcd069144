// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package refresh orchestrates metric collection runs: fetch tasks from the
// annotation tool, extract per-class metrics, append history, roll up
// categories, store the daily time-series snapshot, and evaluate
// notifications. One run may be triggered per project, for all projects at
// once, or periodically by the scheduler.
package refresh

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/tomtom215/annolytics/internal/aggregate"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/extract"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/metrics"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
	"github.com/tomtom215/annolytics/internal/notify"
	"github.com/tomtom215/annolytics/internal/timeseries"
)

// ErrRefreshRunning is returned when a bulk refresh is requested while one is
// already in flight. Runs never queue; callers retry after the active run
// finishes.
var ErrRefreshRunning = errors.New("refresh: bulk refresh already running")

// DefaultBatchSize bounds concurrent per-project fetches during a bulk run.
// Batches are processed sequentially to keep upstream load predictable.
const DefaultBatchSize = 5

// Client is the upstream capability a refresh run needs.
type Client interface {
	ListProjects(ctx context.Context) ([]lsmodels.Project, error)
	ListProjectTasks(ctx context.Context, projectID int64) ([]lsmodels.Task, error)
}

// Manager coordinates refresh runs and tracks bulk-run progress.
type Manager struct {
	client     Client
	projects   *history.Store
	aggregator *aggregate.Aggregator
	notifier   *notify.Engine
	series     *timeseries.Engine
	catalog    *classify.CategoryCatalog
	batchSize  int

	mu       sync.Mutex
	progress models.RefreshProgress
}

// NewManager builds a refresh manager. batchSize <= 0 falls back to
// DefaultBatchSize.
func NewManager(
	client Client,
	projects *history.Store,
	aggregator *aggregate.Aggregator,
	notifier *notify.Engine,
	series *timeseries.Engine,
	catalog *classify.CategoryCatalog,
	batchSize int,
) *Manager {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Manager{
		client:     client,
		projects:   projects,
		aggregator: aggregator,
		notifier:   notifier,
		series:     series,
		catalog:    catalog,
		batchSize:  batchSize,
	}
}

// RefreshProject fetches one project's tasks, extracts metrics, appends a
// history entry, and evaluates project notifications against its checkpoint.
// Returns the extracted snapshot.
func (m *Manager) RefreshProject(ctx context.Context, projectID int64) (models.MetricsSnapshot, error) {
	id := strconv.FormatInt(projectID, 10)
	tasks, err := m.client.ListProjectTasks(ctx, projectID)
	if err != nil {
		return models.MetricsSnapshot{}, err
	}
	snapshot := extract.Metrics(tasks)
	if err := m.projects.Append(ctx, id, snapshot); err != nil {
		return models.MetricsSnapshot{}, err
	}
	if _, err := m.notifier.CheckProjectReadiness(ctx, id); err != nil {
		logging.Warn().Err(err).Str("project_id", id).Msg("Notification check failed after refresh")
	}
	logging.Debug().
		Str("project_id", id).
		Int("total_images", snapshot.Summary.TotalImages).
		Int("annotated", snapshot.Summary.AnnotatedImages).
		Msg("Project refreshed")
	return snapshot, nil
}

// RefreshAll starts a bulk refresh in the background and returns its job id.
// Only one bulk run may be in flight; a second call while one is running
// returns ErrRefreshRunning. The run is detached from the caller's context
// and always completes once started.
func (m *Manager) RefreshAll(ctx context.Context) (string, error) {
	projects, err := m.client.ListProjects(ctx)
	if err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	m.mu.Lock()
	if m.progress.Running {
		m.mu.Unlock()
		return "", ErrRefreshRunning
	}
	m.progress = models.RefreshProgress{
		JobID:     jobID,
		Running:   true,
		Total:     len(projects),
		StartedAt: time.Now(),
	}
	m.mu.Unlock()

	go m.runAll(context.Background(), projects, "manual")
	return jobID, nil
}

// Run executes a full refresh synchronously. Used by the scheduler, which
// wants completion semantics rather than a job id. Shares the same
// single-run guard as RefreshAll.
func (m *Manager) Run(ctx context.Context) error {
	projects, err := m.client.ListProjects(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.progress.Running {
		m.mu.Unlock()
		return ErrRefreshRunning
	}
	m.progress = models.RefreshProgress{
		JobID:     uuid.NewString(),
		Running:   true,
		Total:     len(projects),
		StartedAt: time.Now(),
	}
	m.mu.Unlock()

	m.runAll(ctx, projects, "scheduled")
	return nil
}

// Progress returns a copy of the current bulk-run progress. Also reports the
// last finished run until the next one starts.
func (m *Manager) Progress() models.RefreshProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// runAll processes projects in sequential batches with bounded fan-out
// inside each batch. A failed project is counted and skipped; the run never
// aborts part-way. Aggregation and the daily snapshot happen once at the
// end, off the freshly appended history.
func (m *Manager) runAll(ctx context.Context, projects []lsmodels.Project, trigger string) {
	start := time.Now()
	metrics.ProjectsTracked.Set(float64(len(projects)))
	for begin := 0; begin < len(projects); begin += m.batchSize {
		end := begin + m.batchSize
		if end > len(projects) {
			end = len(projects)
		}

		p := pool.New().WithMaxGoroutines(m.batchSize)
		for _, project := range projects[begin:end] {
			p.Go(func() {
				if _, err := m.RefreshProject(ctx, project.ID); err != nil {
					logging.Warn().Err(err).
						Int64("project_id", project.ID).
						Msg("Project refresh failed")
					m.mark(false)
					return
				}
				m.mark(true)
			})
		}
		p.Wait()
	}

	if err := m.aggregator.RefreshAllCategories(ctx); err != nil {
		logging.Error().Err(err).Msg("Category aggregation failed")
	} else {
		for _, category := range m.catalog.Categories() {
			if _, err := m.notifier.CheckCategoryReadiness(ctx, category); err != nil {
				logging.Warn().Err(err).Str("category", category).Msg("Category notification check failed")
			}
		}
	}
	if err := m.series.StoreSnapshot(ctx); err != nil {
		logging.Error().Err(err).Msg("Daily snapshot failed")
	}

	m.mu.Lock()
	now := time.Now()
	m.progress.Running = false
	m.progress.FinishedAt = &now
	completed, failed := m.progress.Completed, m.progress.Failed
	m.mu.Unlock()

	metrics.RecordRefreshRun(trigger, time.Since(start), failed)
	logging.Info().
		Int("completed", completed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Bulk refresh finished")
}

func (m *Manager) mark(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.progress.Completed++
	} else {
		m.progress.Failed++
	}
}
