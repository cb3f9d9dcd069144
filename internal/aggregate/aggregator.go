// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package aggregate derives cross-project roll-ups: category-level history
// from cached per-project metrics, and live growth reports per
// (class, modality) pair against checkpoint baselines.
package aggregate

import (
	"context"
	"strconv"

	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// ProjectLister enumerates annotation projects.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]lsmodels.Project, error)
}

// Aggregator rolls per-project metrics up into modality and category
// buckets. It works off cached history, not live task fetches.
type Aggregator struct {
	lister      ProjectLister
	assignments *classify.AssignmentStore
	projects    *history.Store
	categories  *history.Store
	catalog     *classify.CategoryCatalog
}

// NewAggregator builds a category aggregator.
func NewAggregator(
	lister ProjectLister,
	assignments *classify.AssignmentStore,
	projects, categories *history.Store,
	catalog *classify.CategoryCatalog,
) *Aggregator {
	return &Aggregator{
		lister:      lister,
		assignments: assignments,
		projects:    projects,
		categories:  categories,
		catalog:     catalog,
	}
}

// ByModality sums, across all projects, the latest history entry's per-class
// counts into class -> modality buckets. Projects with no history are
// skipped entirely and contribute nothing, not zero rows.
func (a *Aggregator) ByModality(ctx context.Context) (map[string]map[string]models.ClassMetric, error) {
	projects, err := a.lister.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := a.assignments.ResolveAll(ctx, projects)
	if err != nil {
		return nil, err
	}

	aggregated := make(map[string]map[string]models.ClassMetric)
	for _, p := range projects {
		id := strconv.FormatInt(p.ID, 10)
		latest, ok, err := a.projects.Latest(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		modality := assignments[id]
		for class, metric := range latest.Metrics.Classes {
			if aggregated[class] == nil {
				aggregated[class] = make(map[string]models.ClassMetric)
			}
			bucket := aggregated[class][modality]
			bucket.ImageCount += metric.ImageCount
			bucket.AnnotationCount += metric.AnnotationCount
			aggregated[class][modality] = bucket
		}
	}
	return aggregated, nil
}

// RefreshAllCategories re-buckets the modality aggregate into fixed
// categories and appends one history entry per non-empty category in a
// single bulk write. Categories with no contributing classes this cycle get
// no entry, so a category's history can have gaps.
func (a *Aggregator) RefreshAllCategories(ctx context.Context) error {
	aggregated, err := a.ByModality(ctx)
	if err != nil {
		return err
	}

	categorized := make(map[string]models.MetricsSnapshot)
	for class, byModality := range aggregated {
		category := a.catalog.CategoryOf(class)
		snapshot, ok := categorized[category]
		if !ok {
			snapshot = models.NewMetricsSnapshot()
		}
		sum := snapshot.Classes[class]
		for _, metric := range byModality {
			sum.ImageCount += metric.ImageCount
			sum.AnnotationCount += metric.AnnotationCount
		}
		snapshot.Classes[class] = sum
		categorized[category] = snapshot
	}

	if len(categorized) == 0 {
		logging.Debug().Msg("No category metrics this cycle, skipping append")
		return nil
	}
	return a.categories.AppendBulk(ctx, categorized)
}
