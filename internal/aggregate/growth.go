// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package aggregate

import (
	"context"
	"sort"
	"strconv"

	"github.com/tomtom215/annolytics/internal/checkpoint"
	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/extract"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// Client is the live upstream capability the growth calculator needs:
// project listing plus per-project task fetches.
type Client interface {
	ListProjects(ctx context.Context) ([]lsmodels.Project, error)
	ListProjectTasks(ctx context.Context, projectID int64) ([]lsmodels.Task, error)
}

// GrowthCalculator recomputes per (class, modality) growth against project
// checkpoint baselines. Unlike the category aggregator it fetches tasks live
// on every call; nothing here is cached.
type GrowthCalculator struct {
	client      Client
	assignments *classify.AssignmentStore
	checkpoints *checkpoint.Store
}

// NewGrowthCalculator builds a growth calculator.
func NewGrowthCalculator(client Client, assignments *classify.AssignmentStore, checkpoints *checkpoint.Store) *GrowthCalculator {
	return &GrowthCalculator{client: client, assignments: assignments, checkpoints: checkpoints}
}

type growthAccum struct {
	className    string
	modality     string
	current      int
	baseline     int
	contributors []models.GrowthContributor
}

// Calculate returns every (class, modality) pair whose growth percentage
// meets thresholdPct, sorted by growth descending. A pair with no baseline
// but a positive current count is pinned to exactly 100% and flagged IsNew,
// signalling a first observation rather than a computed ratio.
//
// A project whose live fetch fails is logged and skipped; sibling projects
// still contribute.
func (g *GrowthCalculator) Calculate(ctx context.Context, thresholdPct float64) ([]models.GrowthEntry, error) {
	projects, err := g.client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := g.assignments.ResolveAll(ctx, projects)
	if err != nil {
		return nil, err
	}
	checkpoints, err := g.checkpoints.All(ctx)
	if err != nil {
		return nil, err
	}

	accums := make(map[string]*growthAccum)
	for _, p := range projects {
		id := strconv.FormatInt(p.ID, 10)
		modality := assignments[id]

		tasks, err := g.client.ListProjectTasks(ctx, p.ID)
		if err != nil {
			logging.Warn().Err(err).Str("project_id", id).Msg("Skipping project in growth calculation")
			continue
		}
		snapshot := extract.Metrics(tasks)
		projectCP, hasCP := checkpoints.Projects[id]

		for class, metric := range snapshot.Classes {
			key := models.SeriesKey(class, modality)
			acc, ok := accums[key]
			if !ok {
				acc = &growthAccum{className: class, modality: modality}
				accums[key] = acc
			}

			baseline := 0
			if hasCP {
				baseline = projectCP.Metrics.Classes[class].ImageCount
			}
			acc.current += metric.ImageCount
			acc.baseline += baseline
			acc.contributors = append(acc.contributors, models.GrowthContributor{
				ProjectID:       id,
				Title:           p.Title,
				CurrentCount:    metric.ImageCount,
				CheckpointCount: baseline,
				Growth:          metric.ImageCount - baseline,
				GrowthPct:       growthPct(metric.ImageCount, baseline),
			})
		}
	}

	entries := make([]models.GrowthEntry, 0, len(accums))
	for _, acc := range accums {
		pct := growthPct(acc.current, acc.baseline)
		if pct < thresholdPct {
			continue
		}

		positive := make([]models.GrowthContributor, 0, len(acc.contributors))
		for _, c := range acc.contributors {
			if c.Growth > 0 {
				positive = append(positive, c)
			}
		}
		sort.Slice(positive, func(i, j int) bool {
			return positive[i].Growth > positive[j].Growth
		})

		entries = append(entries, models.GrowthEntry{
			ClassName:       acc.className,
			Modality:        acc.modality,
			CurrentCount:    acc.current,
			CheckpointCount: acc.baseline,
			GrowthPct:       pct,
			IsNew:           acc.baseline == 0 && acc.current > 0,
			Projects:        positive,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].GrowthPct > entries[j].GrowthPct
	})
	return entries, nil
}

// growthPct applies the growth policy: no baseline with a positive current
// count is exactly 100%, otherwise the standard percent-change formula.
func growthPct(current, baseline int) float64 {
	if baseline == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-baseline) / float64(baseline) * 100
}
