// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package notify compares the latest history entry of an entity against its
// stored checkpoint and raises a structured alert when a class's image count
// grew past the configured threshold percentage.
//
// Alerts are de-duplicated by (entity, class): a second trigger for the same
// pair is silently dropped until the stored one is dismissed. Dismissal is
// by list index, so indices shift after any dismissal.
package notify

import (
	"context"
	"time"

	"github.com/tomtom215/annolytics/internal/checkpoint"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
)

// DocKey is the persisted notifications document (a flat JSON list).
const DocKey = "notifications"

// DefaultThresholdPct is the growth percentage that triggers an alert when
// no threshold is configured.
const DefaultThresholdPct = 20.0

// Engine evaluates growth against checkpoints and manages the stored
// notification list.
type Engine struct {
	docs        *docstore.Store
	projects    *history.Store
	categories  *history.Store
	checkpoints *checkpoint.Store
	threshold   float64
	now         func() time.Time
}

// NewEngine builds a notification engine. thresholdPct <= 0 falls back to
// DefaultThresholdPct.
func NewEngine(
	docs *docstore.Store,
	projects, categories *history.Store,
	checkpoints *checkpoint.Store,
	thresholdPct float64,
) *Engine {
	if thresholdPct <= 0 {
		thresholdPct = DefaultThresholdPct
	}
	return &Engine{
		docs:        docs,
		projects:    projects,
		categories:  categories,
		checkpoints: checkpoints,
		threshold:   thresholdPct,
		now:         time.Now,
	}
}

// WithClock overrides the timestamp source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CheckProjectReadiness diffs the project's latest metrics against its
// checkpoint and stores one notification per class whose image count grew by
// at least the threshold percentage. Classes absent from the checkpoint (or
// with a zero baseline) are skipped, never treated as infinite growth.
// Returns the notifications newly stored by this call; an empty list when
// the project has no checkpoint or no history.
func (e *Engine) CheckProjectReadiness(ctx context.Context, projectID string) ([]models.Notification, error) {
	cp, ok, err := e.checkpoints.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Notification{}, nil
	}
	latest, ok, err := e.projects.Latest(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Notification{}, nil
	}

	var stored []models.Notification
	for _, class := range latest.Metrics.ClassNames() {
		n, triggered := e.evaluate(class, latest.Metrics, cp)
		if !triggered {
			continue
		}
		n.Type = models.NotificationTypeProject
		n.ProjectID = projectID

		added, err := e.Add(ctx, n)
		if err != nil {
			return nil, err
		}
		if added {
			stored = append(stored, n)
		}
	}
	if stored == nil {
		stored = []models.Notification{}
	}
	return stored, nil
}

// CheckCategoryReadiness is the category counterpart of
// CheckProjectReadiness, diffing category history against the category
// checkpoint.
func (e *Engine) CheckCategoryReadiness(ctx context.Context, category string) ([]models.Notification, error) {
	cp, ok, err := e.checkpoints.GetCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Notification{}, nil
	}
	latest, ok, err := e.categories.Latest(ctx, category)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Notification{}, nil
	}

	var stored []models.Notification
	for _, class := range latest.Metrics.ClassNames() {
		n, triggered := e.evaluate(class, latest.Metrics, cp)
		if !triggered {
			continue
		}
		n.Type = models.NotificationTypeCategory
		n.Category = category

		added, err := e.Add(ctx, n)
		if err != nil {
			return nil, err
		}
		if added {
			stored = append(stored, n)
		}
	}
	if stored == nil {
		stored = []models.Notification{}
	}
	return stored, nil
}

// evaluate applies the threshold rule for one class. The checkpoint count
// must be positive to qualify as a baseline.
func (e *Engine) evaluate(class string, current models.MetricsSnapshot, cp models.Checkpoint) (models.Notification, bool) {
	currentCount := current.Classes[class].ImageCount
	checkpointCount := cp.Metrics.Classes[class].ImageCount
	if checkpointCount <= 0 {
		return models.Notification{}, false
	}
	increase := float64(currentCount-checkpointCount) / float64(checkpointCount) * 100
	if increase < e.threshold {
		return models.Notification{}, false
	}
	return models.Notification{
		ClassName:       class,
		IncreasePct:     increase,
		CurrentCount:    currentCount,
		CheckpointCount: checkpointCount,
		CheckpointDate:  cp.Timestamp,
		Timestamp:       e.now(),
	}, true
}

// Add appends the notification unless one with the same (entity, class)
// pair is already stored, in which case the call is a silent no-op; the
// existing record keeps its original numbers. Returns whether the
// notification was stored.
func (e *Engine) Add(ctx context.Context, n models.Notification) (bool, error) {
	added := false
	err := docstore.Update(ctx, e.docs, DocKey, []models.Notification{}, func(doc *[]models.Notification) error {
		for _, existing := range *doc {
			if existing.EntityID() == n.EntityID() && existing.ClassName == n.ClassName {
				return nil
			}
		}
		*doc = append(*doc, n)
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if added {
		logging.Info().
			Str("type", n.Type).
			Str("entity", n.EntityID()).
			Str("class", n.ClassName).
			Float64("increase_pct", n.IncreasePct).
			Msg("Growth notification stored")
	}
	return added, nil
}

// List returns all stored notifications in insertion order.
func (e *Engine) List(ctx context.Context) ([]models.Notification, error) {
	doc := []models.Notification{}
	if _, err := e.docs.Read(ctx, DocKey, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Dismiss removes the notification at the given list index. Later entries
// shift down one position. An out-of-range index is a no-op returning false.
func (e *Engine) Dismiss(ctx context.Context, index int) (bool, error) {
	dismissed := false
	err := docstore.Update(ctx, e.docs, DocKey, []models.Notification{}, func(doc *[]models.Notification) error {
		if index < 0 || index >= len(*doc) {
			return nil
		}
		*doc = append((*doc)[:index], (*doc)[index+1:]...)
		dismissed = true
		return nil
	})
	return dismissed, err
}

// ClearProject removes every stored notification for a project. Called when
// a fresh project checkpoint is created, since comparisons against the old
// baseline are no longer meaningful.
func (e *Engine) ClearProject(ctx context.Context, projectID string) error {
	return e.clear(ctx, models.NotificationTypeProject, projectID)
}

// ClearCategory removes every stored notification for a category.
func (e *Engine) ClearCategory(ctx context.Context, category string) error {
	return e.clear(ctx, models.NotificationTypeCategory, category)
}

func (e *Engine) clear(ctx context.Context, typ, entityID string) error {
	return docstore.Update(ctx, e.docs, DocKey, []models.Notification{}, func(doc *[]models.Notification) error {
		kept := (*doc)[:0]
		for _, n := range *doc {
			if n.Type == typ && n.EntityID() == entityID {
				continue
			}
			kept = append(kept, n)
		}
		*doc = kept
		return nil
	})
}
