// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package checkpoint captures user-marked baseline snapshots per project,
// per category, and per (class, modality) pair. Checkpoints are created only
// on explicit user action; scheduled refreshes never touch them. They are
// the reference point for growth and notification comparisons.
package checkpoint

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/history"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// DocKey is the persisted checkpoints document.
const DocKey = "checkpoints"

// ProjectLister is the capability the class-checkpoint computation needs
// from the annotation tool: enumerate projects so each one's modality can be
// resolved. Injected rather than imported so this package stays decoupled
// from the concrete client.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]lsmodels.Project, error)
}

// Config holds checkpoint behavior switches.
type Config struct {
	// NormalizeClassLookup controls how class checkpoints look up per-class
	// counts in stored metrics. Stored metric keys are normalized to
	// lowercase, but the historical behavior is an exact, case-sensitive
	// match on the caller-supplied class name, which sums to zero for a
	// capitalized name. Leave false for that historical behavior; set true
	// to normalize the name before lookup.
	NormalizeClassLookup bool
}

// Store manages the checkpoints document.
type Store struct {
	docs        *docstore.Store
	projects    *history.Store
	categories  *history.Store
	assignments *classify.AssignmentStore
	lister      ProjectLister
	cfg         Config
	now         func() time.Time
}

// NewStore builds a checkpoint store.
func NewStore(
	docs *docstore.Store,
	projects, categories *history.Store,
	assignments *classify.AssignmentStore,
	lister ProjectLister,
	cfg Config,
) *Store {
	return &Store{
		docs:        docs,
		projects:    projects,
		categories:  categories,
		assignments: assignments,
		lister:      lister,
		cfg:         cfg,
		now:         time.Now,
	}
}

// WithClock overrides the timestamp source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// All returns the full checkpoints document.
func (s *Store) All(ctx context.Context) (models.CheckpointDocument, error) {
	doc := models.NewCheckpointDocument()
	if _, err := s.docs.Read(ctx, DocKey, &doc); err != nil {
		return models.CheckpointDocument{}, err
	}
	return doc, nil
}

// CreateProject copies the project's latest history entry into its
// checkpoint slot, overwriting any prior checkpoint unconditionally.
// Returns false when the project has no history yet.
func (s *Store) CreateProject(ctx context.Context, projectID, note string) (bool, error) {
	latest, ok, err := s.projects.Latest(ctx, projectID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	err = docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		ensureMaps(doc)
		doc.Projects[projectID] = models.Checkpoint{
			Timestamp: latest.Timestamp,
			Metrics:   latest.Metrics,
			Note:      note,
			MarkedAt:  s.now(),
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCategory copies the category's latest history entry into its
// checkpoint slot. Returns false when the category has no history yet.
func (s *Store) CreateCategory(ctx context.Context, category, note string) (bool, error) {
	latest, ok, err := s.categories.Latest(ctx, category)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	err = docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		ensureMaps(doc)
		doc.Categories[category] = models.Checkpoint{
			Timestamp: latest.Timestamp,
			Metrics:   latest.Metrics,
			Note:      note,
			MarkedAt:  s.now(),
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateClass computes and stores the baseline for one (class, modality)
// pair: the sum of the class's counts over the latest history entry of every
// project whose modality matches. A zero sum still creates the checkpoint,
// so the first return is always true unless listing or storage fails.
func (s *Store) CreateClass(ctx context.Context, className, modality, note string) (bool, error) {
	projects, err := s.lister.ListProjects(ctx)
	if err != nil {
		return false, err
	}
	assignments, err := s.assignments.ResolveAll(ctx, projects)
	if err != nil {
		return false, err
	}

	lookupKey := className
	if s.cfg.NormalizeClassLookup {
		lookupKey = classify.Normalize(className)
	}

	var totals models.ClassTotals
	for _, p := range projects {
		id := strconv.FormatInt(p.ID, 10)
		if assignments[id] != modality {
			continue
		}
		latest, ok, err := s.projects.Latest(ctx, id)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if metric, ok := latest.Metrics.Classes[lookupKey]; ok {
			totals.Images += metric.ImageCount
			totals.Annotations += metric.AnnotationCount
		}
	}

	now := s.now()
	err = docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		ensureMaps(doc)
		doc.Classes[models.ClassCheckpointKey(className, modality)] = models.ClassCheckpoint{
			Timestamp: now,
			Metrics:   totals,
			Note:      note,
			MarkedAt:  now,
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetProject fetches a project checkpoint. Missing checkpoints are reported
// via the second return, never as an error.
func (s *Store) GetProject(ctx context.Context, projectID string) (models.Checkpoint, bool, error) {
	doc, err := s.All(ctx)
	if err != nil {
		return models.Checkpoint{}, false, err
	}
	cp, ok := doc.Projects[projectID]
	return cp, ok, nil
}

// GetCategory fetches a category checkpoint.
func (s *Store) GetCategory(ctx context.Context, category string) (models.Checkpoint, bool, error) {
	doc, err := s.All(ctx)
	if err != nil {
		return models.Checkpoint{}, false, err
	}
	cp, ok := doc.Categories[category]
	return cp, ok, nil
}

// GetClass fetches a (class, modality) checkpoint.
func (s *Store) GetClass(ctx context.Context, className, modality string) (models.ClassCheckpoint, bool, error) {
	doc, err := s.All(ctx)
	if err != nil {
		return models.ClassCheckpoint{}, false, err
	}
	cp, ok := doc.Classes[models.ClassCheckpointKey(className, modality)]
	return cp, ok, nil
}

// UpdateProjectNote replaces the note on an existing project checkpoint and
// stamps updated_at, leaving metrics and marked_at untouched. Returns false
// when no checkpoint exists for the key.
func (s *Store) UpdateProjectNote(ctx context.Context, projectID, note string) (bool, error) {
	updated := false
	err := docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		cp, ok := doc.Projects[projectID]
		if !ok {
			return nil
		}
		now := s.now()
		cp.Note = note
		cp.UpdatedAt = &now
		doc.Projects[projectID] = cp
		updated = true
		return nil
	})
	return updated, err
}

// UpdateCategoryNote replaces the note on an existing category checkpoint.
func (s *Store) UpdateCategoryNote(ctx context.Context, category, note string) (bool, error) {
	updated := false
	err := docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		cp, ok := doc.Categories[category]
		if !ok {
			return nil
		}
		now := s.now()
		cp.Note = note
		cp.UpdatedAt = &now
		doc.Categories[category] = cp
		updated = true
		return nil
	})
	return updated, err
}

// UpdateClassNote replaces the note on an existing class checkpoint.
func (s *Store) UpdateClassNote(ctx context.Context, className, modality, note string) (bool, error) {
	updated := false
	err := docstore.Update(ctx, s.docs, DocKey, models.NewCheckpointDocument(), func(doc *models.CheckpointDocument) error {
		key := models.ClassCheckpointKey(className, modality)
		cp, ok := doc.Classes[key]
		if !ok {
			return nil
		}
		now := s.now()
		cp.Note = note
		cp.UpdatedAt = &now
		doc.Classes[key] = cp
		updated = true
		return nil
	})
	return updated, err
}

// ensureMaps re-initializes nil maps on documents loaded from older files.
func ensureMaps(doc *models.CheckpointDocument) {
	if doc.Projects == nil {
		doc.Projects = make(map[string]models.Checkpoint)
	}
	if doc.Categories == nil {
		doc.Categories = make(map[string]models.Checkpoint)
	}
	if doc.Classes == nil {
		doc.Classes = make(map[string]models.ClassCheckpoint)
	}
}
