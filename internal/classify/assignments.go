// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package classify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/annolytics/internal/docstore"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// AssignmentsDocKey is the persisted document holding project -> modality
// assignments.
const AssignmentsDocKey = "modality_assignments"

// ErrInvalidModality is returned when an override names a tag outside the
// closed modality set.
var ErrInvalidModality = fmt.Errorf("modality must be one of %v", Modalities)

// AssignmentStore persists per-project modality assignments. A project's
// modality is auto-detected from its title exactly once and then stored;
// scheduled refreshes only fill in missing assignments and never overwrite
// stored ones. A user override is authoritative from then on.
type AssignmentStore struct {
	docs     *docstore.Store
	detector *ModalityDetector
}

// NewAssignmentStore builds an assignment store over the given document
// store and detector.
func NewAssignmentStore(docs *docstore.Store, detector *ModalityDetector) *AssignmentStore {
	return &AssignmentStore{docs: docs, detector: detector}
}

// All returns every stored assignment, keyed by project id.
func (s *AssignmentStore) All(ctx context.Context) (map[string]string, error) {
	assignments := make(map[string]string)
	if _, err := s.docs.Read(ctx, AssignmentsDocKey, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Resolve returns the modality for one project: the stored assignment when
// present, otherwise the title-detected modality, which is persisted before
// returning.
func (s *AssignmentStore) Resolve(ctx context.Context, projectID, title string) (string, error) {
	var resolved string
	err := docstore.Update(ctx, s.docs, AssignmentsDocKey, map[string]string{}, func(doc *map[string]string) error {
		if stored, ok := (*doc)[projectID]; ok {
			resolved = stored
			return nil
		}
		resolved = s.detector.Detect(title)
		(*doc)[projectID] = resolved
		return nil
	})
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// ResolveAll fills in missing assignments for every listed project in a
// single read-modify-write cycle and returns the full project -> modality
// map. Stored assignments are never overwritten.
func (s *AssignmentStore) ResolveAll(ctx context.Context, projects []lsmodels.Project) (map[string]string, error) {
	resolved := make(map[string]string, len(projects))
	err := docstore.Update(ctx, s.docs, AssignmentsDocKey, map[string]string{}, func(doc *map[string]string) error {
		for _, p := range projects {
			id := strconv.FormatInt(p.ID, 10)
			if stored, ok := (*doc)[id]; ok {
				resolved[id] = stored
				continue
			}
			tag := s.detector.Detect(p.Title)
			(*doc)[id] = tag
			resolved[id] = tag
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Override stores a user-supplied modality for a project. The value must be
// a member of the closed modality set; the override wins over any detected
// assignment from then on.
func (s *AssignmentStore) Override(ctx context.Context, projectID, modality string) error {
	if !IsValidModality(modality) {
		return ErrInvalidModality
	}
	return docstore.Update(ctx, s.docs, AssignmentsDocKey, map[string]string{}, func(doc *map[string]string) error {
		(*doc)[projectID] = modality
		return nil
	})
}
