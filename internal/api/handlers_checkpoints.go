// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/validation"
)

type noteRequest struct {
	Note string `json:"note"`
}

type classCheckpointRequest struct {
	ClassName string `json:"class_name" validate:"required"`
	Modality  string `json:"modality" validate:"required,modality"`
	Note      string `json:"note"`
}

// Checkpoints returns the full checkpoint document: project, category, and
// class checkpoints.
func (h *Handler) Checkpoints(w http.ResponseWriter, r *http.Request) {
	doc, err := h.checkpoints.All(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, doc)
}

// CreateProjectCheckpoint captures the project's latest history entry as its
// new baseline and clears the project's stale notifications.
func (h *Handler) CreateProjectCheckpoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.checkpoints.CreateProject(r.Context(), id, req.Note)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !created {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "project has no history to checkpoint", nil)
		return
	}

	// Old notifications compare against the replaced baseline and are no
	// longer meaningful.
	if err := h.notifier.ClearProject(r.Context(), id); err != nil {
		logging.Warn().Err(err).Str("project_id", id).Msg("Failed to clear stale notifications")
	}

	cp, _, err := h.checkpoints.GetProject(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, cp)
}

// GetProjectCheckpoint fetches one project checkpoint.
func (h *Handler) GetProjectCheckpoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cp, ok, err := h.checkpoints.GetProject(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no checkpoint for project", nil)
		return
	}
	respondSuccess(w, http.StatusOK, cp)
}

// UpdateProjectCheckpointNote replaces the note on an existing project
// checkpoint, leaving its metrics untouched.
func (h *Handler) UpdateProjectCheckpointNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.checkpoints.UpdateProjectNote(r.Context(), id, req.Note)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no checkpoint for project", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"project_id": id, "note": req.Note})
}

// CreateCategoryCheckpoint captures the category's latest history entry as
// its new baseline and clears the category's stale notifications.
func (h *Handler) CreateCategoryCheckpoint(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.checkpoints.CreateCategory(r.Context(), category, req.Note)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !created {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "category has no history to checkpoint", nil)
		return
	}

	if err := h.notifier.ClearCategory(r.Context(), category); err != nil {
		logging.Warn().Err(err).Str("category", category).Msg("Failed to clear stale notifications")
	}

	cp, _, err := h.checkpoints.GetCategory(r.Context(), category)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, cp)
}

// UpdateCategoryCheckpointNote replaces the note on an existing category
// checkpoint.
func (h *Handler) UpdateCategoryCheckpointNote(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.checkpoints.UpdateCategoryNote(r.Context(), category, req.Note)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no checkpoint for category", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"category": category, "note": req.Note})
}

// CreateClassCheckpoint computes and stores the baseline for one
// (class, modality) pair. A zero sum still creates the checkpoint.
func (h *Handler) CreateClassCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req classCheckpointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	if _, err := h.checkpoints.CreateClass(r.Context(), req.ClassName, req.Modality, req.Note); err != nil {
		respondStorageError(w, err)
		return
	}
	cp, _, err := h.checkpoints.GetClass(r.Context(), req.ClassName, req.Modality)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, cp)
}

// UpdateClassCheckpointNote replaces the note on an existing class
// checkpoint.
func (h *Handler) UpdateClassCheckpointNote(w http.ResponseWriter, r *http.Request) {
	var req classCheckpointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	updated, err := h.checkpoints.UpdateClassNote(r.Context(), req.ClassName, req.Modality, req.Note)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !updated {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no checkpoint for class", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"class_name": req.ClassName,
		"modality":   req.Modality,
		"note":       req.Note,
	})
}
