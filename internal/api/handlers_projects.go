// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/refresh"
	"github.com/tomtom215/annolytics/internal/validation"
)

// projectSummary is one row of the project listing.
type projectSummary struct {
	ID            int64                   `json:"id"`
	Title         string                  `json:"title"`
	Modality      string                  `json:"modality"`
	LatestMetrics *models.MetricsSnapshot `json:"latest_metrics,omitempty"`
	LastRefreshed *time.Time              `json:"last_refreshed,omitempty"`
}

// ListProjects returns every project with its modality and latest cached
// metrics attached. Projects never refreshed have no metrics block.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := h.client.ListProjects(ctx)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	assignments, err := h.assignments.ResolveAll(ctx, projects)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	summaries := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		id := strconv.FormatInt(p.ID, 10)
		summary := projectSummary{
			ID:       p.ID,
			Title:    p.Title,
			Modality: assignments[id],
		}
		latest, ok, err := h.projects.Latest(ctx, id)
		if err != nil {
			respondStorageError(w, err)
			return
		}
		if ok {
			metrics := latest.Metrics
			ts := latest.Timestamp
			summary.LatestMetrics = &metrics
			summary.LastRefreshed = &ts
		}
		summaries = append(summaries, summary)
	}
	respondSuccess(w, http.StatusOK, summaries)
}

// ProjectHistory returns a project's full stored history, oldest first.
func (h *Handler) ProjectHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.projects.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"project_id": id,
		"history":    entries,
	})
}

// RefreshProject runs the fetch-extract-append-notify pipeline for one
// project synchronously and returns the extracted snapshot.
func (h *Handler) RefreshProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "project id must be numeric", nil)
		return
	}

	snapshot, err := h.refresher.RefreshProject(r.Context(), id)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"project_id": id,
		"metrics":    snapshot,
	})
}

// RefreshAll starts an asynchronous bulk refresh and returns its job id
// immediately. Eventual per-project failures surface only through the
// progress endpoint and server logs.
func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	jobID, err := h.refresher.RefreshAll(r.Context())
	if errors.Is(err, refresh.ErrRefreshRunning) {
		respondError(w, http.StatusConflict, models.ErrCodeConflict, "a bulk refresh is already running", nil)
		return
	}
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondSuccess(w, http.StatusAccepted, map[string]interface{}{"job_id": jobID})
}

// RefreshProgress returns a snapshot of the current (or last finished) bulk
// refresh run.
func (h *Handler) RefreshProgress(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.refresher.Progress())
}

type modalityRequest struct {
	Modality string `json:"modality" validate:"required,modality"`
}

// SetProjectModality stores a user override for a project's modality. The
// override is authoritative from then on; auto-detection never replaces it.
func (h *Handler) SetProjectModality(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req modalityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	if err := h.assignments.Override(r.Context(), id, req.Modality); err != nil {
		if errors.Is(err, classify.ErrInvalidModality) {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "unknown modality", nil)
			return
		}
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"project_id": id,
		"modality":   req.Modality,
	})
}

// Modalities returns the closed modality set and the stored per-project
// assignments.
func (h *Handler) Modalities(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.All(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"modalities":  classify.Modalities,
		"assignments": assignments,
	})
}
