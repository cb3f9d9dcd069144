// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/refresh"
)

type schedulerRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

// SchedulerConfig returns the persisted scheduler configuration.
func (h *Handler) SchedulerConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.scheduler.GetConfig(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, cfg)
}

// UpdateSchedulerConfig persists new scheduler settings. They take effect
// on the scheduler's next tick without a restart.
func (h *Handler) UpdateSchedulerConfig(w http.ResponseWriter, r *http.Request) {
	var req schedulerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cfg, err := h.scheduler.SetConfig(r.Context(), req.Enabled, req.IntervalMinutes)
	if errors.Is(err, refresh.ErrInvalidInterval) {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "interval_minutes must be at least 1", nil)
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, cfg)
}

// SchedulerLog returns recent scheduler log lines, oldest first. The limit
// query parameter caps the count; default 100, maximum 1000.
func (h *Handler) SchedulerLog(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "limit must be between 1 and 1000", nil)
			return
		}
		limit = parsed
	}

	lines, err := h.scheduler.Log(r.Context(), limit)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"lines": lines})
}
