// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/annolytics/internal/models"
)

type categorySummary struct {
	Category      string                  `json:"category"`
	LatestMetrics *models.MetricsSnapshot `json:"latest_metrics,omitempty"`
	LastUpdated   *time.Time              `json:"last_updated,omitempty"`
}

// Categories returns every catalog category with its latest aggregated
// metrics. A category never aggregated has no metrics block.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries := make([]categorySummary, 0, len(h.catalog.Categories()))
	for _, category := range h.catalog.Categories() {
		summary := categorySummary{Category: category}
		latest, ok, err := h.categories.Latest(ctx, category)
		if err != nil {
			respondStorageError(w, err)
			return
		}
		if ok {
			metrics := latest.Metrics
			ts := latest.Timestamp
			summary.LatestMetrics = &metrics
			summary.LastUpdated = &ts
		}
		summaries = append(summaries, summary)
	}
	respondSuccess(w, http.StatusOK, summaries)
}

// CategoryHistory returns a category's full aggregated history, oldest
// first. Gaps are possible: cycles with no contributing classes append no
// entry.
func (h *Handler) CategoryHistory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	entries, err := h.categories.Get(r.Context(), category)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"history":  entries,
	})
}

// CategoryLatest returns a category's most recent aggregated entry.
func (h *Handler) CategoryLatest(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	latest, ok, err := h.categories.Latest(r.Context(), category)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "category has no history", nil)
		return
	}
	respondSuccess(w, http.StatusOK, latest)
}
