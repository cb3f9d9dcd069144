// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/annolytics/internal/metrics"
	"github.com/tomtom215/annolytics/internal/models"
)

// Notifications returns all stored growth notifications in insertion order.
// Indices in this list are the handles for dismissal.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifier.List(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	metrics.ActiveNotifications.Set(float64(len(list)))
	respondSuccess(w, http.StatusOK, list)
}

// DismissNotification removes the notification at the given list index.
// Later entries shift down one position, so clients must re-fetch before
// dismissing again.
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "notification index must be an integer", nil)
		return
	}

	dismissed, err := h.notifier.Dismiss(r.Context(), index)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !dismissed {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "no notification at that index", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"dismissed": index})
}
