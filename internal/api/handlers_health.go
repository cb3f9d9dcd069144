// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"

	"github.com/tomtom215/annolytics/internal/history"
)

// Healthz reports liveness plus a readiness summary for the document store
// and the annotation tool. The store check is a real read; the upstream
// check only reports whether a base URL is configured, since probing the
// annotation tool on every health poll would burn its rate budget.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	storeStatus := "ok"
	probe := map[string]interface{}{}
	if _, err := h.docs.Read(r.Context(), history.ProjectDocKey, &probe); err != nil {
		storeStatus = "error"
	}

	upstreamStatus := "configured"
	if h.upstreamURL == "" {
		upstreamStatus = "not_configured"
	}

	status := http.StatusOK
	if storeStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, map[string]interface{}{
		"status":   "up",
		"store":    storeStatus,
		"upstream": upstreamStatus,
	})
}
