// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/validation"
)

// respondSuccess writes the standard success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	writeJSON(w, status, models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondValidationError translates a struct validation failure.
func respondValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// respondStorageError maps a storage failure to a 500 without leaking
// internals beyond the logged error.
func respondStorageError(w http.ResponseWriter, err error) {
	logging.Error().Err(err).Msg("Storage operation failed")
	respondError(w, http.StatusInternalServerError, models.ErrCodeStorage, "storage operation failed", nil)
}

// respondUpstreamError maps an annotation tool failure to a 502.
func respondUpstreamError(w http.ResponseWriter, err error) {
	logging.Error().Err(err).Msg("Upstream request failed")
	respondError(w, http.StatusBadGateway, models.ErrCodeUpstream, "annotation tool request failed", nil)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}
