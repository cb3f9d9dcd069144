// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"

	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/timeseries"
	"github.com/tomtom215/annolytics/internal/validation"
)

type rangeQuery struct {
	StartDate string `validate:"required,dateonly"`
	EndDate   string `validate:"required,dateonly"`
}

// TimeSeries answers a range query over the daily snapshots with
// day-over-day deltas applied. Callers pass either a preset via ?range=
// (24h, 7d, 30d) or an explicit ?start_date=&end_date= pair; explicit dates
// win when both are present. No parameters at all defaults to 7 days.
func (h *Handler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")

	if start == "" && end == "" {
		start, end = h.series.PresetRange(q.Get("range"))
	} else {
		rq := rangeQuery{StartDate: start, EndDate: end}
		if verr := validation.ValidateStruct(&rq); verr != nil {
			respondValidationError(w, verr)
			return
		}
		if start > end {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "start_date must not be after end_date", nil)
			return
		}
	}

	series, err := h.series.GetRange(r.Context(), start, end)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	series = timeseries.CalculateDailyDeltas(series)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"start_date": start,
		"end_date":   end,
		"series":     series,
	})
}

// BackfillTimeSeries reconstructs missing daily snapshots from stored
// project history. Days already recorded are never overwritten, so repeated
// runs are safe.
func (h *Handler) BackfillTimeSeries(w http.ResponseWriter, r *http.Request) {
	filled, err := h.series.Backfill(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"days_filled": filled})
}
