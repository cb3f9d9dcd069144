// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/tomtom215/annolytics/internal/models"
	"github.com/tomtom215/annolytics/internal/notify"
)

// KaggleDocKey is the persisted static reference dataset: per-class totals
// from an external public dataset, loaded once out of band.
const KaggleDocKey = "kaggle_dataset"

// combinedMetric joins one class's reference dataset totals with the
// current cross-project counts split by modality.
type combinedMetric struct {
	ClassName        string                        `json:"class_name"`
	Dataset          *models.ClassTotals           `json:"dataset,omitempty"`
	ByModality       map[string]models.ClassMetric `json:"by_modality"`
	TotalImages      int                           `json:"total_images"`
	TotalAnnotations int                           `json:"total_annotations"`
}

// Growth runs the live growth calculation against checkpoint baselines.
// The threshold query parameter filters results; it defaults to the
// notification threshold.
func (h *Handler) Growth(w http.ResponseWriter, r *http.Request) {
	threshold := notify.DefaultThresholdPct
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "threshold must be a non-negative number", nil)
			return
		}
		threshold = parsed
	}

	entries, err := h.growth.Calculate(r.Context(), threshold)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"threshold": threshold,
		"growth":    entries,
	})
}

// CombinedMetrics joins the persisted static reference dataset with the
// latest aggregated per-class counts by modality. Classes appearing in
// either source get a row; classes only in the reference dataset have empty
// modality buckets.
func (h *Handler) CombinedMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dataset := map[string]models.ClassTotals{}
	if _, err := h.docs.Read(ctx, KaggleDocKey, &dataset); err != nil {
		respondStorageError(w, err)
		return
	}

	aggregated, err := h.aggregator.ByModality(ctx)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	classes := make(map[string]struct{}, len(dataset)+len(aggregated))
	for class := range dataset {
		classes[class] = struct{}{}
	}
	for class := range aggregated {
		classes[class] = struct{}{}
	}

	combined := make([]combinedMetric, 0, len(classes))
	for class := range classes {
		row := combinedMetric{
			ClassName:  class,
			ByModality: map[string]models.ClassMetric{},
		}
		if totals, ok := dataset[class]; ok {
			t := totals
			row.Dataset = &t
		}
		for modality, metric := range aggregated[class] {
			row.ByModality[modality] = metric
			row.TotalImages += metric.ImageCount
			row.TotalAnnotations += metric.AnnotationCount
		}
		combined = append(combined, row)
	}
	sort.Slice(combined, func(i, j int) bool {
		return combined[i].ClassName < combined[j].ClassName
	})
	respondSuccess(w, http.StatusOK, combined)
}
