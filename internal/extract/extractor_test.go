// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package extract

import (
	"testing"

	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

func labeledTask(id int64, labels ...string) lsmodels.Task {
	results := make([]lsmodels.AnnotationResult, 0, len(labels))
	for _, label := range labels {
		results = append(results, lsmodels.AnnotationResult{
			Type:  "rectanglelabels",
			Value: lsmodels.ResultValue{RectangleLabels: []string{label}},
		})
	}
	return lsmodels.Task{
		ID:          id,
		Annotations: []lsmodels.Annotation{{Result: results}},
	}
}

func TestMetrics_EmptyTaskList(t *testing.T) {
	snapshot := Metrics(nil)
	if len(snapshot.Classes) != 0 {
		t.Errorf("expected no classes, got %v", snapshot.Classes)
	}
	if snapshot.Summary.TotalImages != 0 || snapshot.Summary.AnnotatedImages != 0 {
		t.Errorf("expected zero summary, got %+v", snapshot.Summary)
	}
}

func TestMetrics_NumberedLabelsMerge(t *testing.T) {
	snapshot := Metrics([]lsmodels.Task{
		labeledTask(1, "Cavity 1", "Cavity 2"),
		labeledTask(2, "cavity"),
	})

	metric, ok := snapshot.Classes["cavity"]
	if !ok {
		t.Fatalf("expected merged class %q, got %v", "cavity", snapshot.Classes)
	}
	// Two labels on task 1 count as one image but two annotations.
	if metric.ImageCount != 2 {
		t.Errorf("ImageCount = %d, want 2", metric.ImageCount)
	}
	if metric.AnnotationCount != 3 {
		t.Errorf("AnnotationCount = %d, want 3", metric.AnnotationCount)
	}
}

func TestMetrics_ImageCountIsDistinctTasks(t *testing.T) {
	// Five cavity regions in one image: one image, five annotations.
	snapshot := Metrics([]lsmodels.Task{
		labeledTask(1, "cavity", "cavity", "cavity", "cavity", "cavity"),
	})
	metric := snapshot.Classes["cavity"]
	if metric.ImageCount != 1 {
		t.Errorf("ImageCount = %d, want 1", metric.ImageCount)
	}
	if metric.AnnotationCount != 5 {
		t.Errorf("AnnotationCount = %d, want 5", metric.AnnotationCount)
	}
}

func TestMetrics_SummaryCountsUnlabeledAnnotations(t *testing.T) {
	tasks := []lsmodels.Task{
		labeledTask(1, "cavity"),
		// Annotated but with no recognized label list populated.
		{ID: 2, Annotations: []lsmodels.Annotation{{Result: []lsmodels.AnnotationResult{{Type: "choices"}}}}},
		// No annotations at all.
		{ID: 3},
	}
	snapshot := Metrics(tasks)

	if snapshot.Summary.TotalImages != 3 {
		t.Errorf("TotalImages = %d, want 3", snapshot.Summary.TotalImages)
	}
	if snapshot.Summary.AnnotatedImages != 2 {
		t.Errorf("AnnotatedImages = %d, want 2", snapshot.Summary.AnnotatedImages)
	}
	if snapshot.Summary.UnannotatedImages != 1 {
		t.Errorf("UnannotatedImages = %d, want 1", snapshot.Summary.UnannotatedImages)
	}
}

func TestMetrics_AllLabelListVariants(t *testing.T) {
	tests := []struct {
		name  string
		value lsmodels.ResultValue
	}{
		{"labels", lsmodels.ResultValue{Labels: []string{"lesion"}}},
		{"rectanglelabels", lsmodels.ResultValue{RectangleLabels: []string{"lesion"}}},
		{"polygonlabels", lsmodels.ResultValue{PolygonLabels: []string{"lesion"}}},
		{"brushlabels", lsmodels.ResultValue{BrushLabels: []string{"lesion"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := Metrics([]lsmodels.Task{{
				ID: 1,
				Annotations: []lsmodels.Annotation{{
					Result: []lsmodels.AnnotationResult{{Value: tt.value}},
				}},
			}})
			if snapshot.Classes["lesion"].AnnotationCount != 1 {
				t.Errorf("%s labels not counted: %v", tt.name, snapshot.Classes)
			}
		})
	}
}
