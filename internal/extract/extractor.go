// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package extract turns a project's raw task list into normalized per-class
// metrics.
//
// Counting rules:
//
//   - A task counts toward annotated_images when it has at least one
//     annotation, even if none of its regions carries a recognized label.
//   - annotation_count increments once per label occurrence.
//   - image_count is the size of the per-class set of contributing task ids,
//     so repeated labels of one class in the same image count once.
package extract

import (
	"strconv"

	"github.com/tomtom215/annolytics/internal/classify"
	"github.com/tomtom215/annolytics/internal/models"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// Metrics computes a MetricsSnapshot from a project's tasks. An empty task
// list yields an all-zero summary and no class keys.
func Metrics(tasks []lsmodels.Task) models.MetricsSnapshot {
	snapshot := models.NewMetricsSnapshot()
	annotationCounts := make(map[string]int)
	imageSets := make(map[string]map[string]struct{})

	annotated := 0
	for _, task := range tasks {
		if len(task.Annotations) == 0 {
			continue
		}
		annotated++

		taskID := strconv.FormatInt(task.ID, 10)
		for _, annotation := range task.Annotations {
			for _, result := range annotation.Result {
				for _, label := range result.Value.ActiveLabels() {
					class := classify.Normalize(label)
					if class == "" {
						continue
					}
					annotationCounts[class]++
					if imageSets[class] == nil {
						imageSets[class] = make(map[string]struct{})
					}
					imageSets[class][taskID] = struct{}{}
				}
			}
		}
	}

	for class, count := range annotationCounts {
		snapshot.Classes[class] = models.ClassMetric{
			ImageCount:      len(imageSets[class]),
			AnnotationCount: count,
		}
	}
	snapshot.Summary = models.Summary{
		TotalImages:       len(tasks),
		AnnotatedImages:   annotated,
		UnannotatedImages: len(tasks) - annotated,
	}
	return snapshot
}
