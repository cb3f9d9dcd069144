// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// SummaryKey is the reserved key under which the extraction summary is stored
// inside a serialized MetricsSnapshot. It is never treated as a class name
// during aggregation.
const SummaryKey = "_summary"

// ClassMetric holds the derived counts for one normalized annotation class.
//
// ImageCount is the number of distinct images containing at least one
// annotation of the class; AnnotationCount is the total number of annotation
// instances across all images. Both are always >= 0.
type ClassMetric struct {
	ImageCount      int `json:"image_count"`
	AnnotationCount int `json:"annotation_count"`
}

// Summary describes one extraction pass over a project's task list.
// UnannotatedImages is always TotalImages - AnnotatedImages.
type Summary struct {
	TotalImages       int `json:"total_images"`
	AnnotatedImages   int `json:"annotated_images"`
	UnannotatedImages int `json:"unannotated_images"`
}

// MetricsSnapshot is one extraction result: a mapping from normalized class
// name to ClassMetric plus a summary block. On disk the summary lives inside
// the same JSON object under the reserved "_summary" key, so the type
// implements custom (un)marshaling to flatten and unflatten that shape.
type MetricsSnapshot struct {
	Classes map[string]ClassMetric
	Summary Summary
}

// NewMetricsSnapshot returns an empty snapshot with an initialized class map.
func NewMetricsSnapshot() MetricsSnapshot {
	return MetricsSnapshot{Classes: make(map[string]ClassMetric)}
}

// ClassNames returns the class names in the snapshot, sorted for stable
// iteration. The reserved summary key is never present here.
func (s MetricsSnapshot) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for name := range s.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the snapshot into a single JSON object with class
// names as keys and the summary under "_summary".
func (s MetricsSnapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Classes)+1)
	for name, metric := range s.Classes {
		if name == SummaryKey {
			return nil, fmt.Errorf("class name collides with reserved key %q", SummaryKey)
		}
		raw, err := json.Marshal(metric)
		if err != nil {
			return nil, fmt.Errorf("marshal class %q: %w", name, err)
		}
		out[name] = raw
	}
	raw, err := json.Marshal(s.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	out[SummaryKey] = raw
	return json.Marshal(out)
}

// UnmarshalJSON splits the flat on-disk object back into class metrics and
// the summary block.
func (s *MetricsSnapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Classes = make(map[string]ClassMetric, len(raw))
	s.Summary = Summary{}
	for key, val := range raw {
		if key == SummaryKey {
			if err := json.Unmarshal(val, &s.Summary); err != nil {
				return fmt.Errorf("unmarshal summary: %w", err)
			}
			continue
		}
		var metric ClassMetric
		if err := json.Unmarshal(val, &metric); err != nil {
			return fmt.Errorf("unmarshal class %q: %w", key, err)
		}
		s.Classes[key] = metric
	}
	return nil
}

// ClassTotals is the compact {images, annotations} pair used by class
// checkpoints and daily time-series entries.
type ClassTotals struct {
	Images      int `json:"images"`
	Annotations int `json:"annotations"`
}

// Add accumulates another total into this one.
func (t *ClassTotals) Add(other ClassTotals) {
	t.Images += other.Images
	t.Annotations += other.Annotations
}
