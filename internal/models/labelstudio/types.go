// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package labelstudio holds the wire types for the Label Studio API.
// Only the fields the aggregation pipeline reads are modeled; the upstream
// payloads carry considerably more.
package labelstudio

// Project is one annotation project as returned by /api/projects.
type Project struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Task is one labeling task (one image) with its annotations.
type Task struct {
	ID          int64        `json:"id"`
	Annotations []Annotation `json:"annotations"`
}

// Annotation is one submitted annotation containing labeled regions.
type Annotation struct {
	Result []AnnotationResult `json:"result"`
}

// AnnotationResult is one labeled region. Exactly one of the label lists in
// Value is populated depending on the labeling tool used.
type AnnotationResult struct {
	Type  string      `json:"type"`
	Value ResultValue `json:"value"`
}

// ResultValue carries the label strings under one of the recognized
// annotation-type keys.
type ResultValue struct {
	Labels          []string `json:"labels,omitempty"`
	RectangleLabels []string `json:"rectanglelabels,omitempty"`
	PolygonLabels   []string `json:"polygonlabels,omitempty"`
	BrushLabels     []string `json:"brushlabels,omitempty"`
}

// ActiveLabels returns the first populated label list, checked in a fixed
// order. Whichever annotation type is populated is used; the rest are
// ignored.
func (v ResultValue) ActiveLabels() []string {
	switch {
	case len(v.RectangleLabels) > 0:
		return v.RectangleLabels
	case len(v.PolygonLabels) > 0:
		return v.PolygonLabels
	case len(v.BrushLabels) > 0:
		return v.BrushLabels
	case len(v.Labels) > 0:
		return v.Labels
	default:
		return nil
	}
}

// ProjectPage is one page of the paginated project listing.
type ProjectPage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Project `json:"results"`
}

// TaskPage is one page of the paginated task listing for a project.
type TaskPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Task  `json:"tasks"`
}
