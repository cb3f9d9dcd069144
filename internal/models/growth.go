// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

// GrowthContributor is one project's share of a (class, modality) growth
// entry, with its own checkpoint comparison.
type GrowthContributor struct {
	ProjectID       string  `json:"project_id"`
	Title           string  `json:"title"`
	CurrentCount    int     `json:"current_count"`
	CheckpointCount int     `json:"checkpoint_count"`
	Growth          int     `json:"growth"`
	GrowthPct       float64 `json:"growth_pct"`
}

// GrowthEntry reports live growth of one (class, modality) pair against its
// checkpoint baseline. IsNew marks classes with no baseline at all, whose
// growth is pinned to exactly 100% rather than computed as a ratio.
type GrowthEntry struct {
	ClassName       string              `json:"class_name"`
	Modality        string              `json:"modality"`
	CurrentCount    int                 `json:"current_count"`
	CheckpointCount int                 `json:"checkpoint_count"`
	GrowthPct       float64             `json:"growth_pct"`
	IsNew           bool                `json:"is_new"`
	Projects        []GrowthContributor `json:"projects"`
}
