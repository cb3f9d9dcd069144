// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import "time"

// Checkpoint is a user-marked baseline snapshot for a project or category.
// Timestamp is the time of the history entry the metrics were copied from;
// MarkedAt is when the user created the checkpoint. UpdatedAt is set only
// when the note is edited and never changes metrics or MarkedAt.
type Checkpoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Metrics   MetricsSnapshot `json:"metrics"`
	Note      string          `json:"note"`
	MarkedAt  time.Time       `json:"marked_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ClassCheckpoint is the baseline for one (class, modality) pair. Its metrics
// are synthetic: the sum of the class's counts over the latest history entry
// of every project with a matching modality at checkpoint time.
type ClassCheckpoint struct {
	Timestamp time.Time   `json:"timestamp"`
	Metrics   ClassTotals `json:"metrics"`
	Note      string      `json:"note"`
	MarkedAt  time.Time   `json:"marked_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// ClassCheckpointKey builds the composite document key for a class
// checkpoint, e.g. "cavity_OPG".
func ClassCheckpointKey(className, modality string) string {
	return className + "_" + modality
}

// CheckpointDocument is the persisted "checkpoints" document: all three
// checkpoint kinds in one flat JSON file.
type CheckpointDocument struct {
	Projects   map[string]Checkpoint      `json:"projects"`
	Categories map[string]Checkpoint      `json:"categories"`
	Classes    map[string]ClassCheckpoint `json:"classes"`
}

// NewCheckpointDocument returns an empty document with initialized maps.
func NewCheckpointDocument() CheckpointDocument {
	return CheckpointDocument{
		Projects:   make(map[string]Checkpoint),
		Categories: make(map[string]Checkpoint),
		Classes:    make(map[string]ClassCheckpoint),
	}
}
