// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import "time"

// Notification types.
const (
	NotificationTypeProject  = "project"
	NotificationTypeCategory = "category"
)

// Notification is a structured growth alert: a class's current image count
// exceeded its checkpoint baseline by at least the configured threshold.
// Exactly one of ProjectID or Category is set, according to Type.
type Notification struct {
	Type            string    `json:"type"`
	ProjectID       string    `json:"project_id,omitempty"`
	Category        string    `json:"category,omitempty"`
	ClassName       string    `json:"class_name"`
	IncreasePct     float64   `json:"increase_pct"`
	CurrentCount    int       `json:"current_count"`
	CheckpointCount int       `json:"checkpoint_count"`
	CheckpointDate  time.Time `json:"checkpoint_date"`
	Timestamp       time.Time `json:"timestamp"`
}

// EntityID returns the owning entity key used for de-duplication:
// the project id for project notifications, the category name otherwise.
func (n Notification) EntityID() string {
	if n.Type == NotificationTypeProject {
		return n.ProjectID
	}
	return n.Category
}
