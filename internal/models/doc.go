// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package models defines the domain types shared across the application:
// per-class metrics and snapshots, bounded history entries, checkpoints,
// notifications, growth reports, daily time-series points, and the standard
// API response envelope.
//
// All persisted documents are flat JSON; the types here carry the exact
// on-disk field names via struct tags so a document written by one component
// round-trips unchanged through another.
package models
