// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured detail.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - STORAGE_ERROR: Document store read/write failure
//   - UPSTREAM_ERROR: Annotation tool API failure
//   - NOT_FOUND: Resource doesn't exist
//   - CONFLICT: Operation refused in the current state
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used across the API surface.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeStorage    = "STORAGE_ERROR"
	ErrCodeUpstream   = "UPSTREAM_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
)
