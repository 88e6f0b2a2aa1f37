// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"time"
)

// APIResponse is the envelope used by all HTTP endpoints.
//
// Status is "success" (see Data) or "error" (see Error). Recommendation endpoints
// also fill Sources and Message; the replacement endpoint fills Debug.
//
//	{
//	  "status": "success",
//	  "data": [...],
//	  "sources": {"content_based": 31, "external_ml": 10, "hybrid": 38},
//	  "message": "Hybrid recommendations (31 content-based + 10 external)",
//	  "metadata": {"timestamp": "2026-10-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string        `json:"status"`
	Data     interface{}   `json:"data"`
	Message  string        `json:"message,omitempty"`
	Sources  *SourceCounts `json:"sources,omitempty"`
	Debug    interface{}   `json:"debug,omitempty"`
	Metadata Metadata      `json:"metadata"`
	Error    *APIError     `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Count       int       `json:"count,omitempty"`
	Page        int       `json:"page,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid path, query or body parameters
//   - NOT_FOUND: resource doesn't exist
//   - NO_REPLACEMENT: no eligible replacement movie remains
//   - UNAUTHORIZED / FORBIDDEN: missing or mismatched bearer token
//   - UPSTREAM_ERROR: metadata provider failure on pass-through endpoints
//   - INTERNAL_ERROR: profile store or unexpected failure
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
