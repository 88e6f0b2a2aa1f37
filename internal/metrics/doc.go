// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Upstream Metrics:
  - tmdb_requests_total: Catalog requests (counter)
    Labels: endpoint, result
  - tmdb_request_duration_seconds: Catalog latency (histogram)
  - scorer_requests_total: External scorer calls (counter)
    Labels: operation, result
  - scorer_request_duration_seconds: External scorer latency (histogram)

Cache Metrics:
  - catalog_cache_hits_total / catalog_cache_misses_total (counter)
    Labels: backend

Recommendation Metrics:
  - recommendations_served_total: Candidates returned (counter)
    Labels: source
  - recommendation_duration_seconds: End-to-end latency (histogram)
    Labels: operation
  - recommendation_replacements_total: Replacement picks (counter)
    Labels: selection_type
  - recommendation_fallbacks_total: Fallback responses (counter)
    Labels: reason

Profile and Event Metrics:
  - profile_operations_total (counter) Labels: operation, result
  - profile_events_published_total (counter) Labels: type
  - profile_events_processed_total (counter) Labels: type, result

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total (counter) Labels: name, result
  - circuit_breaker_consecutive_failures (gauge)
  - circuit_breaker_state_transitions_total (counter)
*/
package metrics
