// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware components for the API.

Key Components:

  - RequestID: UUID-based request tracking, propagated into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge per route pattern
  - AccessLog: one structured zerolog line per request

All middleware uses the http.HandlerFunc signature. The api package adapts
them to chi's func(http.Handler) http.Handler with a small wrapper:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.AccessLog))

Metrics are labelled with the chi route pattern rather than the raw path so
user IDs and movie IDs do not explode label cardinality.
*/
package middleware
