// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Catalog (TMDB) Metrics
	TMDBRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmdb_requests_total",
			Help: "Total number of movie catalog requests",
		},
		[]string{"endpoint", "result"}, // result: "success", "not_found", "error"
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tmdb_request_duration_seconds",
			Help:    "Movie catalog request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog cache misses",
		},
		[]string{"backend"},
	)

	// External Scorer Metrics
	ScorerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scorer_requests_total",
			Help: "Total number of external scorer calls",
		},
		[]string{"operation", "result"},
	)

	ScorerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scorer_request_duration_seconds",
			Help:    "External scorer call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation candidates returned",
		},
		[]string{"source"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	ReplacementSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_replacements_total",
			Help: "Total number of replacement picks by selection type",
		},
		[]string{"selection_type"}, // "genre_match", "random", "none"
	)

	RecommendationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_fallbacks_total",
			Help: "Total number of fallback recommendation responses",
		},
		[]string{"reason"}, // "no_likes", "scorer_unavailable"
	)

	// Profile Metrics
	ProfileOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_operations_total",
			Help: "Total number of profile store operations",
		},
		[]string{"operation", "result"},
	)

	// Profile Event Metrics
	ProfileEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_events_published_total",
			Help: "Total number of profile events published",
		},
		[]string{"type"},
	)

	ProfileEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_events_processed_total",
			Help: "Total number of profile events processed by handlers",
		},
		[]string{"type", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordTMDBRequest records a catalog call. notFound distinguishes a 404
// from a transport or server failure.
func RecordTMDBRequest(endpoint string, duration time.Duration, err error, notFound bool) {
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	TMDBRequestsTotal.WithLabelValues(endpoint, resultLabel(err, notFound)).Inc()
}

// RecordCacheLookup records a catalog cache hit or miss.
func RecordCacheLookup(backend string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(backend).Inc()
		return
	}
	CacheMisses.WithLabelValues(backend).Inc()
}

// RecordScorerRequest records an external scorer call.
func RecordScorerRequest(operation string, duration time.Duration, err error) {
	ScorerRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	ScorerRequestsTotal.WithLabelValues(operation, resultLabel(err, false)).Inc()
}

// RecordRecommendations counts served candidates grouped by source.
func RecordRecommendations(operation string, duration time.Duration, bySource map[string]int) {
	RecommendationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	for source, n := range bySource {
		RecommendationsServed.WithLabelValues(source).Add(float64(n))
	}
}

// RecordReplacement records which branch picked a replacement.
func RecordReplacement(selectionType string) {
	ReplacementSelections.WithLabelValues(selectionType).Inc()
}

// RecordFallback records a fallback response.
func RecordFallback(reason string) {
	RecommendationFallbacks.WithLabelValues(reason).Inc()
}

// RecordProfileOperation records a profile store operation.
func RecordProfileOperation(operation string, err error) {
	ProfileOperations.WithLabelValues(operation, resultLabel(err, false)).Inc()
}

// RecordEventPublished records a published profile event.
func RecordEventPublished(eventType string) {
	ProfileEventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventProcessed records a handled profile event.
func RecordEventProcessed(eventType string, err error) {
	ProfileEventsProcessed.WithLabelValues(eventType, resultLabel(err, false)).Inc()
}

func resultLabel(err error, notFound bool) string {
	switch {
	case notFound:
		return "not_found"
	case err != nil:
		return "error"
	default:
		return "success"
	}
}
