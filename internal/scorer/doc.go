// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package scorer is the client for the external machine-learning scoring service.
//
// The service is a black box that accepts a user's liked movies and answers with
// scored movie ids:
//
//	POST /ml/recommend  {"user_id": "...", "liked_movies": [...]}
//	                 -> {"recommendations": [{"movie_id", "title", "score", "reason", "source"}]}
//	GET  /ml/health  -> {"status": "healthy", ...}
//
// Every returned recommendation is enriched with movie details from the metadata
// provider through a bounded fan-out. A failed lookup keeps a minimal record built
// from the scorer's own title and reason, so no candidate is dropped for lack of
// metadata. Transport failures, timeouts and non-2xx answers wrap ErrUnavailable.
//
// Health never fails: an unreachable service is reported as an unhealthy
// models.ScorerHealth.
package scorer
