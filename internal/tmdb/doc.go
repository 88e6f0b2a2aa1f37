// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package tmdb is the movie metadata provider backed by The Movie Database (TMDB) v3 API.

The Client covers the endpoints the service needs: movie details, similar movies,
popular, top rated, now playing, upcoming, search and the genre catalog. Responses are
normalized into models.Movie:

  - poster paths become absolute w500 image URLs, backdrops w1280
  - list results carry genre_ids only; they are resolved into named genres using the
    genre catalog, which is fetched once on first use
  - missing fields decode to zero values, never nil slices

# Resilience

Outbound requests pass through a token bucket limiter (golang.org/x/time/rate). HTTP 429
responses are retried with exponential backoff, honoring Retry-After. Error bodies are read
through a 64KB limit and returned inside *APIError. A 404 matches ErrNotFound:

	movie, err := client.Details(ctx, 603)
	if errors.Is(err, tmdb.ErrNotFound) {
	    // unknown id
	}

CircuitBreakerClient wraps a Client with a gobreaker circuit. Not-found answers are
counted as successes so a run of unknown ids cannot open the circuit.

# Caching

When a cache.Store is configured, successful response bodies are cached by endpoint and
query parameters. The API key never becomes part of a cache key.
*/
package tmdb
