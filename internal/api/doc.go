// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP surface of Marquee on a chi router.

Every response uses the models.APIResponse envelope. Personal recommendations
add sources and message; replacements add message and debug.

Route groups:

  - /health/live, /health/ready: probes (readiness pings the profile store)
  - /metrics: Prometheus exposition
  - /api/v1/movies/...: metadata pass-through (popular, top rated, now playing,
    upcoming, search, genres, details, similar)
  - /api/v1/recommendations/scorer/health: external scorer reachability
  - /api/v1/users/{userID}/...: recommendations, replacement, likes, watched,
    watchlist and per-movie status, guarded by auth.Middleware

Middleware order: request id and access log, RealIP, Recoverer, CORS and
security headers globally; httprate limits and Prometheus metrics on /api/v1;
a stricter write limit on profile mutations.

Error mapping:

  - request validation and profile.ErrInvalidInput: 400 VALIDATION_ERROR
  - profile.ErrAlreadyWatched: 400 ALREADY_WATCHED
  - recommend.ErrNoReplacement: 404 NO_REPLACEMENT
  - tmdb.ErrNotFound: 404 NOT_FOUND
  - open metadata circuit breaker: 503 UPSTREAM_UNAVAILABLE
  - other metadata provider errors: 502 UPSTREAM_ERROR
  - anything else, including profile store failures: 500 INTERNAL_ERROR

Example:

	handler, err := api.NewHandler(metadata, engine, profiles)
	if err != nil {
	    return err
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)), authMW)
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Setup()}
*/
package api
