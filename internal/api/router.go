// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router. A nil chiMW uses DefaultChiMiddlewareConfig and
// a nil authMW leaves user routes open.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	if authMW == nil {
		authMW, _ = auth.NewMiddleware(auth.ModeNone, nil) //nolint:errcheck // none mode cannot fail
	}
	return &Router{handler: handler, chiMiddleware: chiMW, auth: authMW}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID)) // X-Request-ID and request-scoped logger
	r.Use(chiMiddleware(middleware.AccessLog))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(APISecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health and Metrics
	// ========================
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.With(router.chiMiddleware.RateLimitHealth()).Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// ========================
		// Movie Metadata
		// ========================
		r.Route("/movies", func(r chi.Router) {
			r.Get("/popular", h.PopularMovies)
			r.Get("/top-rated", h.TopRatedMovies)
			r.Get("/now-playing", h.NowPlayingMovies)
			r.Get("/upcoming", h.UpcomingMovies)
			r.Get("/search", h.SearchMovies)
			r.Get("/genres", h.Genres)
			r.Get("/{movieID}", h.MovieDetails)
			r.Get("/{movieID}/similar", h.SimilarMovies)
		})

		r.Get("/recommendations/scorer/health", h.ScorerHealth)

		// ========================
		// Per-User Endpoints
		// ========================
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Use(router.auth.RequireUser("userID"))

			r.Get("/recommendations", h.PersonalRecommendations)
			r.Get("/recommendations/replace/{movieID}", h.ReplaceRecommendation)
			r.Get("/movies/{movieID}/status", h.MovieStatus)

			r.Get("/likes", h.LikedMovies)
			r.Get("/watched", h.WatchedMovies)
			r.Get("/watchlist", h.Watchlist)

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())

				r.Post("/likes", h.LikeMovie)
				r.Post("/likes/backfill-genres", h.BackfillGenres)
				r.Delete("/likes/{movieID}", h.UnlikeMovie)

				r.Post("/watched", h.MarkWatched)
				r.Delete("/watched/{movieID}", h.RemoveWatched)

				r.Post("/watchlist", h.AddToWatchlist)
				r.Delete("/watchlist/{movieID}", h.RemoveFromWatchlist)
			})
		})
	})

	return r
}
