// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// maxQueryLength bounds search queries.
const maxQueryLength = 200

type pageFetcher func(ctx context.Context, page int) (*models.MoviePage, error)

// respondPage serves one page of a movie list.
func respondPage(w http.ResponseWriter, r *http.Request, fetch pageFetcher) {
	start := time.Now()
	page, ok := pageParam(w, r)
	if !ok {
		return
	}

	result, err := fetch(r.Context(), page)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       len(result.Results),
			Page:        result.Page,
		},
	})
}

// PopularMovies handles GET /api/v1/movies/popular.
func (h *Handler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	respondPage(w, r, h.catalog.Popular)
}

// TopRatedMovies handles GET /api/v1/movies/top-rated.
func (h *Handler) TopRatedMovies(w http.ResponseWriter, r *http.Request) {
	respondPage(w, r, h.catalog.TopRated)
}

// NowPlayingMovies handles GET /api/v1/movies/now-playing.
func (h *Handler) NowPlayingMovies(w http.ResponseWriter, r *http.Request) {
	respondPage(w, r, h.catalog.NowPlaying)
}

// UpcomingMovies handles GET /api/v1/movies/upcoming.
func (h *Handler) UpcomingMovies(w http.ResponseWriter, r *http.Request) {
	respondPage(w, r, h.catalog.Upcoming)
}

// SearchMovies handles GET /api/v1/movies/search?q=.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter q is required", nil)
		return
	}
	if len(query) > maxQueryLength {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter q is too long", nil)
		return
	}
	respondPage(w, r, func(ctx context.Context, page int) (*models.MoviePage, error) {
		return h.catalog.Search(ctx, query, page)
	})
}

// Genres handles GET /api/v1/movies/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	genres, err := h.catalog.Genres(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, genres, start)
}

// MovieDetails handles GET /api/v1/movies/{movieID}.
func (h *Handler) MovieDetails(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	movie, err := h.catalog.Details(r.Context(), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, movie, start)
}

// SimilarMovies handles GET /api/v1/movies/{movieID}/similar.
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	respondPage(w, r, func(ctx context.Context, page int) (*models.MoviePage, error) {
		return h.catalog.Similar(ctx, movieID, page)
	})
}
