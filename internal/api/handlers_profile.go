// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
)

// likeRequest is the body of POST /users/{userID}/likes.
type likeRequest struct {
	MovieID int64  `json:"movie_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"notblank,max=500"`
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
}

// watchedRequest is the body of POST /users/{userID}/watched.
type watchedRequest struct {
	MovieID int64          `json:"movie_id" validate:"required,gt=0"`
	Title   string         `json:"title" validate:"notblank,max=500"`
	Rating  *int           `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	Genres  []models.Genre `json:"genres,omitempty" validate:"omitempty,max=50"`
}

// watchlistRequest is the body of POST /users/{userID}/watchlist.
type watchlistRequest struct {
	MovieID int64  `json:"movie_id" validate:"required,gt=0"`
	Title   string `json:"title" validate:"notblank,max=500"`
}

// removalResult reports whether a DELETE changed anything.
type removalResult struct {
	MovieID int64 `json:"movie_id"`
	Removed bool  `json:"removed"`
}

// LikeMovie handles POST /api/v1/users/{userID}/likes.
func (h *Handler) LikeMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req likeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	lr := profile.LikeRequest{MovieID: req.MovieID, Title: req.Title}
	if req.Rating != nil {
		lr.Rating = *req.Rating
	}
	entry, err := h.profiles.Like(r.Context(), chi.URLParam(r, "userID"), lr)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, entry, start)
}

// UnlikeMovie handles DELETE /api/v1/users/{userID}/likes/{movieID}.
func (h *Handler) UnlikeMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	removed, err := h.profiles.Unlike(r.Context(), chi.URLParam(r, "userID"), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, removalResult{MovieID: movieID, Removed: removed}, start)
}

// LikedMovies handles GET /api/v1/users/{userID}/likes.
func (h *Handler) LikedMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	liked, err := h.profiles.Liked(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, liked, len(liked), start)
}

// BackfillGenres handles POST /api/v1/users/{userID}/likes/backfill-genres.
func (h *Handler) BackfillGenres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	updated, err := h.profiles.BackfillGenres(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]int{"updated": updated}, start)
}

// MarkWatched handles POST /api/v1/users/{userID}/watched.
func (h *Handler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req watchedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.profiles.MarkWatched(r.Context(), chi.URLParam(r, "userID"), profile.WatchRequest{
		MovieID: req.MovieID,
		Title:   req.Title,
		Rating:  req.Rating,
		Genres:  req.Genres,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, entry, start)
}

// RemoveWatched handles DELETE /api/v1/users/{userID}/watched/{movieID}.
func (h *Handler) RemoveWatched(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	removed, err := h.profiles.RemoveWatched(r.Context(), chi.URLParam(r, "userID"), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, removalResult{MovieID: movieID, Removed: removed}, start)
}

// WatchedMovies handles GET /api/v1/users/{userID}/watched.
func (h *Handler) WatchedMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	watched, err := h.profiles.Watched(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, watched, len(watched), start)
}

// AddToWatchlist handles POST /api/v1/users/{userID}/watchlist.
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req watchlistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	entry, err := h.profiles.AddToWatchlist(r.Context(), chi.URLParam(r, "userID"), req.MovieID, req.Title)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, entry, start)
}

// RemoveFromWatchlist handles DELETE /api/v1/users/{userID}/watchlist/{movieID}.
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	removed, err := h.profiles.RemoveFromWatchlist(r.Context(), chi.URLParam(r, "userID"), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, removalResult{MovieID: movieID, Removed: removed}, start)
}

// Watchlist handles GET /api/v1/users/{userID}/watchlist.
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	list, err := h.profiles.Watchlist(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, list, len(list), start)
}

// MovieStatus handles GET /api/v1/users/{userID}/movies/{movieID}/status.
func (h *Handler) MovieStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}
	status, err := h.profiles.Status(r.Context(), chi.URLParam(r, "userID"), movieID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, status, start)
}

func respondList(w http.ResponseWriter, data interface{}, count int, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       count,
		},
	})
}
