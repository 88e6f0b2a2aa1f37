// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// replaceQuery holds the query parameters of the replacement endpoint.
type replaceQuery struct {
	Exclude string `json:"exclude" validate:"omitempty,max=4096,idlist"`
}

// personalDebug is attached to personal recommendation responses.
type personalDebug struct {
	Fallback bool     `json:"fallback"`
	Affinity []string `json:"affinity,omitempty"`
}

// PersonalRecommendations handles GET /api/v1/users/{userID}/recommendations.
//
// The engine never fails because the scorer or a metadata call failed; it
// degrades and says so in message. Only profile store failures become errors.
func (h *Handler) PersonalRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	result, err := h.recommender.PersonalRecommendations(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("user_id", userID).
		Int("items", len(result.Items)).
		Bool("fallback", result.Fallback).
		Msg("personal recommendations served")

	sources := result.Sources
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:  "success",
		Data:    result.Items,
		Message: result.Message,
		Sources: &sources,
		Debug: personalDebug{
			Fallback: result.Fallback,
			Affinity: result.Affinity,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       len(result.Items),
		},
	})
}

// ReplaceRecommendation handles
// GET /api/v1/users/{userID}/recommendations/replace/{movieID}?exclude=1,2,3.
func (h *Handler) ReplaceRecommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	movieID, ok := movieIDParam(w, r)
	if !ok {
		return
	}

	q := replaceQuery{Exclude: r.URL.Query().Get("exclude")}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	exclude, err := validation.ParseIDList(q.Exclude)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	result, err := h.recommender.ReplaceRecommendation(r.Context(), userID, movieID, exclude...)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:  "success",
		Data:    result.Candidate,
		Message: result.Message,
		Debug:   result.Debug,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// ScorerHealth handles GET /api/v1/recommendations/scorer/health. It always
// answers 200; reachability is reported in the body.
func (h *Handler) ScorerHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, http.StatusOK, h.recommender.ScorerHealth(r.Context()), start)
}
