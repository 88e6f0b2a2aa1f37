// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/breaker"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/tmdb"
	"github.com/tomtom215/marquee/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// maxPage is the highest page TMDB serves.
const maxPage = 500

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error response. Non-nil errors are logged with the
// request's logger.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logger := logging.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondServiceError maps domain errors to HTTP responses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *tmdb.APIError
	switch {
	case errors.Is(err, profile.ErrInvalidInput), errors.Is(err, profile.ErrInvalidUserID):
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err), nil)
	case errors.Is(err, profile.ErrAlreadyWatched):
		respondError(w, r, http.StatusBadRequest, "ALREADY_WATCHED", "Movie already marked as watched", nil)
	case errors.Is(err, recommend.ErrNoReplacement):
		respondError(w, r, http.StatusNotFound, "NO_REPLACEMENT", "No replacement movie available", nil)
	case errors.Is(err, tmdb.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
	case breaker.IsRejection(err):
		respondError(w, r, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Movie metadata service temporarily unavailable", err)
	case errors.As(err, &apiErr):
		respondError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "Movie metadata service error", err)
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

// validationMessage strips the sentinel prefix from an input error.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, profile.ErrInvalidInput.Error()+": "); i >= 0 {
		return msg[i+len(profile.ErrInvalidInput.Error())+2:]
	}
	return msg
}

// validateRequest returns nil or the VALIDATION_ERROR body for v.
func validateRequest(v interface{}) *models.APIError {
	if errs := validation.ValidateStruct(v); errs != nil {
		return errs.ToAPIError()
	}
	return nil
}

// respondValidationError sends a 400 with the validator's details.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// decodeBody decodes a JSON request body into v and validates it. It writes
// the error response and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "Request body too large", nil)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return false
	}
	if apiErr := validateRequest(v); apiErr != nil {
		respondValidationError(w, apiErr)
		return false
	}
	return true
}

// movieIDParam parses the {movieID} path parameter.
func movieIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "movieID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "movieID must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > maxPage {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("page must be between 1 and %d", maxPage), nil)
		return 0, false
	}
	return page, true
}
