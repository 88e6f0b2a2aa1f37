// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
)

func TestMovieLists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantList string
		wantPage int
	}{
		{"/api/v1/movies/popular", "popular", 1},
		{"/api/v1/movies/top-rated?page=2", "top_rated", 2},
		{"/api/v1/movies/now-playing", "now_playing", 1},
		{"/api/v1/movies/upcoming?page=500", "upcoming", 500},
		{"/api/v1/movies/603/similar", "similar/603", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			rec := env.do(t, http.MethodGet, tt.path, "")
			assertStatus(t, rec, http.StatusOK)

			var page models.MoviePage
			resp := decodeResponse(t, rec, &page)
			if resp.Status != "success" || len(page.Results) != 2 || page.Results[0].ID != 155 {
				t.Errorf("response = %s", rec.Body.String())
			}
			if resp.Metadata.Count != 2 || resp.Metadata.Page != tt.wantPage {
				t.Errorf("metadata = %+v", resp.Metadata)
			}
			if env.catalog.lastList != tt.wantList || env.catalog.lastPage != tt.wantPage {
				t.Errorf("fetched %s page %d, want %s page %d", env.catalog.lastList, env.catalog.lastPage, tt.wantList, tt.wantPage)
			}
		})
	}
}

func TestMovieLists_InvalidPage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, page := range []string{"0", "-1", "501", "abc"} {
		rec := env.do(t, http.MethodGet, "/api/v1/movies/popular?page="+page, "")
		assertStatus(t, rec, http.StatusBadRequest)
		assertAPIError(t, rec, "VALIDATION_ERROR")
	}
}

func TestSearchMovies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/movies/search?q=%20matrix%20&page=3", "")
	assertStatus(t, rec, http.StatusOK)
	if env.catalog.query != "matrix" || env.catalog.lastPage != 3 {
		t.Errorf("search query = %q page %d", env.catalog.query, env.catalog.lastPage)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/movies/search", "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertAPIError(t, rec, "VALIDATION_ERROR")
}

func TestGenres(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/movies/genres", "")
	assertStatus(t, rec, http.StatusOK)

	var genres []models.Genre
	decodeResponse(t, rec, &genres)
	if len(genres) != 2 || genres[0].Name != "Action" {
		t.Errorf("genres = %+v", genres)
	}
}

func TestMovieDetails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/movies/603", "")
	assertStatus(t, rec, http.StatusOK)
	var movie models.Movie
	decodeResponse(t, rec, &movie)
	if movie.Title != "The Matrix" || len(movie.Genres) != 1 {
		t.Errorf("movie = %+v", movie)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/movies/999", "")
	assertStatus(t, rec, http.StatusNotFound)
	assertAPIError(t, rec, "NOT_FOUND")

	rec = env.do(t, http.MethodGet, "/api/v1/movies/abc", "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertAPIError(t, rec, "VALIDATION_ERROR")
}

func TestMovieEndpoints_UpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"breaker open", fmt.Errorf("popular: %w", gobreaker.ErrOpenState), http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"},
		{"tmdb error status", &tmdb.APIError{Endpoint: "popular", StatusCode: http.StatusUnauthorized}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			env.catalog.err = tt.err

			rec := env.do(t, http.MethodGet, "/api/v1/movies/popular", "")
			assertStatus(t, rec, tt.wantStatus)
			assertAPIError(t, rec, tt.wantCode)
		})
	}
}
