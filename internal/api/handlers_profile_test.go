// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/marquee/internal/models"
)

func TestLikes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/users/alice/likes", `{"movie_id":603,"title":"The Matrix","rating":9}`)
	assertStatus(t, rec, http.StatusOK)
	var entry models.LikedEntry
	decodeResponse(t, rec, &entry)
	if entry.MovieID != 603 || entry.Rating != 9 || len(entry.Genres) != 1 || entry.Genres[0].Name != "Science Fiction" {
		t.Errorf("liked entry = %+v", entry)
	}

	// Without a rating the default applies.
	rec = env.do(t, http.MethodPost, "/api/v1/users/alice/likes", `{"movie_id":155,"title":"The Dark Knight"}`)
	assertStatus(t, rec, http.StatusOK)
	decodeResponse(t, rec, &entry)
	if entry.Rating != models.DefaultLikeRating {
		t.Errorf("rating = %d, want default %d", entry.Rating, models.DefaultLikeRating)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/alice/likes", "")
	assertStatus(t, rec, http.StatusOK)
	var liked []models.LikedEntry
	resp := decodeResponse(t, rec, &liked)
	if len(liked) != 2 || resp.Metadata.Count != 2 {
		t.Errorf("liked = %+v", liked)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/users/alice/likes/603", "")
	assertStatus(t, rec, http.StatusOK)
	var removal removalResult
	decodeResponse(t, rec, &removal)
	if !removal.Removed {
		t.Error("unlike should report removal")
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/users/alice/likes/603", "")
	assertStatus(t, rec, http.StatusOK)
	decodeResponse(t, rec, &removal)
	if removal.Removed {
		t.Error("second unlike should be a no-op")
	}
}

func TestLike_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"malformed json", `{"movie_id":`, http.StatusBadRequest, "Invalid JSON body"},
		{"missing movie id", `{"title":"x"}`, http.StatusBadRequest, "movie_id is required"},
		{"blank title", `{"movie_id":1,"title":"  "}`, http.StatusBadRequest, "title must not be blank"},
		{"rating out of range", `{"movie_id":1,"title":"x","rating":11}`, http.StatusBadRequest, "rating must be at most 10"},
		{"body too large", `{"movie_id":1,"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/v1/users/alice/likes", tt.body)
			assertStatus(t, rec, tt.wantStatus)

			resp := decodeResponse(t, rec, nil)
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" || resp.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want message %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestLike_ValidationDetails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/users/alice/likes", `{"movie_id":1,"title":"x","rating":11}`)
	assertStatus(t, rec, http.StatusBadRequest)

	resp := decodeResponse(t, rec, nil)
	if resp.Error == nil {
		t.Fatal("missing error body")
	}
	if resp.Error.Details["field"] != "rating" || resp.Error.Details["tag"] != "max" {
		t.Errorf("details = %v", resp.Error.Details)
	}
	fields, ok := resp.Error.Details["fields"].([]interface{})
	if !ok || len(fields) != 1 {
		t.Fatalf("details.fields = %#v", resp.Error.Details["fields"])
	}
	field, _ := fields[0].(map[string]interface{})
	if field["field"] != "rating" || field["param"] != "10" || field["message"] != "rating must be at most 10" {
		t.Errorf("field error = %v", field)
	}
}

func TestWatched(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	body := `{"movie_id":155,"title":"The Dark Knight","rating":8,"genres":["Action",{"id":80,"name":"Crime"}]}`
	rec := env.do(t, http.MethodPost, "/api/v1/users/alice/watched", body)
	assertStatus(t, rec, http.StatusCreated)
	var entry models.WatchedEntry
	decodeResponse(t, rec, &entry)
	if entry.Rating == nil || *entry.Rating != 8 || len(entry.Genres) != 2 || entry.Genres[0].Name != "Action" {
		t.Errorf("watched entry = %+v", entry)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/users/alice/watched", body)
	assertStatus(t, rec, http.StatusBadRequest)
	assertAPIError(t, rec, "ALREADY_WATCHED")

	rec = env.do(t, http.MethodGet, "/api/v1/users/alice/watched", "")
	assertStatus(t, rec, http.StatusOK)
	var watched []models.WatchedEntry
	decodeResponse(t, rec, &watched)
	if len(watched) != 1 {
		t.Errorf("watched = %+v", watched)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/users/alice/watched/155", "")
	assertStatus(t, rec, http.StatusOK)
	var removal removalResult
	decodeResponse(t, rec, &removal)
	if !removal.Removed || removal.MovieID != 155 {
		t.Errorf("removal = %+v", removal)
	}
}

func TestWatchlist(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/users/alice/watchlist", `{"movie_id":603,"title":"The Matrix"}`)
	assertStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, "/api/v1/users/alice/watchlist", "")
	assertStatus(t, rec, http.StatusOK)
	var list []models.WatchlistEntry
	decodeResponse(t, rec, &list)
	if len(list) != 1 || list[0].MovieID != 603 {
		t.Errorf("watchlist = %+v", list)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/users/alice/watchlist/603", "")
	assertStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodGet, "/api/v1/users/alice/watchlist", "")
	decodeResponse(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("watchlist after delete = %+v", list)
	}
}

func TestMovieStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/users/alice/likes", `{"movie_id":603,"title":"The Matrix"}`)
	env.do(t, http.MethodPost, "/api/v1/users/alice/watchlist", `{"movie_id":603,"title":"The Matrix"}`)

	rec := env.do(t, http.MethodGet, "/api/v1/users/alice/movies/603/status", "")
	assertStatus(t, rec, http.StatusOK)
	var status models.MovieStatus
	decodeResponse(t, rec, &status)
	want := models.MovieStatus{MovieID: 603, Liked: true, Watched: false, InWatchlist: true}
	if status != want {
		t.Errorf("status = %+v, want %+v", status, want)
	}

	// Another user's lists are independent.
	rec = env.do(t, http.MethodGet, "/api/v1/users/bob/movies/603/status", "")
	decodeResponse(t, rec, &status)
	if status.Liked || status.InWatchlist {
		t.Errorf("bob status = %+v", status)
	}
}

func TestBackfillGenres(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	// Store a like without genres directly, as if the provider had been down.
	err := env.store.Update(context.Background(), "alice", func(p *models.Profile) error {
		p.Liked = append(p.Liked, models.LikedEntry{MovieID: 603, Title: "The Matrix", Rating: 5, Genres: []models.Genre{}})
		return nil
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/users/alice/likes/backfill-genres", "")
	assertStatus(t, rec, http.StatusOK)
	var result map[string]int
	decodeResponse(t, rec, &result)
	if result["updated"] != 1 {
		t.Errorf("updated = %d, want 1", result["updated"])
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/alice/likes", "")
	var liked []models.LikedEntry
	decodeResponse(t, rec, &liked)
	if len(liked) != 1 || len(liked[0].Genres) != 1 {
		t.Errorf("liked after backfill = %+v", liked)
	}
}

func TestProfileEndpoints_StoreFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, withStore(failingStore{}))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/users/alice/likes", ""},
		{http.MethodPost, "/api/v1/users/alice/likes", `{"movie_id":603,"title":"The Matrix"}`},
		{http.MethodGet, "/api/v1/users/alice/movies/603/status", ""},
	} {
		rec := env.do(t, tc.method, tc.path, tc.body)
		assertStatus(t, rec, http.StatusInternalServerError)
		assertAPIError(t, rec, "INTERNAL_ERROR")
	}
}
