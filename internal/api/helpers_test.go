// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// fakeCatalog implements tmdb.Provider from an in-memory movie table.
type fakeCatalog struct {
	mu       sync.Mutex
	movies   map[int64]models.Movie
	genres   []models.Genre
	err      error
	lastPage int
	lastList string
	query    string
}

var _ tmdb.Provider = (*fakeCatalog)(nil)

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies: map[int64]models.Movie{
			603: {ID: 603, Title: "The Matrix", Genres: []models.Genre{{ID: 878, Name: "Science Fiction"}}, VoteAverage: 8.2},
			155: {ID: 155, Title: "The Dark Knight", Genres: []models.Genre{{ID: 28, Name: "Action"}, {ID: 80, Name: "Crime"}}, VoteAverage: 8.5},
		},
		genres: []models.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	}
}

func (f *fakeCatalog) page(list string, page int) (*models.MoviePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList, f.lastPage = list, page
	if f.err != nil {
		return nil, f.err
	}
	results := make([]models.Movie, 0, len(f.movies))
	for _, id := range []int64{155, 603} {
		if m, ok := f.movies[id]; ok {
			results = append(results, m)
		}
	}
	return &models.MoviePage{Page: page, Results: results, TotalPages: 3, TotalResults: 60}, nil
}

func (f *fakeCatalog) Details(_ context.Context, movieID int64) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.movies[movieID]
	if !ok {
		return nil, fmt.Errorf("details %d: %w", movieID, tmdb.ErrNotFound)
	}
	return &m, nil
}

func (f *fakeCatalog) Similar(_ context.Context, movieID int64, page int) (*models.MoviePage, error) {
	return f.page(fmt.Sprintf("similar/%d", movieID), page)
}

func (f *fakeCatalog) Popular(_ context.Context, page int) (*models.MoviePage, error) {
	return f.page("popular", page)
}

func (f *fakeCatalog) TopRated(_ context.Context, page int) (*models.MoviePage, error) {
	return f.page("top_rated", page)
}

func (f *fakeCatalog) NowPlaying(_ context.Context, page int) (*models.MoviePage, error) {
	return f.page("now_playing", page)
}

func (f *fakeCatalog) Upcoming(_ context.Context, page int) (*models.MoviePage, error) {
	return f.page("upcoming", page)
}

func (f *fakeCatalog) Search(_ context.Context, query string, page int) (*models.MoviePage, error) {
	f.mu.Lock()
	f.query = query
	f.mu.Unlock()
	return f.page("search", page)
}

func (f *fakeCatalog) Genres(context.Context) ([]models.Genre, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.genres, nil
}

// fakeRecommender returns canned engine results.
type fakeRecommender struct {
	mu          sync.Mutex
	personal    *recommend.PersonalResult
	replacement *recommend.ReplacementResult
	err         error
	health      models.ScorerHealth

	gotUserID  string
	gotMovieID int64
	gotExclude []int64
}

func (f *fakeRecommender) PersonalRecommendations(_ context.Context, userID string) (*recommend.PersonalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.personal, nil
}

func (f *fakeRecommender) ReplaceRecommendation(_ context.Context, userID string, movieID int64, exclude ...int64) (*recommend.ReplacementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotUserID, f.gotMovieID, f.gotExclude = userID, movieID, exclude
	if f.err != nil {
		return nil, f.err
	}
	return f.replacement, nil
}

func (f *fakeRecommender) ScorerHealth(context.Context) models.ScorerHealth {
	return f.health
}

// failingStore is a profile.Store whose every call fails.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string) (*models.Profile, error) { return nil, errStoreDown }
func (failingStore) Update(context.Context, string, func(*models.Profile) error) error {
	return errStoreDown
}
func (failingStore) Ping(context.Context) error { return errStoreDown }
func (failingStore) Close() error               { return nil }

type testEnv struct {
	catalog     *fakeCatalog
	recommender *fakeRecommender
	store       profile.Store
	handler     http.Handler
}

type envOption func(*envSettings)

type envSettings struct {
	store  profile.Store
	authMW *auth.Middleware
}

func withStore(s profile.Store) envOption {
	return func(e *envSettings) { e.store = s }
}

func withAuth(m *auth.Middleware) envOption {
	return func(e *envSettings) { e.authMW = m }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	settings := envSettings{store: profile.NewMemoryStore()}
	for _, opt := range opts {
		opt(&settings)
	}

	catalog := newFakeCatalog()
	rec := &fakeRecommender{}
	svc := profile.NewService(settings.store, catalog, nil, zerolog.Nop())

	h, err := NewHandler(catalog, rec, svc)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	router := NewRouter(h, NewChiMiddleware(cfg), settings.authMW)

	return &testEnv{
		catalog:     catalog,
		recommender: rec,
		store:       settings.store,
		handler:     router.Setup(),
	}
}

// do sends a request through the full router.
func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeResponse decodes the envelope, decoding data into data when non-nil.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()
	var raw struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return raw.APIResponse
}

func assertAPIError(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	resp := decodeResponse(t, rec, nil)
	if resp.Status != "error" || resp.Error == nil || resp.Error.Code != code {
		t.Errorf("response = %s, want error code %s", rec.Body.String(), code)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
