// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/marquee/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

// fakeMeta is an in-memory MetadataProvider.
type fakeMeta struct {
	mu         sync.Mutex
	details    map[int64]models.Movie
	similar    map[int64][]models.Movie
	similarErr map[int64]error

	popular     []models.Movie
	popularErr  error
	topRated    []models.Movie
	topRatedErr error

	detailCalls  atomic.Int32
	similarCalls atomic.Int32
	popularCalls atomic.Int32
	similarFor   []int64
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{
		details:    make(map[int64]models.Movie),
		similar:    make(map[int64][]models.Movie),
		similarErr: make(map[int64]error),
	}
}

func (f *fakeMeta) Details(_ context.Context, id int64) (*models.Movie, error) {
	f.detailCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.details[id]
	if !ok {
		return nil, fmt.Errorf("movie %d: %w", id, errUpstream)
	}
	return &m, nil
}

func (f *fakeMeta) Similar(_ context.Context, id int64, page int) (*models.MoviePage, error) {
	f.similarCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarFor = append(f.similarFor, id)
	if err := f.similarErr[id]; err != nil {
		return nil, err
	}
	return &models.MoviePage{Page: page, Results: f.similar[id]}, nil
}

func (f *fakeMeta) Popular(_ context.Context, page int) (*models.MoviePage, error) {
	f.popularCalls.Add(1)
	if f.popularErr != nil {
		return nil, f.popularErr
	}
	return &models.MoviePage{Page: page, Results: f.popular}, nil
}

func (f *fakeMeta) TopRated(_ context.Context, page int) (*models.MoviePage, error) {
	if f.topRatedErr != nil {
		return nil, f.topRatedErr
	}
	return &models.MoviePage{Page: page, Results: f.topRated}, nil
}

func (f *fakeMeta) addDetails(movies ...models.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range movies {
		f.details[m.ID] = m
	}
}

// fakeScorer is an ExternalScorer returning canned candidates.
type fakeScorer struct {
	mu       sync.Mutex
	recs     []models.ScoredCandidate
	err      error
	health   models.ScorerHealth
	gotUser  string
	gotLiked []models.LikedMovie
	calls    atomic.Int32
}

func (f *fakeScorer) Recommend(_ context.Context, userID string, liked []models.LikedMovie) ([]models.ScoredCandidate, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.gotUser = userID
	f.gotLiked = liked
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ScoredCandidate, len(f.recs))
	copy(out, f.recs)
	return out, nil
}

func (f *fakeScorer) Health(context.Context) models.ScorerHealth {
	return f.health
}

// fakeProfiles is a ProfileReader backed by a map.
type fakeProfiles struct {
	profiles map[string]*models.Profile
	err      error
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return models.NewProfile(userID), nil
}

func genres(names ...string) []models.Genre {
	out := make([]models.Genre, 0, len(names))
	for i, n := range names {
		out = append(out, models.Genre{ID: i + 1, Name: n})
	}
	return out
}

func movie(id int64, genreNames ...string) models.Movie {
	return models.Movie{
		ID:          id,
		Title:       fmt.Sprintf("Movie %d", id),
		VoteAverage: 7,
		Genres:      genres(genreNames...),
	}
}

// movieRange returns movies with ids from..to inclusive.
func movieRange(from, to int64) []models.Movie {
	out := make([]models.Movie, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, movie(id))
	}
	return out
}

func liked(id int64, genreNames ...string) models.LikedEntry {
	return models.LikedEntry{
		MovieID: id,
		Title:   fmt.Sprintf("Liked %d", id),
		Rating:  models.DefaultLikeRating,
		Genres:  genres(genreNames...),
	}
}

func watchedSet(ids ...int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func ids(items []models.ScoredCandidate) []int64 {
	out := make([]int64, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func movieIDs(movies []models.Movie) []int64 {
	out := make([]int64, len(movies))
	for i := range movies {
		out[i] = movies[i].ID
	}
	return out
}
