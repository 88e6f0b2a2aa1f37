// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Recommender produces personal recommendations and replacements.
// *recommend.Engine implements it.
type Recommender interface {
	PersonalRecommendations(ctx context.Context, userID string) (*recommend.PersonalResult, error)
	ReplaceRecommendation(ctx context.Context, userID string, movieID int64, exclude ...int64) (*recommend.ReplacementResult, error)
	ScorerHealth(ctx context.Context) models.ScorerHealth
}

// ProfileService is the user list API. *profile.Service implements it.
type ProfileService interface {
	Ping(ctx context.Context) error
	Like(ctx context.Context, userID string, req profile.LikeRequest) (*models.LikedEntry, error)
	Unlike(ctx context.Context, userID string, movieID int64) (bool, error)
	Liked(ctx context.Context, userID string) ([]models.LikedEntry, error)
	MarkWatched(ctx context.Context, userID string, req profile.WatchRequest) (*models.WatchedEntry, error)
	RemoveWatched(ctx context.Context, userID string, movieID int64) (bool, error)
	Watched(ctx context.Context, userID string) ([]models.WatchedEntry, error)
	AddToWatchlist(ctx context.Context, userID string, movieID int64, title string) (*models.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID string, movieID int64) (bool, error)
	Watchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	Status(ctx context.Context, userID string, movieID int64) (models.MovieStatus, error)
	BackfillGenres(ctx context.Context, userID string) (int, error)
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_health.go: liveness and readiness probes
//   - handlers_movies.go: metadata pass-through endpoints
//   - handlers_recommend.go: personal recommendations and replacement
//   - handlers_profile.go: likes, watched and watchlist
type Handler struct {
	catalog     tmdb.Provider
	recommender Recommender
	profiles    ProfileService
	startTime   time.Time
}

// NewHandler creates the API handler. All dependencies are required.
//
// Example:
//
//	handler, err := api.NewHandler(tmdbClient, engine, profileService)
//	router := api.NewRouter(handler, chiMW, authMW)
//	srv := &http.Server{Handler: router.Setup()}
func NewHandler(catalog tmdb.Provider, recommender Recommender, profiles ProfileService) (*Handler, error) {
	if catalog == nil || recommender == nil || profiles == nil {
		return nil, errors.New("api: catalog, recommender and profile service are required")
	}
	return &Handler{
		catalog:     catalog,
		recommender: recommender,
		profiles:    profiles,
		startTime:   time.Now(),
	}, nil
}
