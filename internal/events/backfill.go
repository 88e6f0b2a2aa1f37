// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// DetailsProvider looks up full movie records.
type DetailsProvider interface {
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
}

// GenreUpdater stores genres on a liked entry. It reports whether an entry was
// updated; false means the movie is no longer liked.
type GenreUpdater interface {
	SetLikedGenres(ctx context.Context, userID string, movieID int64, genres []models.Genre) (bool, error)
}

// GenreBackfillHandler fills in genres for movies that were liked while the
// metadata provider was unavailable.
type GenreBackfillHandler struct {
	meta    DetailsProvider
	updater GenreUpdater
	logger  zerolog.Logger
}

// NewGenreBackfillHandler creates the handler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGenreBackfillHandler(meta DetailsProvider, updater GenreUpdater, logger zerolog.Logger) *GenreBackfillHandler {
	return &GenreBackfillHandler{
		meta:    meta,
		updater: updater,
		logger:  logger.With().Str("component", "genre_backfill").Logger(),
	}
}

// HandleEvent ignores everything but liked events without genres.
func (h *GenreBackfillHandler) HandleEvent(ctx context.Context, e *ProfileEvent) (err error) {
	if e.Type != TypeLiked || e.GenreCount > 0 {
		return nil
	}
	defer func() { metrics.RecordEventProcessed(string(e.Type), err) }()

	movie, err := h.meta.Details(ctx, e.MovieID)
	if errors.Is(err, tmdb.ErrNotFound) {
		h.logger.Debug().Int64("movie_id", e.MovieID).Msg("movie unknown to metadata provider, skipping backfill")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup genres for movie %d: %w", e.MovieID, err)
	}
	if movie == nil || len(movie.Genres) == 0 {
		return nil
	}

	updated, err := h.updater.SetLikedGenres(ctx, e.UserID, e.MovieID, movie.Genres)
	if err != nil {
		return fmt.Errorf("store genres for movie %d: %w", e.MovieID, err)
	}
	h.logger.Debug().
		Str("user_id", e.UserID).
		Int64("movie_id", e.MovieID).
		Bool("updated", updated).
		Int("genres", len(movie.Genres)).
		Msg("liked genres backfilled")
	return nil
}
