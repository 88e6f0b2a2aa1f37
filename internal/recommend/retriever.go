// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/models"
)

// Retriever produces content-based candidates from the similar-movies relation
// of a user's liked entries.
type Retriever struct {
	meta   MetadataProvider
	config *Config
	logger zerolog.Logger
}

// NewRetriever creates a Retriever.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetriever(meta MetadataProvider, cfg *Config, logger zerolog.Logger) *Retriever {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retriever{meta: meta, config: cfg, logger: logger}
}

// Retrieval is the output of Retrieve.
type Retrieval struct {
	// Movies is the deduplicated candidate pool in similarity-fetch order,
	// followed by popular backfill.
	Movies []models.Movie

	// Expanded are copies of the expanded liked entries with genres filled in.
	Expanded []models.LikedEntry

	// Backfilled counts movies appended from the popular listing.
	Backfilled int
}

// Retrieve expands the first SimilarExpansionLimit liked entries. Provider
// failures degrade to empty sub-results; Retrieve itself never fails.
func (r *Retriever) Retrieve(ctx context.Context, liked []models.LikedEntry, watched map[int64]struct{}) Retrieval {
	n := len(liked)
	if n > r.config.SimilarExpansionLimit {
		n = r.config.SimilarExpansionLimit
	}

	expanded := make([]models.LikedEntry, n)
	similar := make([][]models.Movie, n)

	var g errgroup.Group
	g.SetLimit(r.config.fanOut())
	for i := 0; i < n; i++ {
		entry := liked[i]
		g.Go(func() error {
			expanded[i] = r.ensureGenres(ctx, entry)
			similar[i] = r.similar(ctx, entry.MovieID)
			return nil
		})
	}
	_ = g.Wait()

	likedIDs := make(map[int64]struct{}, len(liked))
	for i := range liked {
		likedIDs[liked[i].MovieID] = struct{}{}
	}

	seen := make(map[int64]struct{})
	pool := make([]models.Movie, 0, r.config.BackfillMax)
	for _, movies := range similar {
		for i := range movies {
			id := movies[i].ID
			if _, ok := watched[id]; ok {
				continue
			}
			if _, ok := likedIDs[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			pool = append(pool, movies[i])
		}
	}

	backfilled := 0
	if len(pool) < r.config.BackfillThreshold {
		before := len(pool)
		pool = r.backfill(ctx, pool, seen, watched)
		backfilled = len(pool) - before
	}

	r.logger.Debug().
		Int("expanded", n).
		Int("pool", len(pool)).
		Int("backfilled", backfilled).
		Int("watched_filtered", len(watched)).
		Msg("content-based retrieval complete")

	return Retrieval{Movies: pool, Expanded: expanded, Backfilled: backfilled}
}

// ensureGenres returns a copy of entry with genres. Missing genres are looked
// up once; a failed lookup yields DefaultGenre. A successful lookup is kept as
// returned, even when it has no genres.
func (r *Retriever) ensureGenres(ctx context.Context, entry models.LikedEntry) models.LikedEntry {
	if len(entry.Genres) > 0 {
		entry.Genres = append([]models.Genre(nil), entry.Genres...)
		return entry
	}

	movie, err := r.meta.Details(ctx, entry.MovieID)
	if err != nil || movie == nil {
		r.logger.Debug().Err(err).Int64("movie_id", entry.MovieID).Msg("liked entry genres unavailable, using default genre")
		entry.Genres = []models.Genre{DefaultGenre}
		return entry
	}
	entry.Genres = append([]models.Genre{}, movie.Genres...)
	return entry
}

func (r *Retriever) similar(ctx context.Context, movieID int64) []models.Movie {
	page, err := r.meta.Similar(ctx, movieID, 1)
	if err != nil || page == nil {
		r.logger.Warn().Err(err).Int64("movie_id", movieID).Msg("similar movies unavailable")
		return nil
	}
	return page.Results
}

// backfill appends popular movies that are neither present nor watched until
// the pool reaches BackfillMax.
func (r *Retriever) backfill(ctx context.Context, pool []models.Movie, seen, watched map[int64]struct{}) []models.Movie {
	page, err := r.meta.Popular(ctx, r.config.PopularPage)
	if err != nil || page == nil {
		r.logger.Warn().Err(err).Msg("popular backfill unavailable")
		return pool
	}

	for i := range page.Results {
		if len(pool) >= r.config.BackfillMax {
			break
		}
		id := page.Results[i].ID
		if _, ok := seen[id]; ok {
			continue
		}
		if _, ok := watched[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, page.Results[i])
	}
	return pool
}
