// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/models"
)

// ReplacementSelector picks a genre-aware substitute for a shown movie from
// the top-rated catalog.
type ReplacementSelector struct {
	meta   MetadataProvider
	config *Config
	logger zerolog.Logger

	// Random source for selection (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewReplacementSelector creates a selector drawing from rng.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReplacementSelector(meta MetadataProvider, cfg *Config, rng *rand.Rand, logger zerolog.Logger) *ReplacementSelector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ReplacementSelector{meta: meta, config: cfg, rng: rng, logger: logger}
}

type poolCandidate struct {
	movie   models.Movie
	matched []string
}

// Select returns a replacement for replacedID. exclude holds ids that must not
// be chosen (watched and currently shown movies). ErrNoReplacement is returned
// when the pool is unavailable or empty after filtering.
func (s *ReplacementSelector) Select(ctx context.Context, liked []models.LikedEntry, replacedID int64, exclude map[int64]struct{}) (*ReplacementResult, error) {
	affinity := AnalyzeAffinity(liked)

	page, err := s.meta.TopRated(ctx, s.config.TopRatedPage)
	if err != nil {
		s.logger.Warn().Err(err).Msg("top rated pool unavailable")
		return nil, fmt.Errorf("%w: top rated pool unavailable: %v", ErrNoReplacement, err)
	}
	if page == nil || len(page.Results) == 0 {
		return nil, fmt.Errorf("%w: top rated pool is empty", ErrNoReplacement)
	}

	pool := make([]models.Movie, 0, len(page.Results))
	for i := range page.Results {
		id := page.Results[i].ID
		if id == replacedID {
			continue
		}
		if _, ok := exclude[id]; ok {
			continue
		}
		pool = append(pool, page.Results[i])
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: every top rated movie is excluded", ErrNoReplacement)
	}

	var chosen poolCandidate
	selection := SelectionRandom
	if len(affinity) > 0 {
		matched := s.genreMatches(ctx, pool, affinity)
		if len(matched) > 0 {
			chosen = matched[s.intn(len(matched))]
			selection = SelectionGenreMatched
		} else {
			chosen = poolCandidate{movie: pool[s.intn(len(pool))]}
			selection = SelectionRandomFallback
		}
	} else {
		chosen = poolCandidate{movie: pool[s.intn(len(pool))]}
	}

	movie := chosen.movie
	if details, err := s.meta.Details(ctx, movie.ID); err == nil && details != nil {
		movie = *details
	} else {
		s.logger.Debug().Err(err).Int64("movie_id", movie.ID).Msg("replacement details unavailable, using pool record")
	}

	vote := chosen.movie.VoteAverage
	candidate := models.ScoredCandidate{
		Movie:         movie,
		Source:        models.SourceSmartTopRated,
		Score:         ReplacementScore(vote),
		Reason:        replacementReason(affinity, vote),
		MatchedGenres: chosen.matched,
	}

	s.logger.Debug().
		Int64("replaced", replacedID).
		Int64("chosen", movie.ID).
		Str("selection", selection).
		Int("pool", len(pool)).
		Msg("replacement selected")

	userGenres := []string(affinity)
	if userGenres == nil {
		userGenres = []string{}
	}
	return &ReplacementResult{
		Candidate: candidate,
		Message:   "Smart pick: " + movie.Title,
		Debug: ReplacementDebug{
			UserGenres:      userGenres,
			AvailableMovies: len(pool),
			SelectionType:   selection,
		},
	}, nil
}

// genreMatches returns pool candidates sharing at least one genre with the
// profile, sorted by descending overlap. Candidates whose list record has no
// named genres are looked up; a failed lookup excludes the candidate.
func (s *ReplacementSelector) genreMatches(ctx context.Context, pool []models.Movie, affinity AffinityProfile) []poolCandidate {
	genres := make([][]models.Genre, len(pool))

	var g errgroup.Group
	g.SetLimit(s.config.fanOut())
	for i := range pool {
		if len(models.GenreNames(pool[i].Genres)) > 0 {
			genres[i] = pool[i].Genres
			continue
		}
		id := pool[i].ID
		g.Go(func() error {
			details, err := s.meta.Details(ctx, id)
			if err != nil || details == nil {
				s.logger.Debug().Err(err).Int64("movie_id", id).Msg("candidate genres unavailable")
				return nil
			}
			genres[i] = details.Genres
			return nil
		})
	}
	_ = g.Wait()

	var matched []poolCandidate
	for i := range pool {
		names := MatchedGenres(genres[i], affinity)
		if len(names) == 0 {
			continue
		}
		matched = append(matched, poolCandidate{movie: pool[i], matched: names})
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return len(matched[a].matched) > len(matched[b].matched)
	})
	return matched
}

func (s *ReplacementSelector) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// ReplacementScore maps a 0-10 vote average into the 0.1-1.0 score band.
func ReplacementScore(voteAverage float64) float64 {
	return (voteAverage/10)*0.9 + 0.1
}

func replacementReason(affinity AffinityProfile, vote float64) string {
	if len(affinity) > 0 {
		return "Top Rated + " + strings.Join(affinity, ", ")
	}
	return "Top Rated Film ⭐ " + strconv.FormatFloat(vote, 'f', -1, 64)
}
