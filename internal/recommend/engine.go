// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Engine answers personal recommendation, replacement and scorer health requests.
// It holds no per-user state and is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	meta     MetadataProvider
	profiles ProfileReader

	scorerMu sync.RWMutex
	scorer   ExternalScorer

	retriever *Retriever
	selector  *ReplacementSelector
}

// NewEngine creates a new recommendation engine. The scorer is optional and
// set with SetScorer; without one, recommendations are content-based only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, meta MetadataProvider, profiles ProfileReader, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if meta == nil {
		return nil, errors.New("metadata provider is required")
	}
	if profiles == nil {
		return nil, errors.New("profile reader is required")
	}

	cfg = cfg.Clone()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger = logger.With().Str("component", "recommend").Logger()
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for replacement selection

	return &Engine{
		config:    cfg,
		logger:    logger,
		meta:      meta,
		profiles:  profiles,
		retriever: NewRetriever(meta, cfg, logger),
		selector:  NewReplacementSelector(meta, cfg, rng, logger),
	}, nil
}

// SetScorer sets the external scorer. nil disables it.
func (e *Engine) SetScorer(s ExternalScorer) {
	e.scorerMu.Lock()
	defer e.scorerMu.Unlock()
	e.scorer = s
}

func (e *Engine) getScorer() ExternalScorer {
	e.scorerMu.RLock()
	defer e.scorerMu.RUnlock()
	return e.scorer
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, e.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (e *Engine) requestLogger(ctx context.Context, userID string) zerolog.Logger {
	return e.logger.With().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Str("user_id", userID).
		Logger()
}

// PersonalRecommendations ranks movies for userID by merging content-based
// candidates with external scorer candidates. Only a profile store failure is
// returned as an error; every upstream failure degrades the result instead.
func (e *Engine) PersonalRecommendations(ctx context.Context, userID string) (*PersonalResult, error) {
	start := time.Now()
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	logger := e.requestLogger(ctx, userID)

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	if len(profile.Liked) == 0 {
		result := e.popularFallback(ctx, logger)
		e.recordPersonal(start, result)
		return result, nil
	}

	watched := profile.WatchedIDs()

	var (
		retrieval Retrieval
		external  []models.ScoredCandidate
		scorerErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		retrieval = e.retriever.Retrieve(ctx, profile.Liked, watched)
		return nil
	})
	g.Go(func() error {
		external, scorerErr = e.scoreExternal(ctx, userID, profile.Liked)
		return nil
	})
	_ = g.Wait()

	if scorerErr != nil {
		logger.Warn().Err(scorerErr).Msg("external scorer unavailable, using content-based candidates only")
		metrics.RecordFallback("scorer_unavailable")
		external = nil
	}

	affinity := AnalyzeAffinity(withExpanded(profile.Liked, retrieval.Expanded))

	items, total := Merge(retrieval.Movies, external, watched, e.config.ResultLimit)
	for i := range items {
		items[i].MatchedGenres = MatchedGenres(items[i].Genres, affinity)
	}

	result := &PersonalResult{
		Items: items,
		Sources: models.SourceCounts{
			ContentBased: len(retrieval.Movies),
			ExternalML:   len(external),
			Hybrid:       total,
		},
		Affinity: affinity,
	}
	if scorerErr != nil {
		result.Fallback = true
		result.Message = MessageScorerUnavailable
	} else {
		result.Message = fmt.Sprintf("Hybrid recommendations (%d content-based + %d external)",
			len(retrieval.Movies), len(external))
	}

	logger.Debug().
		Int("content_based", result.Sources.ContentBased).
		Int("external_ml", result.Sources.ExternalML).
		Int("hybrid", result.Sources.Hybrid).
		Int("returned", len(items)).
		Strs("affinity", affinity).
		Dur("duration", time.Since(start)).
		Msg("personal recommendations complete")

	e.recordPersonal(start, result)
	return result, nil
}

// popularFallback answers users without liked movies with the first page of
// the popular listing.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) popularFallback(ctx context.Context, logger zerolog.Logger) *PersonalResult {
	metrics.RecordFallback("no_preferences")

	var movies []models.Movie
	page, err := e.meta.Popular(ctx, e.config.PopularPage)
	if err != nil || page == nil {
		logger.Warn().Err(err).Msg("popular movies unavailable for no-preferences fallback")
	} else {
		movies = page.Results
	}

	n := len(movies)
	if n > e.config.ResultLimit {
		n = e.config.ResultLimit
	}
	items := make([]models.ScoredCandidate, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.ScoredCandidate{
			Movie:  movies[i],
			Source: models.SourcePopularFallback,
		})
	}

	return &PersonalResult{
		Items: items,
		Sources: models.SourceCounts{
			ContentBased: len(movies),
			ExternalML:   0,
			Hybrid:       len(movies),
		},
		Message:  MessageNoPreferences,
		Fallback: true,
	}
}

// scoreExternal enriches liked entries and asks the scorer. A missing scorer
// counts as unavailable.
func (e *Engine) scoreExternal(ctx context.Context, userID string, liked []models.LikedEntry) ([]models.ScoredCandidate, error) {
	s := e.getScorer()
	if s == nil {
		return nil, errors.New("external scorer disabled")
	}
	return s.Recommend(ctx, userID, e.EnrichLikedForScoring(ctx, liked))
}

// EnrichLikedForScoring loads details for every liked entry. Entries whose
// lookup fails are sent as stored.
func (e *Engine) EnrichLikedForScoring(ctx context.Context, liked []models.LikedEntry) []models.LikedMovie {
	out := make([]models.LikedMovie, len(liked))

	var g errgroup.Group
	g.SetLimit(e.config.fanOut())
	for i := range liked {
		entry := liked[i]
		g.Go(func() error {
			out[i] = e.enrichLiked(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Engine) enrichLiked(ctx context.Context, entry models.LikedEntry) models.LikedMovie {
	fallback := models.LikedMovie{
		MovieID: entry.MovieID,
		Title:   entry.Title,
		Genres:  entry.Genres,
	}
	if fallback.Genres == nil {
		fallback.Genres = []models.Genre{}
	}

	movie, err := e.meta.Details(ctx, entry.MovieID)
	if err != nil || movie == nil {
		return fallback
	}

	title := movie.Title
	if title == "" {
		title = entry.Title
	}
	genres := movie.Genres
	if len(genres) == 0 {
		genres = fallback.Genres
	}
	return models.LikedMovie{
		MovieID:     entry.MovieID,
		Title:       title,
		Genres:      genres,
		PosterPath:  movie.PosterURL,
		ReleaseDate: movie.ReleaseDate,
		VoteAverage: movie.VoteAverage,
	}
}

// ReplaceRecommendation picks a substitute for movieID. Watched movies, the
// replaced movie and exclude are never chosen. ErrNoReplacement is returned
// when nothing eligible remains.
func (e *Engine) ReplaceRecommendation(ctx context.Context, userID string, movieID int64, exclude ...int64) (*ReplacementResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	profile, err := e.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	excluded := profile.WatchedIDs()
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	result, err := e.selector.Select(ctx, profile.Liked, movieID, excluded)
	if err != nil {
		if errors.Is(err, ErrNoReplacement) {
			metrics.RecordReplacement("none")
		}
		return nil, err
	}

	metrics.RecordReplacement(result.Debug.SelectionType)
	logger := e.requestLogger(ctx, userID)
	logger.Debug().
		Int64("replaced", movieID).
		Int64("replacement", result.Candidate.ID).
		Str("user_genres", strings.Join(result.Debug.UserGenres, ",")).
		Msg("recommendation replaced")

	return result, nil
}

// ScorerHealth probes the external scorer. It never fails.
func (e *Engine) ScorerHealth(ctx context.Context) models.ScorerHealth {
	s := e.getScorer()
	if s == nil {
		return models.ScorerHealth{
			Reachable: false,
			Status:    "disabled",
			CheckedAt: time.Now().UTC(),
		}
	}
	return s.Health(ctx)
}

func (e *Engine) recordPersonal(start time.Time, result *PersonalResult) {
	bySource := make(map[string]int)
	for i := range result.Items {
		bySource[string(result.Items[i].Source)]++
	}
	metrics.RecordRecommendations("personal", time.Since(start), bySource)
}

// withExpanded returns liked with the first entries replaced by their
// genre-filled copies from retrieval.
func withExpanded(liked, expanded []models.LikedEntry) []models.LikedEntry {
	if len(expanded) == 0 {
		return liked
	}
	out := make([]models.LikedEntry, len(liked))
	copy(out, liked)
	copy(out, expanded)
	return out
}
