// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// ErrInvalidInput is wrapped by every argument validation error.
var ErrInvalidInput = errors.New("invalid input")

// DetailsProvider looks up full movie records.
type DetailsProvider interface {
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
}

// LikeRequest describes a like. Rating 0 means DefaultLikeRating.
type LikeRequest struct {
	MovieID int64
	Title   string
	Rating  int
}

// WatchRequest describes a watched mark. Genres are optional.
type WatchRequest struct {
	MovieID int64
	Title   string
	Rating  *int
	Genres  []models.Genre
}

// Service implements the user list operations on top of a Store.
type Service struct {
	store     Store
	meta      DetailsProvider
	publisher events.Publisher
	logger    zerolog.Logger
	fanOut    int
	now       func() time.Time
}

// NewService creates a profile service. meta and publisher may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(store Store, meta DetailsProvider, publisher events.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		meta:      meta,
		publisher: publisher,
		logger:    logger.With().Str("component", "profile").Logger(),
		fanOut:    8,
		now:       time.Now,
	}
}

// Get returns the user's profile. Unknown users get an empty profile.
func (s *Service) Get(ctx context.Context, userID string) (*models.Profile, error) {
	return s.store.Get(ctx, userID)
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func checkMovie(movieID int64, title string) error {
	if movieID <= 0 {
		return invalid("movie id must be positive")
	}
	if title == "" {
		return invalid("title is required")
	}
	return nil
}

// lookupGenres returns the provider's genres for movieID, or an empty list
// when the lookup fails.
func (s *Service) lookupGenres(ctx context.Context, movieID int64) []models.Genre {
	if s.meta == nil {
		return []models.Genre{}
	}
	movie, err := s.meta.Details(ctx, movieID)
	if err != nil || movie == nil {
		s.logger.Warn().Err(err).Int64("movie_id", movieID).Msg("genre lookup failed, storing like without genres")
		return []models.Genre{}
	}
	if movie.Genres == nil {
		return []models.Genre{}
	}
	return movie.Genres
}

func (s *Service) publish(ctx context.Context, e events.ProfileEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(e.Type)).Str("user_id", e.UserID).Msg("profile event not published")
	}
}

// Like adds movieID to the liked list, or updates the existing entry.
// Genres come from the metadata provider; a failed lookup stores none.
func (s *Service) Like(ctx context.Context, userID string, req LikeRequest) (entry *models.LikedEntry, err error) {
	defer func() { metrics.RecordProfileOperation("like", err) }()

	if err := checkMovie(req.MovieID, req.Title); err != nil {
		return nil, err
	}
	rating := req.Rating
	if rating == 0 {
		rating = models.DefaultLikeRating
	}
	if rating < MinRating || rating > MaxRating {
		return nil, invalid("rating must be between %d and %d", MinRating, MaxRating)
	}

	genres := s.lookupGenres(ctx, req.MovieID)

	var stored models.LikedEntry
	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		stored = models.LikedEntry{
			MovieID: req.MovieID,
			Title:   req.Title,
			Rating:  rating,
			Genres:  genres,
			LikedAt: s.now().UTC(),
		}
		if i := p.LikedIndex(req.MovieID); i >= 0 {
			if len(genres) == 0 {
				stored.Genres = p.Liked[i].Genres
			}
			p.Liked[i] = stored
			return nil
		}
		p.Liked = append(p.Liked, stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("like movie %d: %w", req.MovieID, err)
	}

	e := events.NewProfileEvent(events.TypeLiked, userID, req.MovieID)
	e.Title = req.Title
	e.GenreCount = len(stored.Genres)
	s.publish(ctx, e)

	return &stored, nil
}

// Unlike removes movieID from the liked list. Removing a movie that is not
// liked is not an error; removed reports whether anything changed.
func (s *Service) Unlike(ctx context.Context, userID string, movieID int64) (removed bool, err error) {
	defer func() { metrics.RecordProfileOperation("unlike", err) }()

	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		removed = false
		i := p.LikedIndex(movieID)
		if i < 0 {
			return nil
		}
		p.Liked = append(p.Liked[:i], p.Liked[i+1:]...)
		removed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("unlike movie %d: %w", movieID, err)
	}
	if removed {
		s.publish(ctx, events.NewProfileEvent(events.TypeUnliked, userID, movieID))
	}
	return removed, nil
}

// Liked returns the user's liked entries in insertion order.
func (s *Service) Liked(ctx context.Context, userID string) ([]models.LikedEntry, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Liked, nil
}

// MarkWatched adds movieID to the watched list. ErrAlreadyWatched is returned
// for duplicates.
func (s *Service) MarkWatched(ctx context.Context, userID string, req WatchRequest) (entry *models.WatchedEntry, err error) {
	defer func() { metrics.RecordProfileOperation("watched", err) }()

	if err := checkMovie(req.MovieID, req.Title); err != nil {
		return nil, err
	}
	if req.Rating != nil && (*req.Rating < MinRating || *req.Rating > MaxRating) {
		return nil, invalid("rating must be between %d and %d", MinRating, MaxRating)
	}

	genres := req.Genres
	if genres == nil {
		genres = []models.Genre{}
	}

	var stored models.WatchedEntry
	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		if p.IsWatched(req.MovieID) {
			return ErrAlreadyWatched
		}
		stored = models.WatchedEntry{
			MovieID:   req.MovieID,
			Title:     req.Title,
			Rating:    req.Rating,
			Genres:    genres,
			WatchedAt: s.now().UTC(),
		}
		p.Watched = append(p.Watched, stored)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("mark movie %d watched: %w", req.MovieID, err)
	}

	e := events.NewProfileEvent(events.TypeWatched, userID, req.MovieID)
	e.Title = req.Title
	e.GenreCount = len(genres)
	s.publish(ctx, e)

	return &stored, nil
}

// RemoveWatched removes movieID from the watched list.
func (s *Service) RemoveWatched(ctx context.Context, userID string, movieID int64) (removed bool, err error) {
	defer func() { metrics.RecordProfileOperation("unwatched", err) }()

	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		removed = false
		i := p.WatchedIndex(movieID)
		if i < 0 {
			return nil
		}
		p.Watched = append(p.Watched[:i], p.Watched[i+1:]...)
		removed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("remove watched movie %d: %w", movieID, err)
	}
	if removed {
		s.publish(ctx, events.NewProfileEvent(events.TypeUnwatched, userID, movieID))
	}
	return removed, nil
}

// Watched returns the user's watched entries.
func (s *Service) Watched(ctx context.Context, userID string) ([]models.WatchedEntry, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Watched, nil
}

// AddToWatchlist saves movieID for later. Adding a movie twice keeps the
// first entry.
func (s *Service) AddToWatchlist(ctx context.Context, userID string, movieID int64, title string) (entry *models.WatchlistEntry, err error) {
	defer func() { metrics.RecordProfileOperation("watchlist_add", err) }()

	if err := checkMovie(movieID, title); err != nil {
		return nil, err
	}

	var stored models.WatchlistEntry
	added := false
	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		added = false
		if i := p.WatchlistIndex(movieID); i >= 0 {
			stored = p.Watchlist[i]
			return nil
		}
		stored = models.WatchlistEntry{MovieID: movieID, Title: title, AddedAt: s.now().UTC()}
		p.Watchlist = append(p.Watchlist, stored)
		added = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add movie %d to watchlist: %w", movieID, err)
	}
	if added {
		e := events.NewProfileEvent(events.TypeWatchlisted, userID, movieID)
		e.Title = title
		s.publish(ctx, e)
	}
	return &stored, nil
}

// RemoveFromWatchlist removes movieID from the watchlist.
func (s *Service) RemoveFromWatchlist(ctx context.Context, userID string, movieID int64) (removed bool, err error) {
	defer func() { metrics.RecordProfileOperation("watchlist_remove", err) }()

	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		removed = false
		i := p.WatchlistIndex(movieID)
		if i < 0 {
			return nil
		}
		p.Watchlist = append(p.Watchlist[:i], p.Watchlist[i+1:]...)
		removed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("remove movie %d from watchlist: %w", movieID, err)
	}
	return removed, nil
}

// Watchlist returns the user's watchlist.
func (s *Service) Watchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Watchlist, nil
}

// Status reports whether the user liked, watched or saved movieID.
func (s *Service) Status(ctx context.Context, userID string, movieID int64) (models.MovieStatus, error) {
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.MovieStatus{}, err
	}
	return p.Status(movieID), nil
}

// SetLikedGenres replaces the genres of a liked entry. It reports false when
// the movie is no longer liked.
func (s *Service) SetLikedGenres(ctx context.Context, userID string, movieID int64, genres []models.Genre) (bool, error) {
	updated := false
	err := s.store.Update(ctx, userID, func(p *models.Profile) error {
		updated = false
		i := p.LikedIndex(movieID)
		if i < 0 {
			return nil
		}
		p.Liked[i].Genres = genres
		updated = true
		return nil
	})
	return updated, err
}

// BackfillGenres re-fetches genres for every liked entry. Entries whose
// lookup fails keep their genres. It returns the number of entries updated.
func (s *Service) BackfillGenres(ctx context.Context, userID string) (updated int, err error) {
	defer func() { metrics.RecordProfileOperation("backfill_genres", err) }()

	if s.meta == nil {
		return 0, errors.New("metadata provider not configured")
	}
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	fetched := make([][]models.Genre, len(p.Liked))
	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i := range p.Liked {
		id := p.Liked[i].MovieID
		g.Go(func() error {
			movie, err := s.meta.Details(ctx, id)
			if err != nil || movie == nil || len(movie.Genres) == 0 {
				s.logger.Debug().Err(err).Int64("movie_id", id).Msg("genre backfill lookup failed")
				return nil
			}
			fetched[i] = movie.Genres
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[int64][]models.Genre, len(fetched))
	for i := range p.Liked {
		if fetched[i] != nil {
			byID[p.Liked[i].MovieID] = fetched[i]
		}
	}
	if len(byID) == 0 {
		return 0, nil
	}

	err = s.store.Update(ctx, userID, func(p *models.Profile) error {
		updated = 0
		for i := range p.Liked {
			if genres, ok := byID[p.Liked[i].MovieID]; ok {
				p.Liked[i].Genres = genres
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store backfilled genres: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Int("updated", updated).Int("liked", len(p.Liked)).Msg("liked genres backfilled")
	return updated, nil
}
