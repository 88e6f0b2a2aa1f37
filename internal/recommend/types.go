// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/models"
)

// ErrNoReplacement is returned when no eligible replacement movie remains.
var ErrNoReplacement = errors.New("no replacement available")

// DefaultGenre is assigned to a liked entry whose genres are unknown and whose
// details lookup failed.
var DefaultGenre = models.Genre{ID: 28, Name: "Action"}

// MaxAffinityGenres is the length cap of an AffinityProfile.
const MaxAffinityGenres = 3

// Selection types reported by ReplacementSelector.
const (
	SelectionGenreMatched   = "genre_matched"
	SelectionRandomFallback = "random_fallback"
	SelectionRandom         = "random"
)

// Messages attached to personal results.
const (
	MessageNoPreferences     = "Popular movies (no preferences yet)"
	MessageScorerUnavailable = "Content-based recommendations (scorer unavailable)"
)

// MetadataProvider is the subset of the movie metadata client the engine uses.
type MetadataProvider interface {
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
	Similar(ctx context.Context, movieID int64, page int) (*models.MoviePage, error)
	Popular(ctx context.Context, page int) (*models.MoviePage, error)
	TopRated(ctx context.Context, page int) (*models.MoviePage, error)
}

// ExternalScorer is the external machine-learning scoring service.
// Recommend errors are treated as "no scorer candidates".
type ExternalScorer interface {
	Recommend(ctx context.Context, userID string, liked []models.LikedMovie) ([]models.ScoredCandidate, error)
	Health(ctx context.Context) models.ScorerHealth
}

// ProfileReader loads user profiles. A user without a stored profile gets an
// empty profile, not an error.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
}

// AffinityProfile is a user's favored genre names, most frequent first.
type AffinityProfile []string

// Contains reports whether name is one of the profile's genres.
func (p AffinityProfile) Contains(name string) bool {
	for _, g := range p {
		if g == name {
			return true
		}
	}
	return false
}

// PersonalResult is the outcome of a personal recommendation request.
type PersonalResult struct {
	Items   []models.ScoredCandidate `json:"items"`
	Sources models.SourceCounts      `json:"sources"`
	Message string                   `json:"message"`

	// Fallback is set when the result did not come from both sources:
	// the user has no liked movies, or the scorer was unavailable.
	Fallback bool `json:"fallback"`

	Affinity AffinityProfile `json:"affinity,omitempty"`
}

// ReplacementResult is the outcome of a replacement request.
type ReplacementResult struct {
	Candidate models.ScoredCandidate `json:"candidate"`
	Message   string                 `json:"message"`
	Debug     ReplacementDebug       `json:"debug"`
}

// ReplacementDebug explains how a replacement was chosen.
type ReplacementDebug struct {
	UserGenres      []string `json:"user_genres"`
	AvailableMovies int      `json:"available_movies"`
	SelectionType   string   `json:"selection_type"`
}
