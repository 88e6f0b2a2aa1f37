// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// Source tags where a recommendation came from.
type Source string

const (
	SourceContentBased    Source = "content_based"
	SourceExternalML      Source = "external_ml"
	SourceHybridFallback  Source = "hybrid_fallback"
	SourcePopularFallback Source = "popular_fallback"
	SourceSmartTopRated   Source = "smart_top_rated"
)

// ScoredCandidate is a movie ranked for one request. Score is omitted for
// popular_fallback items, which carry no score.
type ScoredCandidate struct {
	Movie
	Source        Source   `json:"source"`
	Score         float64  `json:"score,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	MatchedGenres []string `json:"matched_genres,omitempty"`
}

// SourceCounts reports how many candidates each source produced before truncation.
type SourceCounts struct {
	ContentBased int `json:"content_based"`
	ExternalML   int `json:"external_ml"`
	Hybrid       int `json:"hybrid"`
}

// ScorerHealth is the result of probing the external scoring service.
type ScorerHealth struct {
	Reachable bool                   `json:"reachable"`
	Status    string                 `json:"status"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CheckedAt time.Time              `json:"checked_at"`
}

// LikedMovie is a liked entry enriched with metadata, as sent to the external scorer.
type LikedMovie struct {
	MovieID     int64   `json:"movieId"`
	Title       string  `json:"title"`
	Genres      []Genre `json:"genres"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
}
