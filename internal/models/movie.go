// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Genre is a metadata-provider genre. ID is 0 when only the name is known.
type Genre struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// UnmarshalJSON accepts both {"id": 28, "name": "Action"} and "Action".
func (g *Genre) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("decode genre name: %w", err)
		}
		*g = Genre{Name: name}
		return nil
	}

	type plain Genre
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode genre: %w", err)
	}
	*g = Genre(p)
	return nil
}

// GenreNames returns the non-empty names of genres, in order.
func GenreNames(genres []Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

// Movie is an immutable snapshot of a movie as returned by the metadata provider.
// Poster and backdrop fields hold absolute image URLs, empty when unknown.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterURL        string  `json:"poster_path,omitempty"`
	BackdropURL      string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity,omitempty"`
	Genres           []Genre `json:"genres"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Tagline          string  `json:"tagline,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	IMDbID           string  `json:"imdb_id,omitempty"`
	Status           string  `json:"status,omitempty"`
}

// MoviePage is one page of a paginated movie listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
