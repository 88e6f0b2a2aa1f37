// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// DefaultLikeRating is the rating stored when a like carries none.
const DefaultLikeRating = 5

// LikedEntry is a movie the user explicitly liked. Genres may be empty when
// enrichment failed at like time; consumers treat that as "unknown".
type LikedEntry struct {
	MovieID int64     `json:"movie_id" bson:"movie_id"`
	Title   string    `json:"title" bson:"title"`
	Rating  int       `json:"rating" bson:"rating"`
	Genres  []Genre   `json:"genres" bson:"genres"`
	LikedAt time.Time `json:"liked_at" bson:"liked_at"`
}

// WatchedEntry is a movie the user has already seen.
type WatchedEntry struct {
	MovieID   int64     `json:"movie_id" bson:"movie_id"`
	Title     string    `json:"title" bson:"title"`
	Rating    *int      `json:"rating" bson:"rating,omitempty"`
	Genres    []Genre   `json:"genres" bson:"genres"`
	WatchedAt time.Time `json:"watched_at" bson:"watched_at"`
}

// WatchlistEntry is a movie the user saved for later.
type WatchlistEntry struct {
	MovieID int64     `json:"movie_id" bson:"movie_id"`
	Title   string    `json:"title" bson:"title"`
	AddedAt time.Time `json:"added_at" bson:"added_at"`
}

// Profile is everything the service stores about one user.
type Profile struct {
	UserID    string           `json:"user_id" bson:"_id"`
	Liked     []LikedEntry     `json:"liked" bson:"liked"`
	Watched   []WatchedEntry   `json:"watched" bson:"watched"`
	Watchlist []WatchlistEntry `json:"watchlist" bson:"watchlist"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// NewProfile returns an empty profile for userID.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:    userID,
		Liked:     []LikedEntry{},
		Watched:   []WatchedEntry{},
		Watchlist: []WatchlistEntry{},
	}
}

// WatchedIDs returns the set of watched movie ids.
func (p *Profile) WatchedIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(p.Watched))
	for i := range p.Watched {
		ids[p.Watched[i].MovieID] = struct{}{}
	}
	return ids
}

// LikedIDs returns the set of liked movie ids.
func (p *Profile) LikedIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(p.Liked))
	for i := range p.Liked {
		ids[p.Liked[i].MovieID] = struct{}{}
	}
	return ids
}

// LikedIndex returns the position of movieID in Liked, or -1.
func (p *Profile) LikedIndex(movieID int64) int {
	for i := range p.Liked {
		if p.Liked[i].MovieID == movieID {
			return i
		}
	}
	return -1
}

// WatchedIndex returns the position of movieID in Watched, or -1.
func (p *Profile) WatchedIndex(movieID int64) int {
	for i := range p.Watched {
		if p.Watched[i].MovieID == movieID {
			return i
		}
	}
	return -1
}

// WatchlistIndex returns the position of movieID in Watchlist, or -1.
func (p *Profile) WatchlistIndex(movieID int64) int {
	for i := range p.Watchlist {
		if p.Watchlist[i].MovieID == movieID {
			return i
		}
	}
	return -1
}

// IsLiked reports whether movieID is in the liked list.
func (p *Profile) IsLiked(movieID int64) bool { return p.LikedIndex(movieID) >= 0 }

// IsWatched reports whether movieID is in the watched list.
func (p *Profile) IsWatched(movieID int64) bool { return p.WatchedIndex(movieID) >= 0 }

// Status summarizes the profile's relation to movieID.
func (p *Profile) Status(movieID int64) MovieStatus {
	return MovieStatus{
		MovieID:     movieID,
		Liked:       p.IsLiked(movieID),
		Watched:     p.IsWatched(movieID),
		InWatchlist: p.WatchlistIndex(movieID) >= 0,
	}
}

// MovieStatus reports a user's relation to one movie.
type MovieStatus struct {
	MovieID     int64 `json:"movie_id"`
	Liked       bool  `json:"liked"`
	Watched     bool  `json:"watched"`
	InWatchlist bool  `json:"in_watchlist"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	out := &Profile{
		UserID:    p.UserID,
		Liked:     make([]LikedEntry, len(p.Liked)),
		Watched:   make([]WatchedEntry, len(p.Watched)),
		Watchlist: make([]WatchlistEntry, len(p.Watchlist)),
		UpdatedAt: p.UpdatedAt,
	}
	for i, e := range p.Liked {
		e.Genres = cloneGenres(e.Genres)
		out.Liked[i] = e
	}
	for i, e := range p.Watched {
		e.Genres = cloneGenres(e.Genres)
		if e.Rating != nil {
			r := *e.Rating
			e.Rating = &r
		}
		out.Watched[i] = e
	}
	copy(out.Watchlist, p.Watchlist)
	return out
}

// Normalize replaces nil lists with empty ones so the profile always
// serializes as arrays.
func (p *Profile) Normalize() {
	if p.Liked == nil {
		p.Liked = []LikedEntry{}
	}
	if p.Watched == nil {
		p.Watched = []WatchedEntry{}
	}
	if p.Watchlist == nil {
		p.Watchlist = []WatchlistEntry{}
	}
	for i := range p.Liked {
		if p.Liked[i].Genres == nil {
			p.Liked[i].Genres = []Genre{}
		}
	}
	for i := range p.Watched {
		if p.Watched[i].Genres == nil {
			p.Watched[i].Genres = []Genre{}
		}
	}
}

func cloneGenres(in []Genre) []Genre {
	if in == nil {
		return nil
	}
	out := make([]Genre, len(in))
	copy(out, in)
	return out
}
