// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// Image sizes used for formatted URLs.
const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

// movieResult is a movie as TMDB returns it, in both list and detail responses.
type movieResult struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	OriginalTitle    string         `json:"original_title"`
	Overview         string         `json:"overview"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	ReleaseDate      string         `json:"release_date"`
	Runtime          int            `json:"runtime"`
	VoteAverage      float64        `json:"vote_average"`
	VoteCount        int            `json:"vote_count"`
	Popularity       float64        `json:"popularity"`
	GenreIDs         []int          `json:"genre_ids"`
	Genres           []models.Genre `json:"genres"`
	OriginalLanguage string         `json:"original_language"`
	Tagline          string         `json:"tagline"`
	Homepage         string         `json:"homepage"`
	IMDbID           string         `json:"imdb_id"`
	Status           string         `json:"status"`
}

type pageResult struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type genreListResult struct {
	Genres []models.Genre `json:"genres"`
}

// Details returns one movie with its full genre list.
func (c *Client) Details(ctx context.Context, movieID int64) (*models.Movie, error) {
	var r movieResult
	path := "/movie/" + strconv.FormatInt(movieID, 10)
	if err := c.getJSON(ctx, "details", path, c.baseParams(false), &r); err != nil {
		return nil, err
	}
	m := c.formatMovie(&r, nil)
	return &m, nil
}

// Similar returns movies TMDB considers similar to movieID.
func (c *Client) Similar(ctx context.Context, movieID int64, page int) (*models.MoviePage, error) {
	path := "/movie/" + strconv.FormatInt(movieID, 10) + "/similar"
	return c.listPage(ctx, "similar", path, page, false, nil)
}

// Popular returns the popular movies listing.
func (c *Client) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listPage(ctx, "popular", "/movie/popular", page, true, nil)
}

// TopRated returns the top rated movies listing.
func (c *Client) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listPage(ctx, "top_rated", "/movie/top_rated", page, true, nil)
}

// NowPlaying returns movies currently in theaters for the configured region.
func (c *Client) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listPage(ctx, "now_playing", "/movie/now_playing", page, true, nil)
}

// Upcoming returns movies about to be released in the configured region.
func (c *Client) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return c.listPage(ctx, "upcoming", "/movie/upcoming", page, true, nil)
}

// Search finds movies by title.
func (c *Client) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("tmdb: search query is empty")
	}
	return c.listPage(ctx, "search", "/search/movie", page, false, url.Values{"query": {query}})
}

// Genres returns the movie genre catalog.
func (c *Client) Genres(ctx context.Context) ([]models.Genre, error) {
	var r genreListResult
	if err := c.getJSON(ctx, "genres", "/genre/movie/list", c.baseParams(false), &r); err != nil {
		return nil, err
	}
	if r.Genres == nil {
		r.Genres = []models.Genre{}
	}
	return r.Genres, nil
}

func (c *Client) listPage(ctx context.Context, endpoint, path string, page int, regional bool, extra url.Values) (*models.MoviePage, error) {
	if page < 1 {
		page = 1
	}
	params := c.baseParams(regional)
	params.Set("page", strconv.Itoa(page))
	for k, v := range extra {
		params[k] = v
	}

	var r pageResult
	if err := c.getJSON(ctx, endpoint, path, params, &r); err != nil {
		return nil, err
	}

	var names map[int]string
	if needsGenreCatalog(r.Results) {
		names = c.genreCatalog(ctx)
	}

	out := &models.MoviePage{
		Page:         r.Page,
		Results:      make([]models.Movie, 0, len(r.Results)),
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
	}
	for i := range r.Results {
		out.Results = append(out.Results, c.formatMovie(&r.Results[i], names))
	}
	return out, nil
}

func (c *Client) baseParams(regional bool) url.Values {
	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}
	if regional && c.region != "" {
		params.Set("region", c.region)
	}
	return params
}

// formatMovie converts a TMDB movie into a models.Movie. List results carry
// genre_ids, which are named from names; unknown ids keep an empty name.
func (c *Client) formatMovie(r *movieResult, names map[int]string) models.Movie {
	genres := r.Genres
	if len(genres) == 0 && len(r.GenreIDs) > 0 {
		genres = make([]models.Genre, 0, len(r.GenreIDs))
		for _, id := range r.GenreIDs {
			genres = append(genres, models.Genre{ID: id, Name: names[id]})
		}
	}
	if genres == nil {
		genres = []models.Genre{}
	}

	return models.Movie{
		ID:               r.ID,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		Overview:         r.Overview,
		PosterURL:        c.ImageURL(PosterSize, r.PosterPath),
		BackdropURL:      c.ImageURL(BackdropSize, r.BackdropPath),
		ReleaseDate:      r.ReleaseDate,
		Runtime:          r.Runtime,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Popularity:       r.Popularity,
		Genres:           genres,
		OriginalLanguage: r.OriginalLanguage,
		Tagline:          r.Tagline,
		Homepage:         r.Homepage,
		IMDbID:           r.IMDbID,
		Status:           r.Status,
	}
}

func needsGenreCatalog(results []movieResult) bool {
	for i := range results {
		if len(results[i].Genres) == 0 && len(results[i].GenreIDs) > 0 {
			return true
		}
	}
	return false
}

// genreCatalog returns the id to name map, loading it on first use.
// A failed load is logged and retried on the next call.
func (c *Client) genreCatalog(ctx context.Context) map[int]string {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()

	if c.genreLoaded {
		return c.genreNames
	}

	genres, err := c.Genres(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("tmdb genre catalog unavailable, genre names left empty")
		return nil
	}

	names := make(map[int]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	c.genreNames = names
	c.genreLoaded = true
	return names
}

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("tmdb(%s, language=%q, region=%q)", c.baseURL, c.language, c.region)
}
