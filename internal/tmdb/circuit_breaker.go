// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"

	"github.com/tomtom215/marquee/internal/breaker"
	"github.com/tomtom215/marquee/internal/models"
)

// CircuitBreakerClient wraps a Provider with circuit breaker protection.
type CircuitBreakerClient struct {
	client Provider
	cb     *breaker.Breaker
}

// NewCircuitBreakerClient wraps client. Not-found answers never count as failures.
func NewCircuitBreakerClient(client Provider, settings breaker.Settings) *CircuitBreakerClient {
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
	}
	return &CircuitBreakerClient{
		client: client,
		cb:     breaker.New("tmdb", settings),
	}
}

// State returns the circuit state name.
func (c *CircuitBreakerClient) State() string { return c.cb.State() }

func (c *CircuitBreakerClient) Details(ctx context.Context, movieID int64) (*models.Movie, error) {
	return breaker.Do(c.cb, func() (*models.Movie, error) {
		return c.client.Details(ctx, movieID)
	})
}

func (c *CircuitBreakerClient) Similar(ctx context.Context, movieID int64, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.Similar(ctx, movieID, page)
	})
}

func (c *CircuitBreakerClient) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.Popular(ctx, page)
	})
}

func (c *CircuitBreakerClient) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.TopRated(ctx, page)
	})
}

func (c *CircuitBreakerClient) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.NowPlaying(ctx, page)
	})
}

func (c *CircuitBreakerClient) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.Upcoming(ctx, page)
	})
}

func (c *CircuitBreakerClient) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	return breaker.Do(c.cb, func() (*models.MoviePage, error) {
		return c.client.Search(ctx, query, page)
	})
}

func (c *CircuitBreakerClient) Genres(ctx context.Context) ([]models.Genre, error) {
	return breaker.Do(c.cb, func() ([]models.Genre, error) {
		return c.client.Genres(ctx)
	})
}

var (
	_ Provider = (*Client)(nil)
	_ Provider = (*CircuitBreakerClient)(nil)
)
