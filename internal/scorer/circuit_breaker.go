// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package scorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/breaker"
	"github.com/tomtom215/marquee/internal/models"
)

// CircuitBreakerClient wraps a Client with circuit breaker protection. While the
// circuit is open, Recommend fails fast with ErrUnavailable and Health reports
// the service as unhealthy without calling it.
type CircuitBreakerClient struct {
	client *Client
	cb     *breaker.Breaker
}

// NewCircuitBreakerClient wraps client.
func NewCircuitBreakerClient(client *Client, settings breaker.Settings) *CircuitBreakerClient {
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}
	return &CircuitBreakerClient{
		client: client,
		cb:     breaker.New("scorer", settings),
	}
}

// State returns the circuit state name.
func (c *CircuitBreakerClient) State() string { return c.cb.State() }

// Recommend calls the scoring service through the breaker.
func (c *CircuitBreakerClient) Recommend(ctx context.Context, userID string, liked []models.LikedMovie) ([]models.ScoredCandidate, error) {
	recs, err := breaker.Do(c.cb, func() ([]Recommendation, error) {
		return c.client.score(ctx, userID, liked)
	})
	if err != nil {
		if breaker.IsRejection(err) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	return c.client.enrich(ctx, recs), nil
}

// Health probes the service through the breaker.
func (c *CircuitBreakerClient) Health(ctx context.Context) models.ScorerHealth {
	detail, err := breaker.Do(c.cb, func() (map[string]interface{}, error) {
		return c.client.Ping(ctx)
	})
	return healthFromProbe(detail, err)
}
