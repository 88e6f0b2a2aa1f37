// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package scorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

const (
	maxErrorBodySize = 64 * 1024
	maxResponseSize  = 8 << 20

	// NoDescription is the overview of a recommendation whose details could not be loaded.
	NoDescription = "No description available"
)

// ErrUnavailable is wrapped by every error caused by the scoring service being
// unreachable, slow or answering with a non-2xx status.
var ErrUnavailable = errors.New("scorer: service unavailable")

// DetailsProvider loads full movie records for enrichment.
type DetailsProvider interface {
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
}

// Config configures a Client.
type Config struct {
	URL               string
	Timeout           time.Duration
	HealthTimeout     time.Duration
	EnrichConcurrency int
}

// Recommendation is one entry of the scoring service's answer.
type Recommendation struct {
	MovieID movieID `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Source  string  `json:"source"`
}

type recommendRequest struct {
	UserID      string              `json:"user_id"`
	LikedMovies []models.LikedMovie `json:"liked_movies"`
}

type recommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// movieID accepts both 603 and "603".
type movieID int64

func (id *movieID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid movie_id %q: %w", s, err)
	}
	*id = movieID(n)
	return nil
}

// Client calls the scoring service over HTTP.
type Client struct {
	baseURL       string
	client        *http.Client
	healthTimeout time.Duration
	concurrency   int
	details       DetailsProvider
}

// NewClient creates a scoring client. details may be nil, in which case
// recommendations are returned unenriched.
func NewClient(cfg Config, details DetailsProvider) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 5 * time.Second
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = 8
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		client:        &http.Client{Timeout: cfg.Timeout},
		healthTimeout: cfg.HealthTimeout,
		concurrency:   cfg.EnrichConcurrency,
		details:       details,
	}
}

// Recommend asks the scoring service for recommendations and enriches them.
// Candidates are tagged external_ml and keep the service's own score; ranking
// happens in the merger.
func (c *Client) Recommend(ctx context.Context, userID string, liked []models.LikedMovie) ([]models.ScoredCandidate, error) {
	recs, err := c.score(ctx, userID, liked)
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, recs), nil
}

func (c *Client) score(ctx context.Context, userID string, liked []models.LikedMovie) ([]Recommendation, error) {
	start := time.Now()
	recs, err := c.doScore(ctx, userID, liked)
	metrics.RecordScorerRequest("recommend", time.Since(start), err)
	if err == nil {
		logging.Ctx(ctx).Debug().
			Int("liked", len(liked)).
			Int("recommendations", len(recs)).
			Msg("scorer recommendations received")
	}
	return recs, err
}

func (c *Client) doScore(ctx context.Context, userID string, liked []models.LikedMovie) ([]Recommendation, error) {
	if liked == nil {
		liked = []models.LikedMovie{}
	}
	payload, err := json.Marshal(recommendRequest{UserID: userID, LikedMovies: liked})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scorer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ml/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: recommend returned status %d: %s", ErrUnavailable, resp.StatusCode, readBodyForError(resp.Body))
	}

	var out recommendResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode recommend response: %v", ErrUnavailable, err)
	}
	return out.Recommendations, nil
}

// enrich fetches details for every recommendation, preserving order.
func (c *Client) enrich(ctx context.Context, recs []Recommendation) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, len(recs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range recs {
		rec := recs[i]
		g.Go(func() error {
			out[i] = c.enrichOne(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (c *Client) enrichOne(ctx context.Context, rec Recommendation) models.ScoredCandidate {
	id := int64(rec.MovieID)
	candidate := models.ScoredCandidate{
		Source: models.SourceExternalML,
		Score:  rec.Score,
		Reason: rec.Reason,
	}

	var movie *models.Movie
	var err error
	if c.details != nil {
		movie, err = c.details.Details(ctx, id)
	} else {
		err = errors.New("no metadata provider")
	}

	if err != nil || movie == nil {
		logging.Ctx(ctx).Debug().Err(err).Int64("movie_id", id).Msg("scorer recommendation kept without details")
		overview := rec.Reason
		if overview == "" {
			overview = NoDescription
		}
		candidate.Movie = models.Movie{
			ID:       id,
			Title:    rec.Title,
			Overview: overview,
			Genres:   []models.Genre{},
		}
		return candidate
	}

	candidate.Movie = *movie
	candidate.ID = id
	if rec.Title != "" {
		candidate.Title = rec.Title
	}
	return candidate
}

// Ping queries the health endpoint and returns its payload.
func (c *Client) Ping(ctx context.Context) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	start := time.Now()
	detail, err := c.ping(ctx)
	metrics.RecordScorerRequest("health", time.Since(start), err)
	return detail, err
}

func (c *Client) ping(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ml/health", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: health returned status %d: %s", ErrUnavailable, resp.StatusCode, readBodyForError(resp.Body))
	}

	detail := map[string]interface{}{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&detail); err != nil {
		return nil, fmt.Errorf("%w: failed to decode health response: %v", ErrUnavailable, err)
	}
	return detail, nil
}

// Health probes the service. It never fails; problems are reported in the result.
func (c *Client) Health(ctx context.Context) models.ScorerHealth {
	detail, err := c.Ping(ctx)
	return healthFromProbe(detail, err)
}

func healthFromProbe(detail map[string]interface{}, err error) models.ScorerHealth {
	now := time.Now().UTC()
	if err != nil {
		return models.ScorerHealth{
			Reachable: false,
			Status:    "unhealthy",
			Error:     err.Error(),
			CheckedAt: now,
		}
	}

	status := "healthy"
	if s, ok := detail["status"].(string); ok && s != "" {
		status = s
	}
	return models.ScorerHealth{
		Reachable: true,
		Status:    status,
		Detail:    detail,
		CheckedAt: now,
	}
}

func readBodyForError(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize+1))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(data) > maxErrorBodySize {
		return string(data[:maxErrorBodySize]) + "\n... (truncated)"
	}
	return string(data)
}
