// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"bytes"
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

func newTestEngine(t *testing.T, meta *fakeMeta, profiles *fakeProfiles) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	e, err := NewEngine(cfg, meta, profiles, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func profileWith(userID string, likedEntries []models.LikedEntry, watchedIDs ...int64) *fakeProfiles {
	p := models.NewProfile(userID)
	p.Liked = likedEntries
	for _, id := range watchedIDs {
		p.Watched = append(p.Watched, models.WatchedEntry{MovieID: id})
	}
	return &fakeProfiles{profiles: map[string]*models.Profile{userID: p}}
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	profiles := &fakeProfiles{}

	if _, err := NewEngine(nil, meta, profiles, zerolog.Nop()); err != nil {
		t.Errorf("nil config should use defaults, got %v", err)
	}
	bad := DefaultConfig()
	bad.ResultLimit = 0
	if _, err := NewEngine(bad, meta, profiles, zerolog.Nop()); err == nil {
		t.Error("expected invalid config error")
	}
	if _, err := NewEngine(nil, nil, profiles, zerolog.Nop()); err == nil {
		t.Error("expected error for nil metadata provider")
	}
	if _, err := NewEngine(nil, meta, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil profile reader")
	}
}

func TestEngine_ConfigIsCopied(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	e, err := NewEngine(cfg, newFakeMeta(), &fakeProfiles{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cfg.ResultLimit = 1
	e.Config().ResultLimit = 2
	if got := e.Config().ResultLimit; got != 20 {
		t.Errorf("ResultLimit = %d, want 20", got)
	}
}

func TestEngine_PersonalRecommendations_NoPreferences(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.popular = movieRange(1, 25)
	scorer := &fakeScorer{recs: external(900)}
	e := newTestEngine(t, meta, &fakeProfiles{})
	e.SetScorer(scorer)

	res, err := e.PersonalRecommendations(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}

	if len(res.Items) != 20 {
		t.Fatalf("items = %d, want 20", len(res.Items))
	}
	if !reflect.DeepEqual(ids(res.Items), movieIDs(meta.popular[:20])) {
		t.Errorf("items not in popular order: %v", ids(res.Items))
	}
	for _, c := range res.Items {
		if c.Source != models.SourcePopularFallback || c.Score != 0 {
			t.Fatalf("item %d: source %s score %v", c.ID, c.Source, c.Score)
		}
	}
	if res.Message != MessageNoPreferences || !res.Fallback {
		t.Errorf("message = %q, fallback = %v", res.Message, res.Fallback)
	}
	if res.Sources != (models.SourceCounts{ContentBased: 25, ExternalML: 0, Hybrid: 25}) {
		t.Errorf("sources = %+v", res.Sources)
	}
	if scorer.calls.Load() != 0 {
		t.Error("scorer should not be called without liked movies")
	}
}

func TestEngine_PersonalRecommendations_NoPreferencesPopularDown(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.popularErr = errUpstream
	e := newTestEngine(t, meta, &fakeProfiles{})

	res, err := e.PersonalRecommendations(context.Background(), "u")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}
	if len(res.Items) != 0 || res.Message != MessageNoPreferences {
		t.Errorf("got %d items, message %q", len(res.Items), res.Message)
	}
}

func TestEngine_PersonalRecommendations_Hybrid(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.addDetails(movie(1, "Drama"))
	meta.similar[1] = []models.Movie{movie(100, "Drama"), movie(101, "Comedy"), movie(102), movie(103, "Drama")}

	scorer := &fakeScorer{recs: external(200, 201, 100)}
	profiles := profileWith("alice", []models.LikedEntry{liked(1, "Drama")}, 201)
	e := newTestEngine(t, meta, profiles)
	e.SetScorer(scorer)

	res, err := e.PersonalRecommendations(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}

	// 201 is watched; 100 keeps its scorer entry; content follows in order.
	want := []int64{100, 200, 101, 102, 103}
	if got := ids(res.Items); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	wantScores := []float64{0.92, 0.90, 0.7, 0.7, 0.7}
	for i, c := range res.Items {
		if math.Abs(c.Score-wantScores[i]) > 1e-9 {
			t.Errorf("item %d score = %v, want %v", c.ID, c.Score, wantScores[i])
		}
	}
	if res.Sources != (models.SourceCounts{ContentBased: 4, ExternalML: 3, Hybrid: 5}) {
		t.Errorf("sources = %+v", res.Sources)
	}
	if res.Fallback {
		t.Error("hybrid result flagged as fallback")
	}
	if res.Message != "Hybrid recommendations (4 content-based + 3 external)" {
		t.Errorf("message = %q", res.Message)
	}
	if !reflect.DeepEqual([]string(res.Affinity), []string{"Drama"}) {
		t.Errorf("affinity = %v", res.Affinity)
	}
	if !reflect.DeepEqual(res.Items[2].MatchedGenres, []string(nil)) {
		t.Errorf("Comedy candidate matched %v", res.Items[2].MatchedGenres)
	}
	if !reflect.DeepEqual(res.Items[4].MatchedGenres, []string{"Drama"}) {
		t.Errorf("Drama candidate matched %v", res.Items[4].MatchedGenres)
	}

	if scorer.gotUser != "alice" || len(scorer.gotLiked) != 1 || scorer.gotLiked[0].MovieID != 1 {
		t.Errorf("scorer called with %q %+v", scorer.gotUser, scorer.gotLiked)
	}
}

func TestEngine_PersonalRecommendations_ScorerUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scorer ExternalScorer
	}{
		{"no scorer configured", nil},
		{"scorer error", &fakeScorer{err: errUpstream}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta := newFakeMeta()
			meta.similar[1] = movieRange(100, 130)
			e := newTestEngine(t, meta, profileWith("bob", []models.LikedEntry{liked(1, "Drama")}))
			if tt.scorer != nil {
				e.SetScorer(tt.scorer)
			}

			res, err := e.PersonalRecommendations(context.Background(), "bob")
			if err != nil {
				t.Fatalf("PersonalRecommendations: %v", err)
			}
			if len(res.Items) != 20 {
				t.Errorf("items = %d, want 20", len(res.Items))
			}
			for _, c := range res.Items {
				if c.Source != models.SourceContentBased {
					t.Fatalf("item %d has source %s", c.ID, c.Source)
				}
			}
			if res.Sources.ExternalML != 0 || res.Sources.ContentBased != 31 || res.Sources.Hybrid != 31 {
				t.Errorf("sources = %+v", res.Sources)
			}
			if !res.Fallback || res.Message != MessageScorerUnavailable {
				t.Errorf("fallback = %v, message = %q", res.Fallback, res.Message)
			}
		})
	}
}

func TestEngine_PersonalRecommendations_ProfileError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeMeta(), &fakeProfiles{err: errUpstream})

	if _, err := e.PersonalRecommendations(context.Background(), "u"); !errors.Is(err, errUpstream) {
		t.Errorf("expected profile error, got %v", err)
	}
	if _, err := e.ReplaceRecommendation(context.Background(), "u", 1); !errors.Is(err, errUpstream) {
		t.Errorf("expected profile error, got %v", err)
	}
}

func TestEngine_PersonalRecommendations_DefaultGenre(t *testing.T) {
	t.Parallel()

	// The liked entry has no genres and its lookup fails, so the profile is
	// built from the default genre.
	meta := newFakeMeta()
	meta.similar[7] = []models.Movie{movie(70, "Action"), movie(71, "Drama")}
	e := newTestEngine(t, meta, profileWith("carol", []models.LikedEntry{liked(7)}))

	res, err := e.PersonalRecommendations(context.Background(), "carol")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}
	if !reflect.DeepEqual([]string(res.Affinity), []string{DefaultGenre.Name}) {
		t.Errorf("affinity = %v, want [%s]", res.Affinity, DefaultGenre.Name)
	}
	if !reflect.DeepEqual(res.Items[0].MatchedGenres, []string{"Action"}) {
		t.Errorf("matched = %v", res.Items[0].MatchedGenres)
	}
}

func TestEngine_PersonalRecommendations_Idempotent(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.similar[1] = movieRange(100, 110)
	meta.similar[2] = movieRange(105, 120)
	meta.popular = movieRange(300, 340)
	profiles := profileWith("dave", []models.LikedEntry{liked(1, "Drama"), liked(2, "Crime")}, 106, 301)
	e := newTestEngine(t, meta, profiles)
	e.SetScorer(&fakeScorer{recs: external(500, 106, 501)})

	first, err := e.PersonalRecommendations(context.Background(), "dave")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.PersonalRecommendations(context.Background(), "dave")
		if err != nil {
			t.Fatalf("PersonalRecommendations: %v", err)
		}
		if !reflect.DeepEqual(ids(first.Items), ids(again.Items)) {
			t.Fatalf("results differ: %v vs %v", ids(first.Items), ids(again.Items))
		}
	}
	for _, c := range first.Items {
		if c.ID == 106 || c.ID == 301 {
			t.Errorf("watched movie %d returned", c.ID)
		}
	}
}

func TestEngine_PersonalRecommendations_RequestTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	meta := newFakeMeta()
	meta.similar[1] = movieRange(100, 102)
	e, err := NewEngine(cfg, meta, profileWith("u", []models.LikedEntry{liked(1, "Drama")}), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	e.SetScorer(&blockingScorer{})

	start := time.Now()
	res, err := e.PersonalRecommendations(context.Background(), "u")
	if err != nil {
		t.Fatalf("PersonalRecommendations: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("request timeout not applied")
	}
	if !res.Fallback || len(res.Items) == 0 {
		t.Errorf("expected content-only fallback, got %+v", res)
	}
}

// blockingScorer waits for its context to end.
type blockingScorer struct{}

func (blockingScorer) Recommend(ctx context.Context, _ string, _ []models.LikedMovie) ([]models.ScoredCandidate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingScorer) Health(context.Context) models.ScorerHealth {
	return models.ScorerHealth{Reachable: true, Status: "healthy"}
}

func TestEngine_EnrichLikedForScoring(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	full := movie(1, "Drama")
	full.Title = "Full Title"
	full.PosterURL = "https://image.example/p.jpg"
	full.ReleaseDate = "2001-02-03"
	full.VoteAverage = 8.1
	meta.addDetails(full)

	e := newTestEngine(t, meta, &fakeProfiles{})
	got := e.EnrichLikedForScoring(context.Background(), []models.LikedEntry{liked(1), liked(2, "Comedy"), liked(3)})

	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	want0 := models.LikedMovie{
		MovieID: 1, Title: "Full Title", Genres: full.Genres,
		PosterPath: full.PosterURL, ReleaseDate: "2001-02-03", VoteAverage: 8.1,
	}
	if !reflect.DeepEqual(got[0], want0) {
		t.Errorf("enriched = %+v, want %+v", got[0], want0)
	}
	if got[1].Title != "Liked 2" || !reflect.DeepEqual(models.GenreNames(got[1].Genres), []string{"Comedy"}) {
		t.Errorf("fallback entry = %+v", got[1])
	}
	if got[2].Genres == nil {
		t.Error("fallback genres must be an empty list, not nil")
	}
}

func TestEngine_ReplaceRecommendation(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = movieRange(1, 6)
	profiles := profileWith("erin", nil, 2, 3)
	e := newTestEngine(t, meta, profiles)

	for i := 0; i < 40; i++ {
		res, err := e.ReplaceRecommendation(context.Background(), "erin", 1, 4, 5)
		if err != nil {
			t.Fatalf("ReplaceRecommendation: %v", err)
		}
		if res.Candidate.ID != 6 {
			t.Fatalf("replacement = %d, want 6", res.Candidate.ID)
		}
		if res.Debug.AvailableMovies != 1 || res.Debug.SelectionType != SelectionRandom {
			t.Errorf("debug = %+v", res.Debug)
		}
	}

	if _, err := e.ReplaceRecommendation(context.Background(), "erin", 6, 1, 4, 5); !errors.Is(err, ErrNoReplacement) {
		t.Errorf("expected ErrNoReplacement, got %v", err)
	}
}

// Not parallel: raises the global zerolog level.
func TestEngine_ReplaceRecommendation_LogsRequest(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	meta := newFakeMeta()
	meta.topRated = movieRange(1, 2)
	cfg := DefaultConfig()
	cfg.Seed = 1

	var buf bytes.Buffer
	e, err := NewEngine(cfg, meta, profileWith("gus", nil), zerolog.New(&buf))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	res, err := e.ReplaceRecommendation(ctx, "gus", 1)
	if err != nil {
		t.Fatalf("ReplaceRecommendation: %v", err)
	}
	if res.Candidate.ID != 2 {
		t.Fatalf("replacement = %d, want 2", res.Candidate.ID)
	}

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "recommendation replaced") {
			line = l
		}
	}
	if line == "" {
		t.Fatalf("no replacement log line in %q", buf.String())
	}
	for _, want := range []string{`"request_id":"req-42"`, `"user_id":"gus"`, `"replaced":1`, `"replacement":2`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %s missing %s", line, want)
		}
	}
}

func TestEngine_ReplaceRecommendation_GenreAware(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = []models.Movie{movie(10, "Comedy"), movie(11, "Horror"), movie(12, "Comedy", "Horror")}
	profiles := profileWith("fay", []models.LikedEntry{liked(1, "Horror"), liked(2, "Horror")})
	e := newTestEngine(t, meta, profiles)

	res, err := e.ReplaceRecommendation(context.Background(), "fay", 99)
	if err != nil {
		t.Fatalf("ReplaceRecommendation: %v", err)
	}
	if res.Candidate.ID != 11 && res.Candidate.ID != 12 {
		t.Errorf("replacement %d does not match Horror", res.Candidate.ID)
	}
	if res.Candidate.Reason != "Top Rated + Horror" {
		t.Errorf("reason = %q", res.Candidate.Reason)
	}
}

func TestEngine_ScorerHealth(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, newFakeMeta(), &fakeProfiles{})

	h := e.ScorerHealth(context.Background())
	if h.Reachable || h.Status != "disabled" {
		t.Errorf("health without scorer = %+v", h)
	}

	want := models.ScorerHealth{Reachable: true, Status: "healthy", Detail: map[string]any{"model": "v2"}}
	e.SetScorer(&fakeScorer{health: want})
	if got := e.ScorerHealth(context.Background()); !reflect.DeepEqual(got, want) {
		t.Errorf("health = %+v, want %+v", got, want)
	}

	e.SetScorer(nil)
	if got := e.ScorerHealth(context.Background()); got.Status != "disabled" {
		t.Errorf("status after SetScorer(nil) = %s", got.Status)
	}
}
