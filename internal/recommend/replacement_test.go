// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/models"
)

func newTestSelector(meta *fakeMeta, seed int64) *ReplacementSelector {
	return NewReplacementSelector(meta, DefaultConfig(), rand.New(rand.NewSource(seed)), zerolog.Nop())
}

func TestReplacementSelector_RandomNeverReturnsReplaced(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = movieRange(1, 5)
	s := newTestSelector(meta, 1)

	chosen := map[int64]int{}
	for i := 0; i < 200; i++ {
		res, err := s.Select(context.Background(), nil, 3, nil)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if res.Candidate.ID == 3 {
			t.Fatal("replaced movie returned")
		}
		if res.Debug.SelectionType != SelectionRandom {
			t.Errorf("selection = %s, want %s", res.Debug.SelectionType, SelectionRandom)
		}
		if res.Debug.AvailableMovies != 4 {
			t.Errorf("available = %d, want 4", res.Debug.AvailableMovies)
		}
		chosen[res.Candidate.ID]++
	}
	// Every eligible movie is reachable.
	for _, id := range []int64{1, 2, 4, 5} {
		if chosen[id] == 0 {
			t.Errorf("movie %d never chosen in 200 draws", id)
		}
	}
}

func TestReplacementSelector_RandomReasonAndScore(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	m := movie(7)
	m.VoteAverage = 8.5
	meta.topRated = []models.Movie{m}

	res, err := newTestSelector(meta, 1).Select(context.Background(), nil, 99, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	c := res.Candidate
	if c.Source != models.SourceSmartTopRated {
		t.Errorf("source = %s", c.Source)
	}
	if math.Abs(c.Score-0.865) > 1e-9 {
		t.Errorf("score = %v, want 0.865", c.Score)
	}
	if c.Reason != "Top Rated Film ⭐ 8.5" {
		t.Errorf("reason = %q", c.Reason)
	}
	if res.Message != "Smart pick: Movie 7" {
		t.Errorf("message = %q", res.Message)
	}
	if res.Debug.UserGenres == nil || len(res.Debug.UserGenres) != 0 {
		t.Errorf("user genres = %#v, want empty non-nil", res.Debug.UserGenres)
	}
}

func TestReplacementSelector_GenreMatched(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = []models.Movie{
		movie(1, "Comedy"),
		movie(2, "Drama", "Crime"),
		movie(3, "Animation"),
		movie(4, "Crime"),
		movie(5), // genres only via details
	}
	meta.addDetails(movie(5, "Horror"), movie(2, "Drama", "Crime"))

	history := []models.LikedEntry{liked(10, "Drama", "Crime"), liked(11, "Drama")}
	s := newTestSelector(meta, 3)

	for i := 0; i < 50; i++ {
		res, err := s.Select(context.Background(), history, 1, nil)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		id := res.Candidate.ID
		if id != 2 && id != 4 {
			t.Fatalf("chose %d, want a genre match (2 or 4)", id)
		}
		if res.Debug.SelectionType != SelectionGenreMatched {
			t.Errorf("selection = %s", res.Debug.SelectionType)
		}
		if res.Candidate.Reason != "Top Rated + Drama, Crime" {
			t.Errorf("reason = %q", res.Candidate.Reason)
		}
		if len(res.Candidate.MatchedGenres) == 0 {
			t.Error("matched genres empty")
		}
		if !reflect.DeepEqual(res.Debug.UserGenres, []string{"Drama", "Crime"}) {
			t.Errorf("user genres = %v", res.Debug.UserGenres)
		}
	}
}

func TestReplacementSelector_NoGenreMatchFallsBack(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = []models.Movie{movie(1, "Comedy"), movie(2, "Animation"), movie(3)}

	res, err := newTestSelector(meta, 5).Select(context.Background(), []models.LikedEntry{liked(9, "Western")}, 100, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Debug.SelectionType != SelectionRandomFallback {
		t.Errorf("selection = %s, want %s", res.Debug.SelectionType, SelectionRandomFallback)
	}
	if res.Candidate.Reason != "Top Rated + Western" {
		t.Errorf("reason = %q", res.Candidate.Reason)
	}
}

func TestReplacementSelector_Exclusions(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = movieRange(1, 4)
	s := newTestSelector(meta, 11)

	for i := 0; i < 30; i++ {
		res, err := s.Select(context.Background(), nil, 1, watchedSet(2, 3))
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		if res.Candidate.ID != 4 {
			t.Fatalf("chose %d, want 4", res.Candidate.ID)
		}
	}
}

func TestReplacementSelector_NoReplacement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(*fakeMeta)
		exclude map[int64]struct{}
	}{
		{"empty pool", func(m *fakeMeta) {}, nil},
		{"only the replaced movie", func(m *fakeMeta) { m.topRated = movieRange(1, 1) }, nil},
		{"everything excluded", func(m *fakeMeta) { m.topRated = movieRange(1, 3) }, watchedSet(2, 3)},
		{"provider failure", func(m *fakeMeta) { m.topRatedErr = errUpstream }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			meta := newFakeMeta()
			tt.setup(meta)
			_, err := newTestSelector(meta, 1).Select(context.Background(), nil, 1, tt.exclude)
			if !errors.Is(err, ErrNoReplacement) {
				t.Errorf("expected ErrNoReplacement, got %v", err)
			}
		})
	}
}

func TestReplacementSelector_UsesDetailsWhenAvailable(t *testing.T) {
	t.Parallel()

	meta := newFakeMeta()
	meta.topRated = []models.Movie{movie(1)}
	full := movie(1, "Drama")
	full.Overview = "full record"
	full.Runtime = 120
	meta.addDetails(full)

	res, err := newTestSelector(meta, 1).Select(context.Background(), nil, 2, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if res.Candidate.Overview != "full record" || res.Candidate.Runtime != 120 {
		t.Errorf("details not used: %+v", res.Candidate.Movie)
	}
}

func TestReplacementSelector_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	pick := func() []int64 {
		meta := newFakeMeta()
		meta.topRated = movieRange(1, 20)
		s := newTestSelector(meta, 1234)
		var out []int64
		for i := 0; i < 10; i++ {
			res, err := s.Select(context.Background(), nil, 0, nil)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			out = append(out, res.Candidate.ID)
		}
		return out
	}

	if a, b := pick(), pick(); !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced %v and %v", a, b)
	}
}

func TestReplacementScore(t *testing.T) {
	t.Parallel()

	for vote, want := range map[float64]float64{0: 0.1, 5: 0.55, 10: 1.0} {
		if got := ReplacementScore(vote); math.Abs(got-want) > 1e-9 {
			t.Errorf("ReplacementScore(%v) = %v, want %v", vote, got, want)
		}
	}
}
