// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"

	"github.com/tomtom215/marquee/internal/models"
)

// Merge scores.
const (
	ExternalBaseScore = 0.9
	ExternalRankStep  = 0.01
	ContentScore      = 0.7
)

// Merge combines scorer output and content-based candidates into one ranked list.
//
// Scorer candidates come first, skipping watched ids, scored
// ExternalBaseScore + ExternalRankStep*i where i is the candidate's index in
// external. Content candidates not already present follow with ContentScore.
// The list is stably sorted by descending score and truncated to limit.
// Every id appears at most once, first occurrence wins.
//
// total is the merged length before truncation.
func Merge(content []models.Movie, external []models.ScoredCandidate, watched map[int64]struct{}, limit int) (ranked []models.ScoredCandidate, total int) {
	seen := make(map[int64]struct{}, len(content)+len(external))
	merged := make([]models.ScoredCandidate, 0, len(content)+len(external))

	accept := func(id int64) bool {
		if id <= 0 {
			return false
		}
		if _, ok := watched[id]; ok {
			return false
		}
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		return true
	}

	for i := range external {
		if !accept(external[i].ID) {
			continue
		}
		c := external[i]
		c.Source = models.SourceExternalML
		c.Score = ExternalBaseScore + ExternalRankStep*float64(i)
		merged = append(merged, c)
	}

	for i := range content {
		if !accept(content[i].ID) {
			continue
		}
		merged = append(merged, models.ScoredCandidate{
			Movie:  content[i],
			Source: models.SourceContentBased,
			Score:  ContentScore,
		})
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Score > merged[b].Score
	})

	total = len(merged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, total
}
