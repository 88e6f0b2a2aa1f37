// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"

	"github.com/tomtom215/marquee/internal/models"
)

// AnalyzeAffinity counts genre names across liked entries and returns the
// MaxAffinityGenres most frequent, ties broken by first appearance.
// Entries without genres contribute nothing.
func AnalyzeAffinity(liked []models.LikedEntry) AffinityProfile {
	counts := make(map[string]int)
	var order []string

	for i := range liked {
		for _, g := range liked[i].Genres {
			if g.Name == "" {
				continue
			}
			if _, seen := counts[g.Name]; !seen {
				order = append(order, g.Name)
			}
			counts[g.Name]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	if len(order) > MaxAffinityGenres {
		order = order[:MaxAffinityGenres]
	}
	return AffinityProfile(order)
}

// MatchedGenres returns the names of genres that are in the profile, in the
// order they appear in genres.
func MatchedGenres(genres []models.Genre, profile AffinityProfile) []string {
	if len(profile) == 0 {
		return nil
	}
	var matched []string
	for _, g := range genres {
		if g.Name != "" && profile.Contains(g.Name) {
			matched = append(matched, g.Name)
		}
	}
	return matched
}
