// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Loyal-developer thresholds: repeated play plus either a strong average
// rating or meaningful total hours.
const (
	loyalMinGames  = 2
	loyalMinRating = 3.5
	loyalMinHours  = 20.0
)

// facetAccumulator tracks one facet value while the profile is built.
type facetAccumulator struct {
	weight      float64
	gameCount   int
	totalHours  float64
	ratingSum   float64
	ratingCount int
}

// buildTasteProfile aggregates the user's library into weighted feature
// distributions. Each game contributes its engagement score to every tag it
// carries, so a heavily played game shapes the profile more than a
// wishlisted one.
func (rc *runContext) buildTasteProfile(games []UserGameSnapshot) *TasteProfile {
	genres := make(map[string]*facetAccumulator)
	themes := make(map[string]*facetAccumulator)
	modes := make(map[string]*facetAccumulator)
	perspectives := make(map[string]*facetAccumulator)
	developers := make(map[string]*facetAccumulator)
	publishers := make(map[string]*facetAccumulator)
	eras := make(map[string]*facetAccumulator)

	profile := &TasteProfile{}

	var ratingSum float64
	var ratingCount int

	for i := range games {
		g := &games[i]
		score := rc.engagementScore(g)

		accumulateTags(genres, g.Genres, score, g)
		accumulateTags(themes, g.Themes, score, g)
		accumulateTags(modes, g.Modes, score, g)
		accumulateTags(perspectives, g.Perspectives, score, g)
		if g.Developer != "" {
			accumulateTags(developers, []string{g.Developer}, score, g)
		}
		if g.Publisher != "" {
			accumulateTags(publishers, []string{g.Publisher}, score, g)
		}
		if era := releaseEra(g.ReleaseDate); era != "" {
			accumulateTags(eras, []string{era}, score, g)
		}

		profile.TotalGames++
		profile.TotalHours += g.HoursPlayed
		if g.Rating > 0 {
			ratingSum += g.Rating
			ratingCount++
		}
	}

	if ratingCount > 0 {
		profile.AvgRating = ratingSum / float64(ratingCount)
	}

	profile.Genres = rankFacet(genres)
	profile.Themes = rankFacet(themes)
	profile.Modes = rankFacet(modes)
	profile.Perspectives = rankFacet(perspectives)
	profile.Developers = rankFacet(developers)
	profile.Publishers = rankFacet(publishers)
	profile.Eras = rankFacet(eras)

	if len(profile.Genres) > 0 {
		profile.TopGenre = profile.Genres[0].Name
	}
	if len(profile.Themes) > 0 {
		profile.TopTheme = profile.Themes[0].Name
	}

	profile.LoyalDevelopers = loyalDevelopers(developers)

	return profile
}

// accumulateTags folds one game's contribution into a facet map.
func accumulateTags(facet map[string]*facetAccumulator, tags []string, score float64, g *UserGameSnapshot) {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		key := strings.TrimSpace(tag)
		if key == "" {
			continue
		}
		// A game counts once per distinct tag even if the catalog repeats it.
		lower := strings.ToLower(key)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}

		acc, ok := facet[key]
		if !ok {
			acc = &facetAccumulator{}
			facet[key] = acc
		}
		acc.weight += score
		acc.gameCount++
		acc.totalHours += g.HoursPlayed
		if g.Rating > 0 {
			acc.ratingSum += g.Rating
			acc.ratingCount++
		}
	}
}

// rankFacet converts an accumulator map into a weight-descending list.
// Ties break alphabetically so output is stable across runs.
func rankFacet(facet map[string]*facetAccumulator) []FeatureWeight {
	out := make([]FeatureWeight, 0, len(facet))
	for name, acc := range facet {
		fw := FeatureWeight{
			Name:       name,
			Weight:     acc.weight,
			GameCount:  acc.gameCount,
			TotalHours: acc.totalHours,
		}
		if acc.ratingCount > 0 {
			fw.AvgRating = acc.ratingSum / float64(acc.ratingCount)
		}
		out = append(out, fw)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Name < out[j].Name
	})

	return out
}

// loyalDevelopers returns studios the user keeps coming back to.
func loyalDevelopers(developers map[string]*facetAccumulator) []string {
	var out []string
	for name, acc := range developers {
		if acc.gameCount < loyalMinGames {
			continue
		}
		avgRating := 0.0
		if acc.ratingCount > 0 {
			avgRating = acc.ratingSum / float64(acc.ratingCount)
		}
		if avgRating >= loyalMinRating || acc.totalHours >= loyalMinHours {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// releaseEra buckets a release date into its decade ("1990s", "2000s").
// Returns empty for unparsable dates.
func releaseEra(releaseDate string) string {
	if len(releaseDate) < 4 {
		return ""
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil || year < 1950 || year > 2100 {
		return ""
	}
	return fmt.Sprintf("%ds", (year/10)*10)
}
