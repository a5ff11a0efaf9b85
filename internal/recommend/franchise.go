// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// studioLoyaltyBoost is the flat bonus for candidates from a studio the
// user is loyal to.
const studioLoyaltyBoost = 0.35

// maxNormalizePasses bounds the iterative title stripping. Three passes
// handle titles like "Dark Souls III: The Fire Fades Edition (GOTY)".
const maxNormalizePasses = 3

// Title-stripping patterns. These are heuristics: distinct games sharing a
// common leading word can land in the same cluster, which is an accepted
// tradeoff of the approach rather than something to tune away.
var (
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	numberingRe     = regexp.MustCompile(`\s+(\d+|[ivx]+)$`)
	editionRe       = regexp.MustCompile(`\s+(definitive|deluxe|goty|game of the year|complete|enhanced|remastered?|hd|anniversary|gold|ultimate|special|collector'?s?|legendary|directors?)(\s+(edition|cut|collection|version))?$`)
	separatorRe     = regexp.MustCompile(`\s*[:\x{2013}\x{2014}-]\s.*$`)
)

// normalizeFranchiseTitle strips numbering, edition suffixes, parenthetical
// qualifiers, and subtitles from a title to derive a franchise base name.
func normalizeFranchiseTitle(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	for pass := 0; pass < maxNormalizePasses; pass++ {
		prev := s
		s = parentheticalRe.ReplaceAllString(s, "")
		s = separatorRe.ReplaceAllString(s, "")
		s = editionRe.ReplaceAllString(s, "")
		s = numberingRe.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == prev {
			break
		}
	}

	return s
}

// detectFranchises clusters user and candidate titles by normalized base
// name. A cluster needs at least two distinct games and at least one
// user-owned entry; everything else is noise for the franchise signals.
func (rc *runContext) detectFranchises(userGames []UserGameSnapshot, candidates []CandidateGame) map[string]*FranchiseCluster {
	type rawEntry struct {
		entry     FranchiseEntry
		developer string
		rating    float64
		hours     float64
	}

	buckets := make(map[string][]rawEntry)

	for i := range userGames {
		g := &userGames[i]
		base := normalizeFranchiseTitle(g.Title)
		if base == "" {
			continue
		}
		buckets[base] = append(buckets[base], rawEntry{
			entry:     FranchiseEntry{GameID: g.ID, Title: g.Title, ReleaseDate: g.ReleaseDate, Owned: true},
			developer: g.Developer,
			rating:    g.Rating,
			hours:     g.HoursPlayed,
		})
	}
	for i := range candidates {
		c := &candidates[i]
		base := normalizeFranchiseTitle(c.Title)
		if base == "" {
			continue
		}
		buckets[base] = append(buckets[base], rawEntry{
			entry:     FranchiseEntry{GameID: c.ID, Title: c.Title, ReleaseDate: c.ReleaseDate},
			developer: c.Developer,
		})
	}

	clusters := make(map[string]*FranchiseCluster)

	for base, raws := range buckets {
		ids := make(map[string]struct{}, len(raws))
		owned := false
		for _, r := range raws {
			ids[r.entry.GameID] = struct{}{}
			if r.entry.Owned {
				owned = true
			}
		}
		if len(ids) < 2 || !owned {
			continue
		}

		cluster := &FranchiseCluster{BaseName: base}
		devCounts := make(map[string]int)
		var ratingSum float64
		var ratingCount int
		seen := make(map[string]struct{}, len(raws))

		for _, r := range raws {
			if _, dup := seen[r.entry.GameID]; dup {
				continue
			}
			seen[r.entry.GameID] = struct{}{}

			cluster.Entries = append(cluster.Entries, r.entry)
			if r.developer != "" {
				devCounts[r.developer]++
			}
			if r.entry.Owned {
				cluster.PlayedIDs = append(cluster.PlayedIDs, r.entry.GameID)
				cluster.UserTotalHours += r.hours
				if r.rating > 0 {
					ratingSum += r.rating
					ratingCount++
				}
			}
			if cluster.DisplayName == "" || len(r.entry.Title) < len(cluster.DisplayName) {
				cluster.DisplayName = r.entry.Title
			}
		}

		if ratingCount > 0 {
			cluster.UserAvgRating = ratingSum / float64(ratingCount)
		}
		cluster.Developer = dominantKey(devCounts)

		sortFranchiseEntries(cluster.Entries)
		for i := range cluster.Entries {
			cluster.Entries[i].Sequence = i
		}

		clusters[base] = cluster
	}

	return clusters
}

// sortFranchiseEntries orders entries by release date; entries with
// unparsable dates sort last, then by title for stability.
func sortFranchiseEntries(entries []FranchiseEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, oki := parseReleaseDate(entries[i].ReleaseDate)
		tj, okj := parseReleaseDate(entries[j].ReleaseDate)
		switch {
		case oki && okj:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return entries[i].Title < entries[j].Title
		case oki:
			return true
		case okj:
			return false
		default:
			return entries[i].Title < entries[j].Title
		}
	})
}

// parseReleaseDate parses an ISO date, tolerating year-only and
// year-month forms.
func parseReleaseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// franchiseBoost scores a candidate's membership in a franchise the user
// has history with. More of the series played means a stronger pull, and
// the user's average rating of the series scales the whole boost.
func (rc *runContext) franchiseBoost(c *CandidateGame) (float64, *FranchiseCluster) {
	cluster, ok := rc.candidateFranchise[c.ID]
	if !ok {
		return 0, nil
	}
	// Owned games are filtered before scoring; this guards the synthetic
	// paths that bypass the filter.
	if _, owned := rc.ownedIDs[c.ID]; owned {
		return 0, nil
	}

	played := float64(len(cluster.PlayedIDs))
	total := float64(len(cluster.Entries))
	if total == 0 {
		return 0, nil
	}

	ratio := played / total
	if ratio > 0.8 {
		ratio = 0.8
	}

	// An unrated series falls into the bottom tier: no rating is no
	// evidence the user wants more of it.
	mult := 0.5
	switch {
	case cluster.UserAvgRating >= 4:
		mult = 1.5
	case cluster.UserAvgRating >= 3:
		mult = 1.0
	}

	return clamp01((0.4 + ratio*0.5) * mult), cluster
}

// studioBoost returns the loyalty bonus when the candidate's developer or
// publisher matches a loyal studio, along with the matched studio name.
func (rc *runContext) studioBoost(c *CandidateGame) (float64, string) {
	if c.Developer != "" {
		if _, ok := rc.loyalDevs[strings.ToLower(c.Developer)]; ok {
			return studioLoyaltyBoost, c.Developer
		}
	}
	if c.Publisher != "" {
		if _, ok := rc.loyalDevs[strings.ToLower(c.Publisher)]; ok {
			return studioLoyaltyBoost, c.Publisher
		}
	}
	return 0, ""
}

// dominantKey returns the most frequent key, ties broken alphabetically.
func dominantKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	for k, n := range counts {
		if n > bestCount || (n == bestCount && (best == "" || k < best)) {
			best = k
			bestCount = n
		}
	}
	return best
}
