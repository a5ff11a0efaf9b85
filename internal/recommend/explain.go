// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"fmt"
	"strings"
)

// maxExplanationClauses caps how many evidence clauses join into one
// explanation sentence.
const maxExplanationClauses = 3

// explain assembles the human-readable justification for one shelved game.
// Clauses are collected in a fixed priority order so the strongest evidence
// always leads, then joined after the match-percent prefix.
func (rc *runContext) explain(sg *ScoredGame, shelfType ShelfType) {
	var clauses []string
	add := func(clause string) {
		if clause != "" && len(clauses) < maxExplanationClauses {
			clauses = append(clauses, clause)
		}
	}

	if sg.Reasons.FranchiseName != "" && sg.Signals.Franchise > 0 {
		add("continues the " + sg.Reasons.FranchiseName + " series you've played")
	}
	if len(sg.Reasons.SimilarTo) > 0 {
		add("similar to " + humanJoin(sg.Reasons.SimilarTo))
	}
	if sg.Reasons.StudioName != "" {
		add("from " + sg.Reasons.StudioName + ", a studio you keep coming back to")
	}
	add(rc.genreHoursClause(sg))
	if sg.Reasons.OnSale && sg.Game.DiscountPercent > 0 {
		add(fmt.Sprintf("%d%% off right now", sg.Game.DiscountPercent))
	}
	if sg.Reasons.HiddenGem {
		add("a hidden gem most players missed")
	}
	if sg.Reasons.StretchPick {
		add("outside your usual genres, worth a look")
	}
	if sg.Game.Metacritic >= criticsChoiceFloor {
		add(fmt.Sprintf("critically acclaimed at %d on Metacritic", int(sg.Game.Metacritic)))
	}

	if len(clauses) == 0 {
		if shelfType == ShelfUnfinishedBusiness {
			sg.Reasons.Explanation = "You put real time into this one but never finished it"
			return
		}
		add("matches your taste profile")
	}

	sg.Reasons.Explanation = matchPercent(sg.Score) + ": " +
		capitalizeFirst(strings.Join(clauses, "; "))
}

// genreHoursClause cites the user's playtime in the strongest shared genre.
func (rc *runContext) genreHoursClause(sg *ScoredGame) string {
	if len(sg.Reasons.SharedGenres) == 0 {
		return ""
	}
	genre := sg.Reasons.SharedGenres[0]
	for _, fw := range rc.profile.Genres {
		if !strings.EqualFold(fw.Name, genre) {
			continue
		}
		if fw.TotalHours >= 1 {
			return fmt.Sprintf("you've logged %.0f hours in %s games", fw.TotalHours, strings.ToLower(genre))
		}
		return "matches your taste for " + strings.ToLower(genre) + " games"
	}
	return ""
}

// humanJoin renders up to two titles as natural language.
func humanJoin(titles []string) string {
	switch len(titles) {
	case 0:
		return ""
	case 1:
		return titles[0]
	default:
		return titles[0] + " and " + titles[1]
	}
}

// capitalizeFirst uppercases the first byte of an ASCII sentence.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
