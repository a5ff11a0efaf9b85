// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Shelf sizing. Every shelf needs its minimum to be emitted at all and
// never exceeds the maximum; a shelf that cannot fill its minimum is
// dropped silently rather than padded with weak picks.
const (
	shelfMaxGames = 10

	newReleaseWindowDays   = 90
	unfinishedIdleDays     = 30
	unfinishedMinHours     = 2.0
	hiddenGemMinQuality    = 0.6
	hiddenGemMaxPopularity = 0.4
	stretchScoreFloor      = 0.3
	criticsChoiceFloor     = 80.0
	trendingMinScore       = 0.2
)

// shelfBuilder tracks the consumable candidate pool while shelves are
// assembled. Each candidate lands on at most one shelf.
type shelfBuilder struct {
	rc   *runContext
	pool []ScoredGame
	used map[string]struct{}
}

// assembleShelves builds the themed shelves from the diversity-reranked
// list; candidates the reranker cut never reach a shelf. Shelves are
// assembled in a fixed priority order; later shelves only see candidates
// earlier shelves did not claim. An empty library yields no shelves.
func (rc *runContext) assembleShelves(ranked []ScoredGame) []Shelf {
	if rc.profile.TotalGames == 0 {
		return nil
	}

	b := &shelfBuilder{
		rc:   rc,
		pool: ranked,
		used: make(map[string]struct{}),
	}

	var shelves []Shelf
	add := func(s *Shelf) {
		if s != nil {
			shelves = append(shelves, *s)
		}
	}

	add(b.heroShelf())
	add(b.completeSeriesShelf())
	add(b.becauseYouLovedShelf())
	add(b.fromStudiosShelf())
	add(b.deepInGenreShelf())
	for _, s := range b.moodShelves() {
		shelves = append(shelves, s)
	}
	add(b.hiddenGemsShelf())
	add(b.dealsShelf())
	add(b.freeShelf())
	add(b.criticsChoiceShelf())
	add(b.stretchPicksShelf())
	add(b.newReleasesShelf())
	add(b.upcomingSequelsShelf())
	add(b.comingSoonShelf())
	add(b.trendingShelf())
	add(b.finishAndTryShelf())
	add(b.unfinishedBusinessShelf())

	for i := range shelves {
		for j := range shelves[i].Games {
			rc.explain(&shelves[i].Games[j], shelves[i].Type)
		}
	}

	return shelves
}

// take claims up to n unused games from the reranked pool matching pred,
// in reranked order, and marks them consumed.
func (b *shelfBuilder) take(n int, pred func(*ScoredGame) bool) []ScoredGame {
	var out []ScoredGame
	for i := range b.pool {
		if len(out) >= n {
			break
		}
		sg := &b.pool[i]
		if _, taken := b.used[sg.Game.ID]; taken {
			continue
		}
		if !pred(sg) {
			continue
		}
		out = append(out, *sg)
		b.used[sg.Game.ID] = struct{}{}
	}
	return out
}

// shelf wraps the min-size check shared by every builder.
func shelf(t ShelfType, title, subtitle string, games []ScoredGame, minGames int) *Shelf {
	if len(games) < minGames {
		return nil
	}
	return &Shelf{Type: t, Title: title, Subtitle: subtitle, Games: games}
}

// heroShelf is the single strongest pick after diversity reranking.
func (b *shelfBuilder) heroShelf() *Shelf {
	games := b.take(1, func(*ScoredGame) bool { return true })
	return shelf(ShelfHero, "Top Pick for You", "", games, 1)
}

// completeSeriesShelf collects unplayed entries of franchises the user has
// history with.
func (b *shelfBuilder) completeSeriesShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Signals.Franchise > 0
	})
	return shelf(ShelfCompleteSeries, "Complete the Series", "Next entries in series you've played", games, 1)
}

// becauseYouLovedShelf seeds on the user's most engaging game and pulls
// candidates related to it through the similarity graph.
func (b *shelfBuilder) becauseYouLovedShelf() *Shelf {
	seed := b.rc.mostEngagedGame()
	if seed == nil {
		return nil
	}
	seedTitle := seed.Title
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		for _, t := range sg.Reasons.SimilarTo {
			if t == seedTitle {
				return true
			}
		}
		return false
	})
	s := shelf(ShelfBecauseYouLoved, "Because You Loved "+seedTitle, "", games, 2)
	if s != nil {
		s.SeedTitle = seedTitle
	}
	return s
}

// fromStudiosShelf collects candidates from studios the user is loyal to.
func (b *shelfBuilder) fromStudiosShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Signals.Studio > 0
	})
	return shelf(ShelfFromStudios, "From Studios You Love", "", games, 2)
}

// deepInGenreShelf digs into the user's strongest genre.
func (b *shelfBuilder) deepInGenreShelf() *Shelf {
	topGenre := b.rc.profile.TopGenre
	if topGenre == "" {
		return nil
	}
	key := strings.ToLower(topGenre)
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		for _, g := range sg.Game.Genres {
			if strings.ToLower(g) == key {
				return true
			}
		}
		return false
	})
	return shelf(ShelfDeepInGenre, "Deep in "+topGenre, "More of your most-played genre", games, 3)
}

// moodShelves builds one shelf per detected taste cluster, matching
// candidates against the cluster's defining features.
func (b *shelfBuilder) moodShelves() []Shelf {
	var shelves []Shelf
	for _, cluster := range b.rc.profile.Clusters {
		features := make(map[string]struct{}, len(cluster.TopGenres))
		for _, f := range cluster.TopGenres {
			features[strings.ToLower(f)] = struct{}{}
		}
		if len(features) == 0 {
			continue
		}
		games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
			return intersects(features, tagSet(sg.Game.Genres, sg.Game.Themes, sg.Game.Modes))
		})
		if s := shelf(ShelfForYourMood, "For Your "+cluster.Label+" Mood", "", games, 2); s != nil {
			shelves = append(shelves, *s)
		}
	}
	return shelves
}

// hiddenGemsShelf surfaces well-reviewed titles with low player counts.
func (b *shelfBuilder) hiddenGemsShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Signals.Quality >= hiddenGemMinQuality &&
			sg.Signals.Popularity <= hiddenGemMaxPopularity &&
			sg.Game.ReviewCount > 0
	})
	for i := range games {
		games[i].Reasons.HiddenGem = true
	}
	return shelf(ShelfHiddenGems, "Hidden Gems", "Great games most players missed", games, 2)
}

// dealsShelf collects discounted candidates.
func (b *shelfBuilder) dealsShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Game.DiscountPercent > 0 && sg.Game.PriceCents > 0
	})
	return shelf(ShelfDeals, "Deals for You", "On sale right now", games, 2)
}

// freeShelf collects free-to-play candidates.
func (b *shelfBuilder) freeShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Game.PriceCents == 0
	})
	return shelf(ShelfFree, "Free for You", "No purchase required", games, 2)
}

// criticsChoiceShelf collects critically acclaimed candidates.
func (b *shelfBuilder) criticsChoiceShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Game.Metacritic >= criticsChoiceFloor
	})
	return shelf(ShelfCriticsChoice, "Critics' Choice", "", games, 3)
}

// stretchPicksShelf surfaces titles sharing no genre with the user's
// profile that still cleared a composite score floor.
func (b *shelfBuilder) stretchPicksShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return len(sg.Reasons.SharedGenres) == 0 && sg.Score >= stretchScoreFloor
	})
	for i := range games {
		games[i].Reasons.StretchPick = true
	}
	return shelf(ShelfStretchPicks, "Stretch Picks", "Something different, still great", games, 2)
}

// newReleasesShelf collects titles released within the recent window.
func (b *shelfBuilder) newReleasesShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		t, ok := parseReleaseDate(sg.Game.ReleaseDate)
		if !ok {
			return false
		}
		age := b.rc.now.Sub(t)
		return age >= 0 && age <= newReleaseWindowDays*24*time.Hour
	})
	return shelf(ShelfNewReleases, "New Releases for You", "", games, 2)
}

// upcomingSequelsShelf collects unreleased entries in franchises the user
// has played.
func (b *shelfBuilder) upcomingSequelsShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return b.rc.isUnreleased(sg.Game.ReleaseDate) && sg.Signals.Franchise > 0
	})
	return shelf(ShelfUpcomingSequels, "Upcoming Sequels", "Series you play, coming soon", games, 1)
}

// comingSoonShelf collects remaining unreleased candidates.
func (b *shelfBuilder) comingSoonShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return b.rc.isUnreleased(sg.Game.ReleaseDate)
	})
	return shelf(ShelfComingSoon, "Coming Soon for You", "", games, 2)
}

// trendingShelf collects high-player-count candidates the user would still
// plausibly enjoy.
func (b *shelfBuilder) trendingShelf() *Shelf {
	games := b.take(shelfMaxGames, func(sg *ScoredGame) bool {
		return sg.Game.PlayerCount > 0 && sg.Score >= trendingMinScore
	})
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Game.PlayerCount > games[j].Game.PlayerCount
	})
	return shelf(ShelfTrending, "Trending Now", "", games, 3)
}

// finishAndTryShelf pairs an unfinished library game with candidates to
// queue up after it.
func (b *shelfBuilder) finishAndTryShelf() *Shelf {
	seed := b.rc.mostEngagedUnfinished()
	if seed == nil {
		return nil
	}
	seedGenres := tagSet(seed.Genres)
	if len(seedGenres) == 0 {
		return nil
	}
	games := b.take(3, func(sg *ScoredGame) bool {
		return intersects(seedGenres, tagSet(sg.Game.Genres))
	})
	s := shelf(ShelfFinishAndTry, "Finish "+seed.Title+", Then Try", "", games, 1)
	if s != nil {
		s.SeedTitle = seed.Title
	}
	return s
}

// unfinishedBusinessShelf is synthetic: it resurfaces the user's own
// shelved games rather than drawing from the candidate pool.
func (b *shelfBuilder) unfinishedBusinessShelf() *Shelf {
	rc := b.rc
	var games []ScoredGame
	for i := range rc.userGames {
		g := &rc.userGames[i]
		if g.Status != StatusOnHold && g.Status != StatusPlaying {
			continue
		}
		if g.HoursPlayed < unfinishedMinHours || g.RemovedAt > 0 {
			continue
		}
		if g.LastPlayedAt > 0 {
			idle := rc.now.Sub(time.UnixMilli(g.LastPlayedAt))
			if idle < unfinishedIdleDays*24*time.Hour {
				continue
			}
		}
		games = append(games, ScoredGame{
			Game: CandidateGame{
				ID:          g.ID,
				Title:       g.Title,
				Genres:      g.Genres,
				Themes:      g.Themes,
				Modes:       g.Modes,
				Developer:   g.Developer,
				Publisher:   g.Publisher,
				ReleaseDate: g.ReleaseDate,
			},
			Score: rc.engagementScore(g),
		})
	}

	sortScored(games)
	if len(games) > 5 {
		games = games[:5]
	}
	// Library games carry no composite score; ordering above used
	// engagement, the emitted score stays zero.
	for i := range games {
		games[i].Score = 0
	}
	return shelf(ShelfUnfinishedBusiness, "Unfinished Business", "Games you shelved but might love again", games, 1)
}

// mostEngagedGame returns the library game with the highest engagement, or
// nil for an empty library.
func (rc *runContext) mostEngagedGame() *UserGameSnapshot {
	var best *UserGameSnapshot
	bestScore := 0.0
	for i := range rc.userGames {
		g := &rc.userGames[i]
		if g.RemovedAt > 0 {
			continue
		}
		if s := rc.engagementScore(g); best == nil || s > bestScore {
			best = g
			bestScore = s
		}
	}
	return best
}

// mostEngagedUnfinished returns the most engaging game still in progress.
func (rc *runContext) mostEngagedUnfinished() *UserGameSnapshot {
	var best *UserGameSnapshot
	bestScore := 0.0
	for i := range rc.userGames {
		g := &rc.userGames[i]
		if g.RemovedAt > 0 {
			continue
		}
		switch g.Status {
		case StatusPlaying, StatusPlayingNow, StatusOnHold:
		default:
			continue
		}
		if g.HoursPlayed < unfinishedMinHours {
			continue
		}
		if s := rc.engagementScore(g); best == nil || s > bestScore {
			best = g
			bestScore = s
		}
	}
	return best
}

// isUnreleased reports whether a release date parses and lies in the future.
func (rc *runContext) isUnreleased(releaseDate string) bool {
	t, ok := parseReleaseDate(releaseDate)
	return ok && t.After(rc.now)
}

// matchPercent converts a composite score to a display percentage.
func matchPercent(score float64) string {
	return fmt.Sprintf("%d%% match", int(clamp01(score)*100+0.5))
}
