// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

// PlayStatus describes where a game sits in the user's backlog.
type PlayStatus int

const (
	// StatusWantToPlay indicates the game is wishlisted but untouched.
	StatusWantToPlay PlayStatus = iota
	// StatusPlaying indicates the game is in rotation.
	StatusPlaying
	// StatusPlayingNow indicates the game is the current primary title.
	StatusPlayingNow
	// StatusOnHold indicates the game was shelved mid-way.
	StatusOnHold
	// StatusCompleted indicates the game was finished.
	StatusCompleted
)

// String returns a human-readable name for the play status.
func (s PlayStatus) String() string {
	switch s {
	case StatusWantToPlay:
		return "want_to_play"
	case StatusPlaying:
		return "playing"
	case StatusPlayingNow:
		return "playing_now"
	case StatusOnHold:
		return "on_hold"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ParsePlayStatus converts a wire-format status string to a PlayStatus.
// Unknown strings map to StatusWantToPlay, the weakest signal.
func ParsePlayStatus(s string) PlayStatus {
	switch s {
	case "playing":
		return StatusPlaying
	case "playing_now":
		return StatusPlayingNow
	case "on_hold":
		return StatusOnHold
	case "completed":
		return StatusCompleted
	default:
		return StatusWantToPlay
	}
}

// Weight returns the engagement contribution of this status.
// Higher values indicate stronger commitment to the game.
func (s PlayStatus) Weight() float64 {
	switch s {
	case StatusCompleted:
		return 1.0
	case StatusPlayingNow:
		return 0.9
	case StatusPlaying:
		return 0.8
	case StatusOnHold:
		return 0.4
	case StatusWantToPlay:
		return 0.1
	default:
		return 0.1
	}
}

// EngagementPattern classifies how a user's play sessions are distributed
// over the lifetime of a game.
type EngagementPattern int

const (
	// PatternUnknown means there is not enough session data to classify.
	PatternUnknown EngagementPattern = iota
	// PatternBingeDrop means all sessions fall within a short initial burst.
	PatternBingeDrop
	// PatternSlowBurn means sessions lengthen over time.
	PatternSlowBurn
	// PatternHoneymoon means early sessions dominate and interest faded.
	PatternHoneymoon
	// PatternLongTail means sustained play over a long span.
	PatternLongTail
)

// String returns a human-readable name for the engagement pattern.
func (p EngagementPattern) String() string {
	switch p {
	case PatternBingeDrop:
		return "binge_drop"
	case PatternSlowBurn:
		return "slow_burn"
	case PatternHoneymoon:
		return "honeymoon"
	case PatternLongTail:
		return "long_tail"
	default:
		return "unknown"
	}
}

// Multiplier returns the engagement-score multiplier for this pattern.
// Patterns that indicate durable interest amplify the score; a binge
// followed by abandonment dampens it.
func (p EngagementPattern) Multiplier() float64 {
	switch p {
	case PatternLongTail:
		return 1.4
	case PatternSlowBurn:
		return 1.3
	case PatternHoneymoon:
		return 0.9
	case PatternBingeDrop:
		return 0.6
	default:
		return 1.0
	}
}

// Session is a single recorded play session.
type Session struct {
	// StartedAt is the session start as Unix epoch milliseconds.
	StartedAt int64 `json:"startedAt"`

	// DurationMinutes is the session length in minutes.
	DurationMinutes float64 `json:"durationMinutes"`
}

// UserGameSnapshot is one played or owned game, captured from the caller's
// library store at invocation time. Immutable within a run; the engagement
// pattern, when absent, is classified once and cached in the run context.
type UserGameSnapshot struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Genres       []string `json:"genres"`
	Themes       []string `json:"themes"`
	Modes        []string `json:"modes"`
	Perspectives []string `json:"perspectives"`
	Developer    string   `json:"developer"`
	Publisher    string   `json:"publisher"`

	// Rating is the user's rating on a 0-5 scale; 0 means unrated.
	Rating float64 `json:"rating"`

	// HoursPlayed is total playtime in hours.
	HoursPlayed float64 `json:"hoursPlayed"`

	// Status is the current backlog status.
	Status PlayStatus `json:"status"`

	// StatusHistory is the ordered list of prior statuses.
	StatusHistory []PlayStatus `json:"statusHistory,omitempty"`

	// Sessions is the recorded play-session log, oldest first.
	Sessions []Session `json:"sessions,omitempty"`

	// Embedding is an optional dense metadata vector.
	Embedding []float32 `json:"embedding,omitempty"`

	// Pattern is an optional precomputed engagement classification.
	// PatternUnknown triggers on-demand classification.
	Pattern EngagementPattern `json:"pattern,omitempty"`

	// ReleaseDate is the ISO date string (YYYY-MM-DD), possibly partial.
	ReleaseDate string `json:"releaseDate,omitempty"`

	// AddedAt / RemovedAt / LastPlayedAt are Unix epoch milliseconds.
	// RemovedAt is zero unless the game was deleted from the library.
	AddedAt      int64 `json:"addedAt,omitempty"`
	RemovedAt    int64 `json:"removedAt,omitempty"`
	LastPlayedAt int64 `json:"lastPlayedAt,omitempty"`

	// SimilarTitles is the catalog's "players also liked" hint list.
	SimilarTitles []string `json:"similarTitles,omitempty"`
}

// CandidateGame is one not-yet-owned game from the catalog pool.
// Immutable within a run.
type CandidateGame struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Genres       []string `json:"genres"`
	Themes       []string `json:"themes"`
	Modes        []string `json:"modes"`
	Perspectives []string `json:"perspectives"`
	Developer    string   `json:"developer"`
	Publisher    string   `json:"publisher"`

	// Metacritic is the critic score (0-100); 0 means unscored.
	Metacritic float64 `json:"metacritic"`

	// Recommendations is the platform recommendation count.
	Recommendations int `json:"recommendations"`

	// ReviewCount and ReviewPositive describe user reviews;
	// ReviewPositive is the positive ratio in [0,1].
	ReviewCount    int     `json:"reviewCount"`
	ReviewPositive float64 `json:"reviewPositive"`

	// AchievementCount is the number of defined achievements.
	AchievementCount int `json:"achievementCount"`

	// PlayerCount is the current player figure from the catalog.
	PlayerCount int `json:"playerCount"`

	// ReleaseDate is the ISO date string (YYYY-MM-DD), possibly partial.
	// Dates in the future mark unreleased titles.
	ReleaseDate string `json:"releaseDate,omitempty"`

	// PriceCents is the current price; 0 means free to play.
	PriceCents int `json:"priceCents"`

	// DiscountPercent is the active discount (0-100).
	DiscountPercent int `json:"discountPercent"`

	// SimilarTitles is the catalog's "players also liked" hint list.
	SimilarTitles []string `json:"similarTitles,omitempty"`

	// Embedding is an optional dense metadata vector.
	Embedding []float32 `json:"embedding,omitempty"`
}

// FeatureWeight is a facet value's aggregated strength in a taste profile.
type FeatureWeight struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	GameCount  int     `json:"gameCount"`
	TotalHours float64 `json:"totalHours"`
	AvgRating  float64 `json:"avgRating"`
}

// TasteCluster is one detected play "mood" within the user's library.
type TasteCluster struct {
	// Label is the capitalized dominant genre of the cluster.
	Label string `json:"label"`

	// GameIDs are the member games.
	GameIDs []string `json:"gameIds"`

	// GameCount is len(GameIDs), kept explicit for the wire format.
	GameCount int `json:"gameCount"`

	// TopGenres are the cluster's strongest genres, descending.
	TopGenres []string `json:"topGenres"`
}

// TasteProfile is the aggregate picture of a user's play history.
// One instance per run; returned to the caller.
type TasteProfile struct {
	Genres       []FeatureWeight `json:"genres"`
	Themes       []FeatureWeight `json:"themes"`
	Modes        []FeatureWeight `json:"modes"`
	Perspectives []FeatureWeight `json:"perspectives"`
	Developers   []FeatureWeight `json:"developers"`
	Publishers   []FeatureWeight `json:"publishers"`
	Eras         []FeatureWeight `json:"eras"`

	TotalGames int     `json:"totalGames"`
	TotalHours float64 `json:"totalHours"`
	AvgRating  float64 `json:"avgRating"`

	TopGenre string `json:"topGenre,omitempty"`
	TopTheme string `json:"topTheme,omitempty"`

	// LoyalDevelopers are studios with repeated, well-rated play.
	LoyalDevelopers []string `json:"loyalDevelopers,omitempty"`

	// Clusters are the detected taste clusters, largest first.
	Clusters []TasteCluster `json:"clusters,omitempty"`
}

// FranchiseEntry is one game within a franchise cluster.
type FranchiseEntry struct {
	GameID      string `json:"gameId"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate,omitempty"`

	// Sequence is the release-order index within the franchise.
	Sequence int `json:"sequence"`

	// Owned marks entries present in the user's library.
	Owned bool `json:"owned"`
}

// FranchiseCluster groups user and candidate titles sharing a base name.
// Built fresh each run from title heuristics; never persisted.
type FranchiseCluster struct {
	// BaseName is the normalized franchise key (lowercased, stripped).
	BaseName string `json:"baseName"`

	// DisplayName is the shortest original title in the cluster.
	DisplayName string `json:"displayName"`

	// Entries are ordered by release date; unparsable dates sort last.
	Entries []FranchiseEntry `json:"entries"`

	// PlayedIDs are the user-owned entry ids.
	PlayedIDs []string `json:"playedIds"`

	// UserAvgRating is the mean user rating across rated owned entries.
	UserAvgRating float64 `json:"userAvgRating"`

	// UserTotalHours is the summed playtime across owned entries.
	UserTotalHours float64 `json:"userTotalHours"`

	// Developer is the most common developer among entries.
	Developer string `json:"developer,omitempty"`
}

// SignalScores is the per-layer breakdown behind a composite score.
// Each value is the raw signal in [0,1] before weighting.
type SignalScores struct {
	Content         float64 `json:"content"`
	Semantic        float64 `json:"semantic"`
	Graph           float64 `json:"graph"`
	Quality         float64 `json:"quality"`
	Popularity      float64 `json:"popularity"`
	Recency         float64 `json:"recency"`
	Diversity       float64 `json:"diversity"`
	TimeOfDay       float64 `json:"timeOfDay"`
	EngagementCurve float64 `json:"engagementCurve"`
	Franchise       float64 `json:"franchise"`
	Studio          float64 `json:"studio"`
	Sequencing      float64 `json:"sequencing"`
	Negative        float64 `json:"negative"`
}

// Reasons captures the interpretable evidence behind a recommendation.
type Reasons struct {
	SharedGenres  []string `json:"sharedGenres,omitempty"`
	SharedThemes  []string `json:"sharedThemes,omitempty"`
	SharedModes   []string `json:"sharedModes,omitempty"`
	SimilarTo     []string `json:"similarTo,omitempty"`
	FranchiseName string   `json:"franchiseName,omitempty"`
	StudioName    string   `json:"studioName,omitempty"`
	HiddenGem     bool     `json:"hiddenGem,omitempty"`
	StretchPick   bool     `json:"stretchPick,omitempty"`
	OnSale        bool     `json:"onSale,omitempty"`

	// Explanation is the assembled human-readable justification.
	Explanation string `json:"explanation,omitempty"`
}

// ScoredGame is a candidate plus its composite score, per-layer breakdown,
// and reasons. This is the unit that gets ranked, reranked, and shelved.
type ScoredGame struct {
	Game    CandidateGame `json:"game"`
	Score   float64       `json:"score"`
	Signals SignalScores  `json:"signals"`
	Reasons Reasons       `json:"reasons"`
}

// ShelfType enumerates the themed collections the assembler can emit.
type ShelfType string

// Shelf kinds, in assembly order.
const (
	ShelfHero               ShelfType = "hero"
	ShelfCompleteSeries     ShelfType = "complete_the_series"
	ShelfBecauseYouLoved    ShelfType = "because_you_loved"
	ShelfFromStudios        ShelfType = "from_studios_you_love"
	ShelfDeepInGenre        ShelfType = "deep_in_genre"
	ShelfForYourMood        ShelfType = "for_your_mood"
	ShelfHiddenGems         ShelfType = "hidden_gems"
	ShelfDeals              ShelfType = "deals_for_you"
	ShelfFree               ShelfType = "free_for_you"
	ShelfCriticsChoice      ShelfType = "critics_choice"
	ShelfStretchPicks       ShelfType = "stretch_picks"
	ShelfNewReleases        ShelfType = "new_releases_for_you"
	ShelfUpcomingSequels    ShelfType = "upcoming_sequels"
	ShelfComingSoon         ShelfType = "coming_soon_for_you"
	ShelfTrending           ShelfType = "trending_now"
	ShelfFinishAndTry       ShelfType = "finish_and_try"
	ShelfUnfinishedBusiness ShelfType = "unfinished_business"
)

// Shelf is a named, ordered collection of scored games.
// Purely a presentation grouping with no lifecycle beyond the run.
type Shelf struct {
	Type     ShelfType `json:"type"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`

	// SeedTitle names the user game a shelf was derived from, when any.
	SeedTitle string `json:"seedTitle,omitempty"`

	Games []ScoredGame `json:"games"`
}

// Request is the full input snapshot for one engine invocation.
type Request struct {
	UserGames  []UserGameSnapshot `json:"userGames"`
	Candidates []CandidateGame    `json:"candidates"`

	// Now is the caller's clock as Unix epoch milliseconds.
	Now int64 `json:"now"`

	// CurrentHour is the caller's local hour (0-23).
	CurrentHour int `json:"currentHour"`

	// HasEmbeddings signals that dense vectors were populated for this run.
	HasEmbeddings bool `json:"hasEmbeddings"`

	// DismissedGameIDs are candidates the user explicitly rejected.
	DismissedGameIDs []string `json:"dismissedGameIds,omitempty"`

	// RunID is a unique identifier for tracing. Generated when empty.
	RunID string `json:"runId,omitempty"`
}

// Progress is a one-way notification emitted at stage boundaries.
type Progress struct {
	Type    string `json:"type"` // always "progress"
	RunID   string `json:"runId"`
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// Result is the single terminal message of a run. On internal failure the
// engine still emits a Result with a default profile and no shelves.
type Result struct {
	Type          string       `json:"type"` // always "result"
	RunID         string       `json:"runId"`
	TasteProfile  TasteProfile `json:"tasteProfile"`
	Shelves       []Shelf      `json:"shelves"`
	ComputeTimeMs int64        `json:"computeTimeMs"`

	// Err is set when the run failed and the empty fallback was returned.
	Err string `json:"error,omitempty"`
}

// Stage names reported through Progress messages.
const (
	StageProfile    = "profile"
	StageNegative   = "negative"
	StageScoring    = "scoring"
	StageReranking  = "reranking"
	StageClustering = "clustering"
	StageShelves    = "shelves"
	StageDone       = "done"
)
