// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"math"
	"sort"
	"strings"
)

// Quality-signal blend weights. When a candidate has no review data its
// share moves to the critic and recommendation terms so the blend keeps
// summing to 1.0.
const (
	qualityMetacriticWeight  = 0.3
	qualityRecsWeight        = 0.2
	qualityReviewsWeight     = 0.2
	qualityAchievementWeight = 0.1
	qualityMaintenanceWeight = 0.2

	// qualityMaintenanceYears is the linear decay horizon for the
	// release-age maintenance term.
	qualityMaintenanceYears = 15.0

	// recencyYears is the linear decay horizon for the recency boost.
	recencyYears = 10.0

	// popularityPenaltyFactor suppresses ultra-popular titles so raw
	// player counts cannot dominate the composite.
	popularityPenaltyFactor = 0.25

	// curveBonusThreshold marks engagement-curve multipliers favorable
	// enough to project onto similar candidates.
	curveBonusThreshold = 1.1

	// contentTopDevelopers caps how many developers enter the content
	// similarity vector.
	contentTopDevelopers = 20
)

// scoreCandidate computes all signal layers for one candidate and combines
// them into a composite score. Pure function of the candidate and the
// read-only run context; no candidate reads another candidate's result.
func (rc *runContext) scoreCandidate(c *CandidateGame) ScoredGame {
	sg := ScoredGame{Game: *c}

	sg.Signals.Content = rc.contentSimilarity(c)
	sg.Signals.Semantic = rc.semanticSimilarity(c)
	sg.Signals.Graph, sg.Reasons.SimilarTo = rc.graphSignal(c)
	sg.Signals.Quality = rc.qualitySignal(c)
	sg.Signals.Popularity = rc.popularitySignal(c)
	sg.Signals.Recency = rc.recencySignal(c)
	sg.Signals.Diversity = rc.diversitySignal(c)
	sg.Signals.TimeOfDay = rc.timeTable.timeOfDayBoost(c, rc.currentHour)
	sg.Signals.EngagementCurve = rc.engagementCurveBonus(c)
	sg.Signals.Sequencing = rc.seq.sequencingBoost(c)
	sg.Signals.Negative = rc.negativeSignal(c)

	var franchise *FranchiseCluster
	sg.Signals.Franchise, franchise = rc.franchiseBoost(c)
	if franchise != nil {
		sg.Reasons.FranchiseName = franchise.DisplayName
	}
	sg.Signals.Studio, sg.Reasons.StudioName = rc.studioBoost(c)

	w := rc.weights
	composite := w.Content*sg.Signals.Content +
		w.Semantic*sg.Signals.Semantic +
		w.Graph*sg.Signals.Graph +
		w.Quality*sg.Signals.Quality +
		w.Popularity*sg.Signals.Popularity +
		w.Recency*sg.Signals.Recency +
		w.Diversity*sg.Signals.Diversity +
		w.TimeOfDay*sg.Signals.TimeOfDay +
		w.EngagementCurve*sg.Signals.EngagementCurve +
		w.Franchise*sg.Signals.Franchise +
		w.Studio*sg.Signals.Studio +
		w.Sequencing*sg.Signals.Sequencing -
		w.Negative*sg.Signals.Negative

	sg.Score = clamp01(composite)

	sg.Reasons.SharedGenres = rc.sharedTags(c.Genres, "genre:")
	sg.Reasons.SharedThemes = rc.sharedTags(c.Themes, "theme:")
	sg.Reasons.SharedModes = rc.sharedTags(c.Modes, "mode:")
	sg.Reasons.OnSale = c.DiscountPercent > 0

	return sg
}

// contentSimilarity is the cosine similarity between the taste-profile
// vector and the candidate's one-hot vector over the same facets.
func (rc *runContext) contentSimilarity(c *CandidateGame) float64 {
	candidate := candidateVector(c)
	if len(candidate) == 0 || len(rc.profileVec) == 0 {
		return 0
	}
	return cosineSparse(rc.profileVec, candidate)
}

// candidateVector builds the one-hot facet vector for a candidate.
func candidateVector(c *CandidateGame) map[string]float64 {
	v := make(map[string]float64, len(c.Genres)+len(c.Themes)+len(c.Modes)+len(c.Perspectives)+1)
	addFacet(v, "genre:", c.Genres)
	addFacet(v, "theme:", c.Themes)
	addFacet(v, "mode:", c.Modes)
	addFacet(v, "persp:", c.Perspectives)
	if c.Developer != "" {
		v["dev:"+strings.ToLower(c.Developer)] = 1
	}
	return v
}

// addFacet writes prefixed one-hot entries for a tag list.
func addFacet(v map[string]float64, prefix string, tags []string) {
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			v[prefix+t] = 1
		}
	}
}

// buildProfileVector flattens the taste profile into a sparse facet vector
// for content similarity. Developers are capped to the strongest few so
// one prolific studio cannot blur the genre axes.
func buildProfileVector(p *TasteProfile) map[string]float64 {
	v := make(map[string]float64)
	for _, fw := range p.Genres {
		v["genre:"+strings.ToLower(fw.Name)] = fw.Weight
	}
	for _, fw := range p.Themes {
		v["theme:"+strings.ToLower(fw.Name)] = fw.Weight
	}
	for _, fw := range p.Modes {
		v["mode:"+strings.ToLower(fw.Name)] = fw.Weight
	}
	for _, fw := range p.Perspectives {
		v["persp:"+strings.ToLower(fw.Name)] = fw.Weight
	}
	for i, fw := range p.Developers {
		if i >= contentTopDevelopers {
			break
		}
		v["dev:"+strings.ToLower(fw.Name)] = fw.Weight
	}
	return v
}

// semanticSimilarity is the cosine similarity between the candidate's
// embedding and the engagement-weighted mean of the user's embeddings.
// Zero whenever either side lacks vectors.
func (rc *runContext) semanticSimilarity(c *CandidateGame) float64 {
	if !rc.hasEmbeddings || len(c.Embedding) == 0 || len(rc.meanEmbedding) == 0 {
		return 0
	}
	if len(c.Embedding) != len(rc.meanEmbedding) {
		return 0
	}
	return clamp01(cosineDense(rc.meanEmbedding, c.Embedding))
}

// qualitySignal blends critic score, recommendation volume, review
// sentiment, achievement depth, and release-age maintenance.
func (rc *runContext) qualitySignal(c *CandidateGame) float64 {
	metacritic := clamp01(c.Metacritic / 100)
	recs := logNorm(float64(c.Recommendations), 500000)
	achievements := math.Min(float64(c.AchievementCount)/50, 1)

	maintenance := 1.0
	if age := rc.ageYears(c.ReleaseDate); age > 0 {
		maintenance = math.Max(0, 1-age/qualityMaintenanceYears)
	}

	mw, rw := qualityMetacriticWeight, qualityRecsWeight
	reviews := 0.0
	vw := 0.0
	if c.ReviewCount > 0 {
		reviews = c.ReviewPositive * logNorm(float64(c.ReviewCount), 100000)
		vw = qualityReviewsWeight
	} else {
		// No review data: its 20% share moves to critics and recs.
		mw += 0.1
		rw += 0.1
	}

	return clamp01(mw*metacritic + rw*recs + vw*reviews +
		qualityAchievementWeight*achievements +
		qualityMaintenanceWeight*maintenance)
}

// popularitySignal is log-normalized player count with a debiasing penalty
// so the most popular title in the pool scores exactly (1 - 0.25) of its
// raw normalized popularity.
func (rc *runContext) popularitySignal(c *CandidateGame) float64 {
	if rc.maxPlayerCount <= 0 || c.PlayerCount <= 0 {
		return 0
	}
	norm := math.Log(float64(c.PlayerCount)+1) / math.Log(float64(rc.maxPlayerCount)+1)
	penalty := 1 - popularityPenaltyFactor*norm
	return clamp01(norm * penalty)
}

// recencySignal decays linearly from release over ten years. Unreleased
// titles score full recency.
func (rc *runContext) recencySignal(c *CandidateGame) float64 {
	age := rc.ageYears(c.ReleaseDate)
	if age <= 0 {
		return 1
	}
	return math.Max(0, 1-age/recencyYears)
}

// diversitySignal rewards candidates outside the user's dominant genres:
// the inverse of the candidate's average genre weight relative to the
// profile's maximum, scaled by 0.5.
func (rc *runContext) diversitySignal(c *CandidateGame) float64 {
	if rc.maxGenreWeight <= 0 || len(c.Genres) == 0 {
		return 0
	}
	var sum float64
	for _, g := range c.Genres {
		sum += rc.genreWeights[strings.ToLower(g)]
	}
	avg := sum / float64(len(c.Genres))
	return clamp01(1-avg/rc.maxGenreWeight) * 0.5
}

// engagementCurveBonus projects favorable play curves onto similar
// candidates: the best genre-overlap fraction across user games whose
// curve multiplier exceeds the threshold.
func (rc *runContext) engagementCurveBonus(c *CandidateGame) float64 {
	if len(c.Genres) == 0 {
		return 0
	}
	candGenres := tagSet(c.Genres)

	best := 0.0
	for i := range rc.userGames {
		u := &rc.userGames[i]
		if rc.pattern(u).Multiplier() <= curveBonusThreshold {
			continue
		}
		overlap := intersectionSize(candGenres, tagSet(u.Genres))
		frac := float64(overlap) / float64(len(candGenres))
		if frac > best {
			best = frac
		}
	}
	return best
}

// negativeSignal is the cosine similarity between the candidate's tag
// vector and the rejection profile, scaled by the profile's strength.
func (rc *runContext) negativeSignal(c *CandidateGame) float64 {
	if rc.negative == nil || rc.negative.strength == 0 || len(rc.negative.features) == 0 {
		return 0
	}

	v := make(map[string]float64, len(c.Genres)+len(c.Themes)+1)
	for _, t := range c.Genres {
		v[strings.ToLower(t)] = 1
	}
	for _, t := range c.Themes {
		v[strings.ToLower(t)] = 1
	}
	if c.Developer != "" {
		v[strings.ToLower(c.Developer)] = 1
	}

	return clamp01(cosineSparse(rc.negative.features, v) * rc.negative.strength)
}

// sharedTags returns the candidate tags the profile also carries, ordered
// by profile weight descending, capped at three.
func (rc *runContext) sharedTags(tags []string, prefix string) []string {
	type weighted struct {
		tag string
		w   float64
	}
	var hits []weighted
	for _, t := range tags {
		if w, ok := rc.profileVec[prefix+strings.ToLower(strings.TrimSpace(t))]; ok && w > 0 {
			hits = append(hits, weighted{t, w})
		}
	}
	if len(hits) == 0 {
		return nil
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].w > hits[j-1].w; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	if len(hits) > 3 {
		hits = hits[:3]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.tag
	}
	return out
}

// ageYears returns the candidate age in fractional years, negative for
// future release dates and zero for unparsable ones.
func (rc *runContext) ageYears(releaseDate string) float64 {
	t, ok := parseReleaseDate(releaseDate)
	if !ok {
		return 0
	}
	return rc.now.Sub(t).Hours() / (24 * 365.25)
}

// cosineSparse computes cosine similarity between two sparse vectors.
// Accumulation runs over sorted keys so identical inputs always produce
// bit-identical results; float addition is not associative and Go map
// iteration order varies run to run.
func cosineSparse(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, normA, normB float64
	for _, k := range sortedKeys(a) {
		av := a[k]
		if bv, ok := b[k]; ok {
			dot += av * bv
		}
		normA += av * av
	}
	for _, k := range sortedKeys(b) {
		bv := b[k]
		normB += bv * bv
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortedKeys returns a sparse vector's keys in ascending order.
func sortedKeys(v map[string]float64) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cosineDense computes cosine similarity between two equal-length vectors.
func cosineDense(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// logNorm maps a count into [0,1] on a log scale against a fixed ceiling.
func logNorm(n, ceiling float64) float64 {
	if n <= 0 {
		return 0
	}
	return clamp01(math.Log(n+1) / math.Log(ceiling+1))
}

// clamp01 bounds a value to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
