// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"testing"
)

func TestNormalizeFranchiseTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "Hades", "hades"},
		{"roman numeral", "Hades II", "hades"},
		{"arabic numeral", "Dark Souls 3", "dark souls"},
		{"subtitle after colon", "The Witcher 3: Wild Hunt", "the witcher"},
		{"edition suffix", "Skyrim Special Edition", "skyrim"},
		{"goty suffix", "The Witcher 3 GOTY", "the witcher"},
		{"parenthetical", "Doom (1993)", "doom"},
		{"stacked qualifiers", "Dark Souls III: The Fire Fades Edition (GOTY)", "dark souls"},
		{"em dash subtitle", "Ori – The Will of the Wisps", "ori"},
		{"whitespace", "  Celeste  ", "celeste"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeFranchiseTitle(tt.title); got != tt.want {
				t.Errorf("normalizeFranchiseTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestDetectFranchises(t *testing.T) {
	rc := testRunContext(t)

	userGames := []UserGameSnapshot{
		{ID: "u1", Title: "Hades", Rating: 5, HoursPlayed: 80, ReleaseDate: "2020-09-17", Developer: "Supergiant Games"},
		{ID: "u2", Title: "Celeste", Rating: 4, HoursPlayed: 30, ReleaseDate: "2018-01-25"},
	}
	candidates := []CandidateGame{
		{ID: "c1", Title: "Hades II", ReleaseDate: "2024-05-06", Developer: "Supergiant Games"},
		{ID: "c2", Title: "Stardew Valley", ReleaseDate: "2016-02-26"},
	}

	clusters := rc.detectFranchises(userGames, candidates)

	cluster, ok := clusters["hades"]
	if !ok {
		t.Fatalf("expected hades cluster, got keys %v", clusterKeys(clusters))
	}
	if len(cluster.Entries) != 2 {
		t.Fatalf("hades cluster has %d entries, want 2", len(cluster.Entries))
	}
	if cluster.DisplayName != "Hades" {
		t.Errorf("DisplayName = %q, want Hades (shortest title)", cluster.DisplayName)
	}
	if len(cluster.PlayedIDs) != 1 || cluster.PlayedIDs[0] != "u1" {
		t.Errorf("PlayedIDs = %v, want [u1]", cluster.PlayedIDs)
	}
	if cluster.UserAvgRating != 5 {
		t.Errorf("UserAvgRating = %f, want 5", cluster.UserAvgRating)
	}
	// Release order: Hades (2020) before Hades II (2024).
	if cluster.Entries[0].Title != "Hades" || cluster.Entries[0].Sequence != 0 {
		t.Errorf("first entry = %q seq %d, want Hades seq 0", cluster.Entries[0].Title, cluster.Entries[0].Sequence)
	}

	// Singles never form clusters.
	if _, ok := clusters["celeste"]; ok {
		t.Error("celeste should not form a single-entry cluster")
	}
	if _, ok := clusters["stardew valley"]; ok {
		t.Error("unowned franchise should not form a cluster")
	}
}

func TestFranchiseBoostLovedSeries(t *testing.T) {
	rc := testRunContext(t)

	userGames := []UserGameSnapshot{
		{ID: "u1", Title: "Hades", Rating: 5, HoursPlayed: 80, ReleaseDate: "2020-09-17"},
	}
	candidates := []CandidateGame{
		{ID: "c1", Title: "Hades II", ReleaseDate: "2024-05-06"},
	}

	rc.ownedIDs = map[string]struct{}{"u1": {}}
	rc.franchises = rc.detectFranchises(userGames, candidates)
	rc.candidateFranchise = map[string]*FranchiseCluster{}
	for _, cluster := range rc.franchises {
		for _, entry := range cluster.Entries {
			if !entry.Owned {
				rc.candidateFranchise[entry.GameID] = cluster
			}
		}
	}

	boost, cluster := rc.franchiseBoost(&candidates[0])
	if boost <= 0 {
		t.Fatalf("sequel to a loved game must get a positive boost, got %f", boost)
	}
	if boost > 1 {
		t.Errorf("boost = %f, must stay within [0,1]", boost)
	}
	if cluster == nil || cluster.DisplayName != "Hades" {
		t.Errorf("expected Hades cluster attribution, got %+v", cluster)
	}

	// 1 of 2 played at rating 5: (0.4 + 0.5*0.5) * 1.5.
	want := (0.4 + 0.25) * 1.5
	if diff := boost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("boost = %f, want %f", boost, want)
	}
}

func TestFranchiseBoostPoorlyRatedSeries(t *testing.T) {
	rc := testRunContext(t)

	userGames := []UserGameSnapshot{
		{ID: "u1", Title: "Grindquest", Rating: 2, HoursPlayed: 5, ReleaseDate: "2019-01-01"},
	}
	candidates := []CandidateGame{
		{ID: "c1", Title: "Grindquest 2", ReleaseDate: "2023-01-01"},
	}

	rc.ownedIDs = map[string]struct{}{"u1": {}}
	rc.franchises = rc.detectFranchises(userGames, candidates)
	rc.candidateFranchise = map[string]*FranchiseCluster{}
	for _, cluster := range rc.franchises {
		for _, entry := range cluster.Entries {
			if !entry.Owned {
				rc.candidateFranchise[entry.GameID] = cluster
			}
		}
	}

	boost, _ := rc.franchiseBoost(&candidates[0])
	loved := (0.4 + 0.25) * 1.5
	if boost >= loved {
		t.Errorf("disliked series boost %f should be below loved series boost %f", boost, loved)
	}
}

func TestFranchiseBoostUnratedSeries(t *testing.T) {
	rc := testRunContext(t)

	userGames := []UserGameSnapshot{
		{ID: "u1", Title: "Grindquest", HoursPlayed: 5, ReleaseDate: "2019-01-01"},
	}
	candidates := []CandidateGame{
		{ID: "c1", Title: "Grindquest 2", ReleaseDate: "2023-01-01"},
	}

	rc.ownedIDs = map[string]struct{}{"u1": {}}
	rc.franchises = rc.detectFranchises(userGames, candidates)
	rc.candidateFranchise = map[string]*FranchiseCluster{}
	for _, cluster := range rc.franchises {
		for _, entry := range cluster.Entries {
			if !entry.Owned {
				rc.candidateFranchise[entry.GameID] = cluster
			}
		}
	}

	// 1 of 2 played, no rating at all: the bottom multiplier applies.
	boost, _ := rc.franchiseBoost(&candidates[0])
	want := (0.4 + 0.25) * 0.5
	if diff := boost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("unrated series boost = %f, want %f", boost, want)
	}
}

func clusterKeys(m map[string]*FranchiseCluster) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
