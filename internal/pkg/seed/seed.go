// Package seed holds the deterministic canonical reference data and its
// idempotent loader. Re-seeding never duplicates a row: every upsert is
// keyed by natural identity.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

// Counts reports how many rows the seed inserted per table.
type Counts struct {
	Competitions int `json:"competitions_inserted"`
	Teams        int `json:"teams_inserted"`
	Aliases      int `json:"aliases_inserted"`
	Matches      int `json:"matches_inserted"`
}

type teamWithAliases struct {
	team    models.Team
	aliases []string
}

var competitions = []models.Competition{
	{ID: "gr-super-league", Name: "Super League Greece", Country: "Greece", Tier: 1},
	{ID: "eng-premier-league", Name: "Premier League", Country: "England", Tier: 1},
	{ID: "fr-ligue-1", Name: "Ligue 1", Country: "France", Tier: 1},
	{ID: "es-la-liga", Name: "La Liga", Country: "Spain", Tier: 1},
	{ID: "it-serie-a", Name: "Serie A", Country: "Italy", Tier: 1},
	{ID: "de-bundesliga", Name: "Bundesliga", Country: "Germany", Tier: 1},
	{ID: "uefa-champions-league", Name: "UEFA Champions League", Country: "UEFA", Tier: 1},
}

var teams = []teamWithAliases{
	{models.Team{ID: "paok", Name: "PAOK", Country: "Greece"}, []string{"PAOK", "ΠΑΟΚ"}},
	{models.Team{ID: "aek", Name: "AEK", Country: "Greece"}, []string{"AEK", "ΑΕΚ"}},
	{models.Team{ID: "olympiacos", Name: "Olympiacos", Country: "Greece"}, []string{"Olympiacos", "Olympiakos", "ΟΛΥΜΠΙΑΚΟΣ"}},
	{models.Team{ID: "panathinaikos", Name: "Panathinaikos", Country: "Greece"}, []string{"Panathinaikos", "ΠΑΝΑΘΗΝΑΪΚΟΣ"}},
	{models.Team{ID: "aris", Name: "Aris", Country: "Greece"}, []string{"Aris", "ΑΡΗΣ"}},
	{models.Team{ID: "man-united", Name: "Manchester United", Country: "England"}, []string{"Manchester United", "Man United", "Man Utd", "MUFC"}},
	{models.Team{ID: "liverpool", Name: "Liverpool", Country: "England"}, []string{"Liverpool", "Liverpool FC"}},
	{models.Team{ID: "man-city", Name: "Manchester City", Country: "England"}, []string{"Manchester City", "Man City"}},
	{models.Team{ID: "arsenal", Name: "Arsenal", Country: "England"}, []string{"Arsenal", "Arsenal FC"}},
	{models.Team{ID: "chelsea", Name: "Chelsea", Country: "England"}, []string{"Chelsea", "Chelsea FC"}},
	{models.Team{ID: "barcelona", Name: "Barcelona", Country: "Spain"}, []string{"Barcelona", "Barca", "FC Barcelona"}},
	{models.Team{ID: "real-madrid", Name: "Real Madrid", Country: "Spain"}, []string{"Real Madrid", "Real Madrid CF"}},
	{models.Team{ID: "atletico-madrid", Name: "Atletico Madrid", Country: "Spain"}, []string{"Atletico Madrid", "Atlético Madrid", "Atletico"}},
	{models.Team{ID: "juventus", Name: "Juventus", Country: "Italy"}, []string{"Juventus", "Juve"}},
	{models.Team{ID: "inter", Name: "Inter", Country: "Italy"}, []string{"Inter", "Inter Milan", "Internazionale"}},
	{models.Team{ID: "milan", Name: "Milan", Country: "Italy"}, []string{"Milan", "AC Milan"}},
	{models.Team{ID: "bayern-munich", Name: "Bayern Munich", Country: "Germany"}, []string{"Bayern Munich", "Bayern", "Bayern München"}},
	{models.Team{ID: "dortmund", Name: "Borussia Dortmund", Country: "Germany"}, []string{"Borussia Dortmund", "Dortmund", "BVB"}},
	{models.Team{ID: "psg", Name: "Paris Saint-Germain", Country: "France"}, []string{"Paris Saint-Germain", "PSG"}},
	{models.Team{ID: "marseille", Name: "Marseille", Country: "France"}, []string{"Marseille", "Olympique de Marseille", "OM"}},
}

var matches = []models.Match{
	{ID: "gr-1", CompetitionID: "gr-super-league", HomeTeamID: "paok", AwayTeamID: "aek", KickoffUTC: mustTime("2026-02-01T18:00:00Z"), Status: "SCHEDULED"},
	{ID: "gr-2", CompetitionID: "gr-super-league", HomeTeamID: "olympiacos", AwayTeamID: "panathinaikos", KickoffUTC: mustTime("2026-02-08T19:30:00Z"), Status: "SCHEDULED"},
	{ID: "gr-3", CompetitionID: "gr-super-league", HomeTeamID: "aris", AwayTeamID: "paok", KickoffUTC: mustTime("2026-02-15T17:00:00Z"), Status: "SCHEDULED"},
	{ID: "gr-4", CompetitionID: "gr-super-league", HomeTeamID: "aek", AwayTeamID: "olympiacos", KickoffUTC: mustTime("2025-12-01T18:00:00Z"), Status: "FINISHED"},
	{ID: "eng-1", CompetitionID: "eng-premier-league", HomeTeamID: "man-united", AwayTeamID: "liverpool", KickoffUTC: mustTime("2026-03-01T15:00:00Z"), Status: "SCHEDULED"},
	{ID: "eng-2", CompetitionID: "eng-premier-league", HomeTeamID: "man-city", AwayTeamID: "arsenal", KickoffUTC: mustTime("2026-03-08T12:30:00Z"), Status: "SCHEDULED"},
	{ID: "eng-3", CompetitionID: "eng-premier-league", HomeTeamID: "chelsea", AwayTeamID: "liverpool", KickoffUTC: mustTime("2026-03-15T17:30:00Z"), Status: "SCHEDULED"},
	{ID: "es-1", CompetitionID: "es-la-liga", HomeTeamID: "barcelona", AwayTeamID: "real-madrid", KickoffUTC: mustTime("2026-02-14T20:00:00Z"), Status: "SCHEDULED"},
	{ID: "it-1", CompetitionID: "it-serie-a", HomeTeamID: "juventus", AwayTeamID: "inter", KickoffUTC: mustTime("2026-02-28T19:45:00Z"), Status: "SCHEDULED"},
	{ID: "de-1", CompetitionID: "de-bundesliga", HomeTeamID: "bayern-munich", AwayTeamID: "dortmund", KickoffUTC: mustTime("2026-03-14T18:30:00Z"), Status: "SCHEDULED"},
	{ID: "uefa-1", CompetitionID: "uefa-champions-league", HomeTeamID: "barcelona", AwayTeamID: "man-city", KickoffUTC: mustTime("2026-04-01T20:00:00Z"), Status: "SCHEDULED"},
	{ID: "uefa-2", CompetitionID: "uefa-champions-league", HomeTeamID: "real-madrid", AwayTeamID: "bayern-munich", KickoffUTC: mustTime("2026-04-08T20:00:00Z"), Status: "SCHEDULED"},
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Apply upserts the canonical seed into the reference store. Safe to run
// any number of times; the second run inserts zero rows.
func Apply(ctx context.Context, store storage.ReferenceStore) (Counts, error) {
	var counts Counts

	for _, c := range competitions {
		inserted, err := store.UpsertCompetition(ctx, c)
		if err != nil {
			return counts, fmt.Errorf("seed competition %s: %w", c.ID, err)
		}
		if inserted {
			counts.Competitions++
		}
	}

	for _, tw := range teams {
		inserted, err := store.UpsertTeam(ctx, tw.team)
		if err != nil {
			return counts, fmt.Errorf("seed team %s: %w", tw.team.ID, err)
		}
		if inserted {
			counts.Teams++
		}
		for _, alias := range tw.aliases {
			norm := models.NormalizeAlias(alias)
			if norm == "" {
				continue
			}
			inserted, err := store.UpsertAlias(ctx, models.TeamAlias{TeamID: tw.team.ID, AliasNorm: norm})
			if err != nil {
				return counts, fmt.Errorf("seed alias %s/%s: %w", tw.team.ID, norm, err)
			}
			if inserted {
				counts.Aliases++
			}
		}
	}

	for _, m := range matches {
		inserted, err := store.UpsertMatch(ctx, m)
		if err != nil {
			return counts, fmt.Errorf("seed match %s: %w", m.ID, err)
		}
		if inserted {
			counts.Matches++
		}
	}

	return counts, nil
}
