package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var season = domain.SeasonDescriptor{Name: "2024-25", Competition: 11, Group: 22, Season: 20, Rounds: 30, Active: true}

func newSeasonStore(t *testing.T) *SeasonStore {
	t.Helper()
	return NewFileStore(&config.Config{DataRoot: t.TempDir()}, zerolog.Nop()).Season(season)
}

func sampleRecord() *domain.MatchRecord {
	match := domain.Match{Season: season, Round: 3, Home: "PENYA INDEPENDENT", Away: "C.E. SANT PERE B", SheetCode: "77", Extracted: false}
	return &domain.MatchRecord{
		Match: match,
		Roster: []domain.RosterEntry{
			{ShirtNumber: 9, Player: "FONT, JAN", Team: match.Home, Status: domain.StatusStarter, Venue: domain.VenueHome, Opponent: match.Away, Round: 3, Goals: 1, MinutesPlayed: 60, PlayerID: domain.PlayerID(match.Home, "FONT, JAN")},
			{ShirtNumber: 12, Player: "RIERA, TONI", Team: match.Home, Status: domain.StatusSubstitute, Venue: domain.VenueHome, Opponent: match.Away, Round: 3, MinutesPlayed: 30, PlayerID: domain.PlayerID(match.Home, "RIERA, TONI")},
			{ShirtNumber: 4, Player: "GIL, SERGI", Team: match.Away, Status: domain.StatusStarter, Venue: domain.VenueAway, Opponent: match.Home, Round: 3, RedCards: 1, MinutesPlayed: 90, PlayerID: domain.PlayerID(match.Away, "GIL, SERGI")},
		},
		Goals: []domain.GoalEvent{
			{Round: 3, Minute: 47, Player: "FONT, JAN", Kind: domain.GoalPenalty, Team: match.Home},
		},
		Cards: []domain.CardEvent{
			{Round: 3, Minute: 20, Player: "GIL, SERGI", Colour: domain.CardYellow, Team: match.Away},
			{Round: 3, Minute: 80, Player: "GIL, SERGI", Colour: domain.CardYellow, Team: match.Away, SecondYellow: true},
		},
		Substitutions: []domain.Substitution{
			{Round: 3, Minute: 60, PlayerIn: "RIERA, TONI", PlayerOut: "FONT, JAN", Team: match.Home},
		},
		Warnings: []domain.Warning{
			{Kind: domain.WarnStartersCount, Detail: "C.E. SANT PERE B lists 10 starters"},
		},
	}
}

func TestSaveMatchLayout(t *testing.T) {
	store := newSeasonStore(t)
	rec := sampleRecord()
	require.NoError(t, store.SaveMatch(rec))

	for _, rel := range []string{
		"rosters/roster_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv",
		"goals/goals_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv",
		"substitutions/subs_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv",
		"cards/cards_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv",
		"warnings/warnings_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv",
	} {
		require.FileExists(t, filepath.Join(store.Dir(), rel))
	}
	require.Equal(t, filepath.Join("20_11_22"), filepath.Base(store.Dir()))

	roster, err := os.ReadFile(store.RosterPath(rec.Match.Key()))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(roster)), "\n")
	require.Equal(t, "shirt_number,player,team,status,venue,opponent,round,goals,yellow_cards,red_cards,minutes_played,player_id", lines[0])
	require.Len(t, lines, 4)

	goals, err := os.ReadFile(filepath.Join(store.Dir(), "goals", "goals_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv"))
	require.NoError(t, err)
	require.Equal(t, "round,minute,player,kind,team\n3,47,\"FONT, JAN\",penalty,PENYA INDEPENDENT\n", string(goals))

	subs, err := os.ReadFile(filepath.Join(store.Dir(), "substitutions", "subs_R3_PENYA_INDEPENDENT_vs_C_E_SANT_PERE_B.csv"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(subs), "player_in,player_out,minute,team,round\n"))
}

func TestSaveMatchRoundTrip(t *testing.T) {
	store := newSeasonStore(t)
	rec := sampleRecord()
	require.NoError(t, store.SaveMatch(rec))

	loaded, err := store.LoadMatch(rec.Match)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, loaded); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveMatchIsIdempotent(t *testing.T) {
	store := newSeasonStore(t)
	rec := sampleRecord()
	require.NoError(t, store.SaveMatch(rec))
	first := snapshot(t, store.Dir())

	require.NoError(t, store.SaveMatch(sampleRecord()))
	require.Equal(t, first, snapshot(t, store.Dir()))
}

func TestSaveMatchWithoutEvents(t *testing.T) {
	store := newSeasonStore(t)
	rec := sampleRecord()
	rec.Goals, rec.Cards, rec.Substitutions, rec.Warnings = nil, nil, nil, nil
	require.NoError(t, store.SaveMatch(rec))

	loaded, err := store.LoadMatch(rec.Match)
	require.NoError(t, err)
	require.Empty(t, loaded.Goals)
	require.Len(t, loaded.Roster, 3)
}

func TestIndex(t *testing.T) {
	store := newSeasonStore(t)

	index, err := store.LoadIndex()
	require.NoError(t, err)
	require.Empty(t, index)

	round2 := []domain.Match{
		{Season: season, Round: 2, Home: "A", Away: "B", SheetCode: "1", SheetURL: "u1"},
		{Season: season, Round: 2, Home: "C", Away: "D"},
	}
	round1 := []domain.Match{
		{Season: season, Round: 1, Home: "B", Away: "A", SheetCode: "9", SheetURL: "u9"},
	}
	index = MergeRound(index, round2)
	index = MergeRound(index, round1)
	require.True(t, MarkExtracted(index, domain.MatchKey{Round: 2, Home: "A", Away: "B"}))
	require.False(t, MarkExtracted(index, domain.MatchKey{Round: 5, Home: "A", Away: "B"}))

	// a rescan keeps the flag and picks up a newly published sheet
	rescan := []domain.Match{
		{Season: season, Round: 2, Home: "A", Away: "B", SheetCode: "1", SheetURL: "u1"},
		{Season: season, Round: 2, Home: "C", Away: "D", SheetCode: "2", SheetURL: "u2"},
	}
	index = MergeRound(index, rescan)

	require.NoError(t, store.SaveIndex(index))
	loaded, err := store.LoadIndex()
	require.NoError(t, err)

	expected := []domain.Match{
		{Season: season, Round: 1, Home: "B", Away: "A", SheetCode: "9", SheetURL: "u9"},
		{Season: season, Round: 2, Home: "A", Away: "B", SheetCode: "1", SheetURL: "u1", Extracted: true},
		{Season: season, Round: 2, Home: "C", Away: "D", SheetCode: "2", SheetURL: "u2"},
	}
	if diff := cmp.Diff(expected, loaded); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(filepath.Join(store.Dir(), "index.csv"))
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"season_id,competition_id,group_id,round,home,away,sheet_code,sheet_url,extracted",
		"20,11,22,1,B,A,9,u9,No",
		"20,11,22,2,A,B,1,u1,Yes",
		"20,11,22,2,C,D,2,u2,No",
	}, "\n")+"\n", string(raw))
}

func TestSyncExtracted(t *testing.T) {
	store := newSeasonStore(t)
	rec := sampleRecord()
	require.NoError(t, store.SaveMatch(rec))

	index := []domain.Match{
		rec.Match,
		{Season: season, Round: 3, Home: "U.E. NORD", Away: "ATLETIC LLEVANT", Extracted: true},
	}
	changed, err := store.SyncExtracted(index)
	require.NoError(t, err)
	require.Equal(t, 2, changed)
	require.True(t, index[0].Extracted)
	require.False(t, index[1].Extracted)
}

func TestUnifiedTables(t *testing.T) {
	store := newSeasonStore(t)
	first := sampleRecord()
	second := sampleRecord()
	second.Match.Round = 4
	second.Match.Home, second.Match.Away = "U.E. NORD", "PENYA INDEPENDENT"
	second.Goals = nil
	for i := range second.Roster {
		second.Roster[i].Round = 4
	}

	index := MergeRound(nil, []domain.Match{first.Match, second.Match})
	for _, rec := range []*domain.MatchRecord{first, second} {
		require.NoError(t, store.SaveMatch(rec))
		MarkExtracted(index, rec.Match.Key())
	}
	require.NoError(t, store.SaveIndex(index))

	tables, err := store.CollectTables()
	require.NoError(t, err)
	require.Len(t, tables.Matches, 2)
	require.Len(t, tables.Rosters, 6)
	require.Len(t, tables.Goals, 1)
	require.Len(t, tables.Cards, 4)
	require.Len(t, tables.Substitutions, 2)

	require.NoError(t, store.SaveUnified(tables))
	for _, name := range []string{"rosters.csv", "goals.csv", "substitutions.csv", "cards.csv", "matches.csv"} {
		require.FileExists(t, filepath.Join(store.Dir(), name))
	}

	unified, err := store.LoadUnified()
	require.NoError(t, err)
	if diff := cmp.Diff(tables, unified); diff != "" {
		t.Fatalf("unified mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadUnifiedBeforeUnify(t *testing.T) {
	_, err := newSeasonStore(t).LoadUnified()
	require.Error(t, err)
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[path] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}
