package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"penya-tracker/internal/config"
	"penya-tracker/internal/database"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/league"
	"penya-tracker/internal/repository"
	"penya-tracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var season = domain.SeasonDescriptor{Name: "2024-25", Competition: 11, Group: 22, Season: 20, Rounds: 30, Active: true}

type testAPI struct {
	router http.Handler
	runID  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		DataRoot:          t.TempDir(),
		TargetClub:        "PENYA INDEPENDENT",
		RoundCompleteness: 1,
		Seasons:           []domain.SeasonDescriptor{season},
	}
	db, err := database.Open(filepath.Join(t.TempDir(), "league.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repository.NewFileStore(cfg, zerolog.Nop())
	runs := repository.NewRunRepository(db, zerolog.Nop())
	mirror := repository.NewLeagueRepository(db, zerolog.Nop())

	match := domain.Match{Season: season, Round: 1, Home: "PENYA INDEPENDENT", Away: "RIVAL", SheetCode: "101", Extracted: true}
	rec := &domain.MatchRecord{
		Match: match,
		Roster: []domain.RosterEntry{
			{ShirtNumber: 9, Player: "GARCIA, PAU", Team: match.Home, Status: domain.StatusStarter, Venue: domain.VenueHome, Opponent: match.Away, Round: 1, Goals: 2, MinutesPlayed: 90, PlayerID: domain.PlayerID(match.Home, "GARCIA, PAU")},
			{ShirtNumber: 4, Player: "MORA, XAVI", Team: match.Away, Status: domain.StatusStarter, Venue: domain.VenueAway, Opponent: match.Home, Round: 1, Goals: 1, YellowCards: 1, MinutesPlayed: 90, PlayerID: domain.PlayerID(match.Away, "MORA, XAVI")},
		},
		Goals: []domain.GoalEvent{
			{Round: 1, Minute: 10, Player: "GARCIA, PAU", Kind: domain.GoalOpenPlay, Team: match.Home},
			{Round: 1, Minute: 30, Player: "MORA, XAVI", Kind: domain.GoalPenalty, Team: match.Away},
			{Round: 1, Minute: 80, Player: "GARCIA, PAU", Kind: domain.GoalOpenPlay, Team: match.Home},
		},
		Cards: []domain.CardEvent{{Round: 1, Minute: 50, Player: "MORA, XAVI", Colour: domain.CardYellow, Team: match.Away}},
	}
	seasonStore := store.Season(season)
	require.NoError(t, seasonStore.SaveMatch(rec))
	require.NoError(t, seasonStore.SaveIndex([]domain.Match{match}))
	_, err = service.NewUnifyService(store, mirror, zerolog.Nop()).Unify(ctx, season)
	require.NoError(t, err)

	runID, err := runs.Start(ctx, season, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, runs.SaveRound(ctx, runID, domain.RoundSummary{Round: 1, Attempted: 1, Succeeded: 1}))
	require.NoError(t, runs.Finish(ctx, runID, domain.StateReady, time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC), nil))

	s := NewServer(
		service.NewLeagueService(cfg, store, zerolog.Nop()),
		service.NewPlayerService(cfg, mirror, zerolog.Nop()),
		service.NewMatchDetailService(cfg, store, zerolog.Nop()),
		service.NewRunService(runs, zerolog.Nop()),
		zerolog.Nop(),
	)
	return &testAPI{router: s.Router(), runID: runID}
}

func (a *testAPI) get(t *testing.T, path string, into any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if into != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
	}
	return rec
}

func TestLeagueEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var seasons struct {
		Seasons []domain.SeasonDescriptor `json:"seasons"`
	}
	rec := api.get(t, "/api/seasons", &seasons)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Equal(t, []domain.SeasonDescriptor{season}, seasons.Seasons)

	var l struct {
		Teams []league.TeamStats `json:"teams"`
	}
	require.Equal(t, http.StatusOK, api.get(t, "/api/league", &l).Code)
	require.Len(t, l.Teams, 2)
	require.Equal(t, "PENYA INDEPENDENT", l.Teams[0].Team)
	require.Equal(t, 2, l.Teams[0].GoalsFor)
	require.Equal(t, 1, l.Teams[0].OppYellows)

	var report league.TeamReport
	require.Equal(t, http.StatusOK, api.get(t, "/api/league/teams/Rival", &report).Code)
	require.Equal(t, "RIVAL", report.Stats.Team)
	require.Equal(t, 2.0, report.Reference.GoalsFor)

	var rounds struct {
		Rounds []league.RoundStatus `json:"rounds"`
	}
	require.Equal(t, http.StatusOK, api.get(t, "/api/rounds", &rounds).Code)
	require.Equal(t, []league.RoundStatus{{Round: 1, Matches: 1, Extracted: 1, Complete: true}}, rounds.Rounds)
}

func TestPlayerAndMatchEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var squad struct {
		Players []repository.PlayerSeason `json:"players"`
	}
	require.Equal(t, http.StatusOK, api.get(t, "/api/league/teams/PENYA%20INDEPENDENT/squad", &squad).Code)
	require.Len(t, squad.Players, 1)
	require.Equal(t, 2, squad.Players[0].Goals)

	var player repository.PlayerSeason
	require.Equal(t, http.StatusOK, api.get(t, "/api/players/"+squad.Players[0].PlayerID, &player).Code)
	require.Equal(t, "GARCIA, PAU", player.Player)

	var detail service.MatchDetail
	require.Equal(t, http.StatusOK, api.get(t, "/api/rounds/1/matches/RIVAL", &detail).Code)
	require.Equal(t, 2, detail.Match.HomeGoals)
	require.Len(t, detail.Timeline, 4)
	require.Equal(t, "card", detail.Timeline[2].Kind)
}

func TestRunEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var runs struct {
		Runs []domain.Run `json:"runs"`
	}
	require.Equal(t, http.StatusOK, api.get(t, "/api/runs", &runs).Code)
	require.Len(t, runs.Runs, 1)
	require.Equal(t, domain.StateReady, runs.Runs[0].State)

	var run domain.Run
	require.Equal(t, http.StatusOK, api.get(t, "/api/runs/"+api.runID, &run).Code)
	require.Len(t, run.Rounds, 1)
}

func TestErrorStatuses(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/league?season=1999-00", http.StatusBadRequest},
		{"/api/league/teams/NOBODY", http.StatusNotFound},
		{"/api/league/teams/NOBODY/squad", http.StatusNotFound},
		{"/api/players/missing", http.StatusNotFound},
		{"/api/rounds/2/matches/RIVAL", http.StatusNotFound},
		{"/api/runs/missing", http.StatusNotFound},
		{"/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := api.get(t, tt.path, nil)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}
