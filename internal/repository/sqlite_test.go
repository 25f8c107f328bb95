package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"penya-tracker/internal/database"
	"penya-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "league.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openDB(t), zerolog.Nop())

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	id, err := runs.Start(ctx, season, started)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, runs.UpdateState(ctx, id, domain.StateFetchingSheets))
	summary := domain.RoundSummary{
		Round: 3, Attempted: 9, Succeeded: 8, Retried: 2, Failed: 1, Skipped: 0,
		Failures: []domain.SheetFailure{{Round: 3, Sheet: "sheet 77 (R3 A vs B)", Kind: "timeout", Attempts: 4, Error: "deadline exceeded"}},
	}
	require.NoError(t, runs.SaveRound(ctx, id, summary))
	// saving a round again replaces it
	require.NoError(t, runs.SaveRound(ctx, id, summary))
	require.NoError(t, runs.SaveRound(ctx, id, domain.RoundSummary{Round: 4, IndexError: "round page unreachable"}))
	require.NoError(t, runs.Finish(ctx, id, domain.StateReady, started.Add(time.Minute), nil))

	run, err := runs.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StateReady, run.State)
	require.Equal(t, season.Key(), run.SeasonKey)
	require.Equal(t, "2024-25", run.SeasonName)
	require.True(t, run.StartedAt.Equal(started))
	require.NotNil(t, run.FinishedAt)
	require.Len(t, run.Rounds, 2)
	require.Equal(t, summary, run.Rounds[0])
	require.Equal(t, "round page unreachable", run.Rounds[1].IndexError)

	recent, err := runs.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Empty(t, recent[0].Rounds)

	_, err = runs.Get(ctx, "missing")
	require.True(t, errors.Is(err, ErrRunNotFound))
}

func TestRunFinishRecordsError(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openDB(t), zerolog.Nop())

	id, err := runs.Start(ctx, season, time.Now())
	require.NoError(t, err)
	require.NoError(t, runs.Finish(ctx, id, domain.StateCancelled, time.Now(), context.Canceled))

	run, err := runs.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StateCancelled, run.State)
	require.Equal(t, "context canceled", run.Error)
}

func TestLeagueMirror(t *testing.T) {
	ctx := context.Background()
	repo := NewLeagueRepository(openDB(t), zerolog.Nop())

	rec := sampleRecord()
	rec.Match.Extracted = true
	tables := &Tables{
		Matches:       []domain.Match{rec.Match},
		Rosters:       rec.Roster,
		Goals:         rec.Goals,
		Cards:         rec.Cards,
		Substitutions: rec.Substitutions,
	}
	require.NoError(t, repo.ReplaceSeason(ctx, season.Key(), tables))
	// replacing is wholesale, not additive
	require.NoError(t, repo.ReplaceSeason(ctx, season.Key(), tables))

	matches, err := repo.Matches(ctx, season.Key())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.True(t, matches[0].Extracted)
	require.Equal(t, "77", matches[0].SheetCode)

	squad, err := repo.Squad(ctx, season.Key(), "Penya Independent")
	require.NoError(t, err)
	require.Len(t, squad, 2)
	require.Equal(t, "FONT, JAN", squad[0].Player)
	require.Equal(t, PlayerSeason{
		PlayerID:      domain.PlayerID("PENYA INDEPENDENT", "FONT, JAN"),
		Player:        "FONT, JAN",
		Team:          "PENYA INDEPENDENT",
		Matches:       1,
		Starts:        1,
		Goals:         1,
		MinutesPlayed: 60,
	}, squad[0])

	player, err := repo.Player(ctx, season.Key(), domain.PlayerID("C.E. SANT PERE B", "GIL, SERGI"))
	require.NoError(t, err)
	require.Equal(t, 1, player.RedCards)

	_, err = repo.Player(ctx, season.Key(), "nobody")
	require.True(t, errors.Is(err, ErrPlayerNotFound))

	other, err := repo.Matches(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, other)
}
