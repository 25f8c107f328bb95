package repository

import (
	"context"
	"database/sql"
	"fmt"

	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// LeagueRepository mirrors the unified tables of a season into SQLite for dashboard
// consumers. Every mirror replaces the season wholesale.
type LeagueRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLeagueRepository(sqlDB *sql.DB, logger zerolog.Logger) *LeagueRepository {
	return &LeagueRepository{
		db:     sqlDB,
		logger: logger,
	}
}

var mirrorTables = []string{"league_matches", "league_rosters", "league_goals", "league_cards", "league_substitutions"}

func (r *LeagueRepository) ReplaceSeason(ctx context.Context, seasonKey string, t *Tables) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range mirrorTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE season_key = ?`, table), seasonKey); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	err = insertBatched(ctx, tx, t.Matches, `INSERT OR REPLACE INTO league_matches
		(season_key, round, home, away, sheet_code, sheet_url, extracted) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(m domain.Match) []any {
			return []any{seasonKey, m.Round, m.Home, m.Away, m.SheetCode, m.SheetURL, m.Extracted}
		})
	if err != nil {
		return fmt.Errorf("failed to insert matches: %w", err)
	}

	err = insertBatched(ctx, tx, t.Rosters, `INSERT INTO league_rosters
		(season_key, round, team, opponent, player, player_id, shirt_number, status, venue, goals, yellow_cards, red_cards, minutes_played)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(e domain.RosterEntry) []any {
			return []any{seasonKey, e.Round, e.Team, e.Opponent, e.Player, e.PlayerID, e.ShirtNumber, string(e.Status), string(e.Venue), e.Goals, e.YellowCards, e.RedCards, e.MinutesPlayed}
		})
	if err != nil {
		return fmt.Errorf("failed to insert rosters: %w", err)
	}

	err = insertBatched(ctx, tx, t.Goals, `INSERT INTO league_goals
		(season_key, round, minute, player, kind, team) VALUES (?, ?, ?, ?, ?, ?)`,
		func(g domain.GoalEvent) []any {
			return []any{seasonKey, g.Round, g.Minute, g.Player, string(g.Kind), g.Team}
		})
	if err != nil {
		return fmt.Errorf("failed to insert goals: %w", err)
	}

	err = insertBatched(ctx, tx, t.Cards, `INSERT INTO league_cards
		(season_key, round, minute, player, colour, team, second_yellow) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(c domain.CardEvent) []any {
			return []any{seasonKey, c.Round, c.Minute, c.Player, string(c.Colour), c.Team, c.SecondYellow}
		})
	if err != nil {
		return fmt.Errorf("failed to insert cards: %w", err)
	}

	err = insertBatched(ctx, tx, t.Substitutions, `INSERT INTO league_substitutions
		(season_key, round, minute, player_in, player_out, team) VALUES (?, ?, ?, ?, ?, ?)`,
		func(s domain.Substitution) []any {
			return []any{seasonKey, s.Round, s.Minute, s.PlayerIn, s.PlayerOut, s.Team}
		})
	if err != nil {
		return fmt.Errorf("failed to insert substitutions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mirror: %w", err)
	}

	r.logger.Info().
		Str("season", seasonKey).
		Int("matches", len(t.Matches)).
		Int("rosters", len(t.Rosters)).
		Msg("league mirror replaced")
	return nil
}

// insertBatched runs one prepared insert per row, DBBatchSize rows at a time.
func insertBatched[T any](ctx context.Context, tx *sql.Tx, rows []T, query string, args func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < len(rows); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		for _, row := range rows[i:end] {
			if _, err := stmt.ExecContext(ctx, args(row)...); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Matches returns the mirrored match list of a season ordered by round.
func (r *LeagueRepository) Matches(ctx context.Context, seasonKey string) ([]domain.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT round, home, away, sheet_code, sheet_url, extracted
		FROM league_matches WHERE season_key = ? ORDER BY round, home`, seasonKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.Round, &m.Home, &m.Away, &m.SheetCode, &m.SheetURL, &m.Extracted); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
