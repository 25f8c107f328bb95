package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"penya-tracker/internal/domain"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerSeason sums the mirrored roster rows of one player id over a season.
type PlayerSeason struct {
	PlayerID      string `json:"player_id"`
	Player        string `json:"player"`
	Team          string `json:"team"`
	Matches       int    `json:"matches"`
	Starts        int    `json:"starts"`
	Goals         int    `json:"goals"`
	YellowCards   int    `json:"yellow_cards"`
	RedCards      int    `json:"red_cards"`
	MinutesPlayed int    `json:"minutes_played"`
}

const playerSeasonSelect = `
	SELECT player_id, MIN(player), team,
		COUNT(DISTINCT round),
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		SUM(goals), SUM(yellow_cards), SUM(red_cards), SUM(minutes_played)
	FROM league_rosters`

func scanPlayerSeason(s scanner) (PlayerSeason, error) {
	var p PlayerSeason
	err := s.Scan(&p.PlayerID, &p.Player, &p.Team, &p.Matches, &p.Starts, &p.Goals, &p.YellowCards, &p.RedCards, &p.MinutesPlayed)
	return p, err
}

// Player returns the season totals of one player id.
func (r *LeagueRepository) Player(ctx context.Context, seasonKey, playerID string) (*PlayerSeason, error) {
	row := r.db.QueryRowContext(ctx, playerSeasonSelect+`
		WHERE season_key = ? AND player_id = ?
		GROUP BY player_id, team`, string(domain.StatusStarter), seasonKey, playerID)
	p, err := scanPlayerSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player %s: %w", playerID, err)
	}
	return &p, nil
}

// Squad returns the season totals of every player of a team, most minutes first.
func (r *LeagueRepository) Squad(ctx context.Context, seasonKey, team string) ([]PlayerSeason, error) {
	rows, err := r.db.QueryContext(ctx, playerSeasonSelect+`
		WHERE season_key = ? AND team = ?
		GROUP BY player_id, team
		ORDER BY SUM(minutes_played) DESC, MIN(player)`, string(domain.StatusStarter), seasonKey, domain.CanonicalTeam(team))
	if err != nil {
		return nil, fmt.Errorf("failed to query squad of %s: %w", team, err)
	}
	defer rows.Close()

	var squad []PlayerSeason
	for rows.Next() {
		p, err := scanPlayerSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		squad = append(squad, p)
	}
	return squad, rows.Err()
}
