package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"penya-tracker/internal/config"
	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type PlayerService struct {
	cfg    *config.Config
	repo   *repository.LeagueRepository
	logger zerolog.Logger
}

func NewPlayerService(cfg *config.Config, repo *repository.LeagueRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{cfg: cfg, repo: repo, logger: logger}
}

// Squad lists the season totals of every player of team from the league mirror. Empty
// team means the target club.
func (s *PlayerService) Squad(ctx context.Context, seasonName, team string) ([]repository.PlayerSeason, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	season, err := s.cfg.ResolveSeason(seasonName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season: %w", err)
	}

	team, err = url.QueryUnescape(team)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape team: %w", err)
	}
	if team == "" {
		team = s.cfg.TargetClub
	}
	team = domain.CanonicalTeam(team)

	s.logger.Info().Str("season", season.Key()).Str("team", team).Msg("getting squad")

	squad, err := s.repo.Squad(ctx, season.Key(), team)
	if err != nil {
		s.logger.Error().Err(err).Str("team", team).Msg("failed to get squad")
		return nil, err
	}
	if len(squad) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, team)
	}
	return squad, nil
}

func (s *PlayerService) Player(ctx context.Context, seasonName, playerID string) (*repository.PlayerSeason, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	season, err := s.cfg.ResolveSeason(seasonName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season: %w", err)
	}

	p, err := s.repo.Player(ctx, season.Key(), playerID)
	if err != nil {
		if !errors.Is(err, repository.ErrPlayerNotFound) {
			s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to get player")
		}
		return nil, err
	}
	return p, nil
}
