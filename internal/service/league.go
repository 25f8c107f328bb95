package service

import (
	"errors"
	"fmt"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/league"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
)

var ErrTeamNotFound = errors.New("team not found in league")

type LeagueService struct {
	cfg    *config.Config
	store  *repository.FileStore
	logger zerolog.Logger
}

func NewLeagueService(cfg *config.Config, store *repository.FileStore, logger zerolog.Logger) *LeagueService {
	return &LeagueService{cfg: cfg, store: store, logger: logger}
}

// Seasons lists the configured registry.
func (s *LeagueService) Seasons() []domain.SeasonDescriptor {
	return s.cfg.Seasons
}

// League aggregates the unified tables of a season. Empty season means the active one.
func (s *LeagueService) League(seasonName string) (*league.League, domain.SeasonDescriptor, error) {
	season, err := s.cfg.ResolveSeason(seasonName)
	if err != nil {
		return nil, season, fmt.Errorf("failed to resolve season: %w", err)
	}

	tables, err := s.store.Season(season).LoadUnified()
	if err != nil {
		s.logger.Error().Err(err).Str("season", season.Key()).Msg("failed to load unified tables")
		return nil, season, fmt.Errorf("failed to load unified tables: %w", err)
	}

	l := league.Aggregate(tables.Rosters, tables.Matches)
	s.logger.Debug().Str("season", season.Key()).Int("teams", len(l.Teams)).Msg("league aggregated")
	return l, season, nil
}

// Team reports one team against the league reference. Empty team means the target club.
func (s *LeagueService) Team(seasonName, team string) (league.TeamReport, error) {
	if team == "" {
		team = s.cfg.TargetClub
	}
	l, _, err := s.League(seasonName)
	if err != nil {
		return league.TeamReport{}, err
	}

	report, ok := l.Report(team)
	if !ok {
		return league.TeamReport{}, fmt.Errorf("%w: %s", ErrTeamNotFound, domain.CanonicalTeam(team))
	}
	return report, nil
}

// Rounds reports extraction completeness per round from the season index.
func (s *LeagueService) Rounds(seasonName string) ([]league.RoundStatus, domain.SeasonDescriptor, error) {
	season, err := s.cfg.ResolveSeason(seasonName)
	if err != nil {
		return nil, season, fmt.Errorf("failed to resolve season: %w", err)
	}

	index, err := s.store.Season(season).LoadIndex()
	if err != nil {
		s.logger.Error().Err(err).Str("season", season.Key()).Msg("failed to load index")
		return nil, season, fmt.Errorf("failed to load index: %w", err)
	}
	return league.RoundCompleteness(index, s.cfg.RoundCompleteness), season, nil
}
