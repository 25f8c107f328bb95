package service

import (
	"context"
	"fmt"

	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// Mirror receives a copy of the unified tables of a season.
type Mirror interface {
	ReplaceSeason(ctx context.Context, seasonKey string, t *repository.Tables) error
}

type UnifyService struct {
	store  *repository.FileStore
	mirror Mirror
	logger zerolog.Logger
}

func NewUnifyService(store *repository.FileStore, mirror Mirror, logger zerolog.Logger) *UnifyService {
	return &UnifyService{
		store:  store,
		mirror: mirror,
		logger: logger,
	}
}

// Unify rebuilds the league-wide tables of a season from its per-match tables and the
// index, then mirrors them into the database. A mirror failure leaves the CSV tables in
// place and is returned.
func (s *UnifyService) Unify(ctx context.Context, season domain.SeasonDescriptor) (*repository.Tables, error) {
	store := s.store.Season(season)

	tables, err := store.CollectTables()
	if err != nil {
		s.logger.Error().Err(err).Str("season", season.Key()).Msg("failed to collect match tables")
		return nil, fmt.Errorf("failed to collect match tables: %w", err)
	}
	if err := store.SaveUnified(tables); err != nil {
		s.logger.Error().Err(err).Str("season", season.Key()).Msg("failed to write unified tables")
		return nil, fmt.Errorf("failed to write unified tables: %w", err)
	}

	if s.mirror == nil {
		return tables, nil
	}
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()
	if err := s.mirror.ReplaceSeason(ctx, season.Key(), tables); err != nil {
		s.logger.Error().Err(err).Str("season", season.Key()).Msg("failed to mirror unified tables")
		return tables, fmt.Errorf("failed to mirror unified tables: %w", err)
	}
	return tables, nil
}
