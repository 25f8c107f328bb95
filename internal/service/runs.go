package service

import (
	"context"

	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
)

type RunService struct {
	repo   *repository.RunRepository
	logger zerolog.Logger
}

func NewRunService(repo *repository.RunRepository, logger zerolog.Logger) *RunService {
	return &RunService{repo: repo, logger: logger}
}

// Recent lists the latest runs, newest first, without their round summaries.
func (s *RunService) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 || limit > constants.RecentRunsLimit {
		limit = constants.RecentRunsLimit
	}
	runs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list runs")
		return nil, err
	}
	return runs, nil
}

func (s *RunService) Get(ctx context.Context, id string) (*domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.Get(ctx, id)
}
