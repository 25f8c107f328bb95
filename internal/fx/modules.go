package fx

import (
	"penya-tracker/internal/config"
	"penya-tracker/internal/database"
	"penya-tracker/internal/fetcher"
	"penya-tracker/internal/logger"
	"penya-tracker/internal/reconcile"
	"penya-tracker/internal/repository"
	"penya-tracker/internal/server"
	"penya-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideRunRecorder(repo *repository.RunRepository) service.RunRecorder {
	return repo
}

func ProvideMirror(repo *repository.LeagueRepository) service.Mirror {
	return repo
}

// Module is everything that reads the persisted dataset.
var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewFileStore),
	fx.Provide(repository.NewRunRepository),
	fx.Provide(repository.NewLeagueRepository),
	fx.Provide(ProvideRunRecorder),
	fx.Provide(ProvideMirror),
	// svc
	fx.Provide(service.NewUnifyService),
	fx.Provide(service.NewLeagueService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchDetailService),
	fx.Provide(service.NewRunService),
)

// ExtractModule adds the fetch and reconcile stack used by the extraction pipeline.
var ExtractModule = fx.Options(
	fx.Provide(fetcher.New),
	fx.Provide(fetcher.NewURLBuilder),
	fx.Provide(reconcile.New),
	fx.Provide(service.NewExtractionService),
)

var ServerModule = fx.Options(
	fx.Provide(server.NewServer),
)
