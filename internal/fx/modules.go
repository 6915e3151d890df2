package fx

import (
	"pitchmap/internal/api"
	"pitchmap/internal/config"
	"pitchmap/internal/database"
	"pitchmap/internal/logger"
	"pitchmap/internal/repository"
	"pitchmap/internal/server"
	"pitchmap/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewPitchRepository),
	// api clients
	fx.Provide(api.NewMLBClient),
	fx.Provide(api.NewHeadshotClient),
	// svc
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewPitchDataService),
	fx.Provide(service.NewHeatmapService),
	// http
	fx.Provide(server.NewHandlers),
)
