//go:build wireinject
// +build wireinject

package di

import (
	"dashgate/internal"
	"dashgate/internal/controllers"
	"dashgate/internal/conversation"
	"dashgate/internal/gateway"
	"dashgate/internal/providers"
	"dashgate/internal/services"
	"dashgate/internal/session"
	"dashgate/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		gateway.NewTokenSource,
		gateway.NewClient,
		conversation.NewNormalizer,
		services.NewQuestionsFetcher,
		session.NewRegistry,
		services.NewDashboardService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
