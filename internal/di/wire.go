//go:build wireinject
// +build wireinject

package di

import (
	"FxPilot/internal/handler/api"
	"FxPilot/internal/usecase"
	"FxPilot/pkg/config"
	"FxPilot/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,
		ProvideBridgeClient,

		// Repositories and adapters
		ProvideEventPublisher,
		ProvideExecutor,
		ProvideBroker,
		ProvideMarketSource,
		ProvideSynthesizer,

		// Ticks
		ProvideBarAggregator,
		ProvideTickPipeline,
		ProvideTickCollector,
		ProvideKafkaConsumer,
		ProvideKafkaTicksHandler,

		// Use cases
		ProvideStrategyStore,
		ProvideSignalProvider,
		ProvideExecutionService,
		usecase.NewAccountService,
		usecase.NewWatchlist,
		ProvideAutopilot,
		ProvideMonitor,

		// HTTP
		api.NewHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
