//go:build wireinject
// +build wireinject

package di

import (
	"SignalFuse/pkg/config"
	"SignalFuse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideMetrics,
		ProvideLogger,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideCacheService,
		ProvideAside,
		ProvideHTTPClient,

		// Adapters
		ProvideMarketData,
		ProvideMarketStream,
		ProvideOnChainProvider,
		ProvideSentimentProviders,
		ProvideAnalysisStore,
		ProvidePublisher,
		ProvideAnalysts,

		// Use cases
		ProvideTrendSource,
		ProvideOnChainSource,
		ProvideSentimentSource,
		ProvidePriceCollector,
		ProvideEnsemble,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
