//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideSpotCache,
		ProvideClickHouseClient,
		ProvidePublisher,

		// Repositories
		ProvideUserStore,
		ProvidePredictionStore,
		ProvideCandleStore,

		// Domain services
		ProvideGeckoClient,
		ProvidePriceProvider,
		ProvideSentiment,
		ProvideScorer,

		// Use cases
		ProvideGenerator,
		ProvideScheduler,
		ProvideSettler,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
