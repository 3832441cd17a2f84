//go:build wireinject
// +build wireinject

package di

import (
	"PairPull/pkg/config"
	"PairPull/pkg/server"

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
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideBroker,
		ProvideMarketData,
		ProvideJournalStore,
		ProvideEventPublisher,
		ProvideJournal,
		ProvideKafkaHandlers,

		// Strategy
		ProvideParams,
		ProvideEngine,
		ProvideEvaluator,
		ProvideSizer,

		// Use cases
		ProvideLifecycle,
		ProvideStatus,
		ProvideQuoteMonitor,
		ProvideAlertQueue,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
