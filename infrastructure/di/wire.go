//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"plant-backend/application/ports"
	"plant-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideS3Client,
	ProvideTableConfig,
	ProvidePlantRepository,
	ProvideUserRepository,
	ProvideImageRepository,
	ProvideSessionRepository,
	ProvideHealthChecker,
	ProvideObjectStore,
	ProvideEventPublisher,
	ProvideMetrics,
	ProvideTracer,
	ProvideDomainConfig,
	ProvideJWTValidator,
	ProvideRateLimiters,
	ProvideInMemoryCache,
	wire.Bind(new(ports.Cache), new(*InMemoryCache)),
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
