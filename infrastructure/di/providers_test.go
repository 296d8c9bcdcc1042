package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plant-backend/application/commands"
	"plant-backend/application/ports/mocks"
	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	domainconfig "plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/valueobjects"
	"plant-backend/infrastructure/config"
	"plant-backend/infrastructure/messaging/eventbridge"
	"plant-backend/pkg/observability"
)

func TestProvideLogger(t *testing.T) {
	logger, err := ProvideLogger(&config.Config{Environment: "development", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = ProvideLogger(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestProvideEventPublisher_DisabledEventsAreOnlyLogged(t *testing.T) {
	publisher := ProvideEventPublisher(nil, &config.Config{EnableEvents: false}, zap.NewNop())
	_, ok := publisher.(*eventbridge.NopPublisher)
	assert.True(t, ok)
}

func TestProvideJWTValidator(t *testing.T) {
	validator, err := ProvideJWTValidator(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, validator)

	validator, err = ProvideJWTValidator(&config.Config{
		JWTSecret:   "secret",
		JWTIssuer:   "plant-backend",
		JWTAudience: "web, mobile",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, validator)

	token, err := validator.GenerateToken("g-1", "a@example.com")
	require.NoError(t, err)
	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "g-1", claims.UserID)
}

func TestProvideRateLimiters_InProcess(t *testing.T) {
	limiters := ProvideRateLimiters(nil, &config.Config{IPRateLimit: 1, UserRateLimit: 2})
	defer limiters.Stop()

	ctx := context.Background()
	allowed, err := limiters.IP.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _ = limiters.IP.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	// separate scopes never share buckets
	allowed, _ = limiters.User.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
}

func TestProvideCommandBus_DispatchesRegisteredHandlers(t *testing.T) {
	ctx := context.Background()
	plants := new(mocks.MockPlantRepository)
	users := new(mocks.MockUserRepository)
	images := new(mocks.MockImageRepository)
	store := new(mocks.MockObjectStore)
	publisher := new(mocks.MockEventPublisher)

	user, err := entities.ReconstructUser("g-1", "a@example.com", "Ada", "Lovelace", false, false, time.Now())
	require.NoError(t, err)
	users.On("GetByID", mock.Anything, "g-1").Return(user, nil)
	users.On("UpdateVisibility", mock.Anything, user).Return(nil).Once()
	publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil).Once()

	metrics := observability.NewMetrics("test", nil, zap.NewNop())
	commandBus, err := ProvideCommandBus(plants, users, images, store, publisher, mocks.NewMapCache(),
		domainconfig.DefaultDomainConfig(), metrics, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, commandBus.Send(ctx, commands.UpdateVisibilityCommand{UserID: "g-1", IsPublic: true}))
	assert.True(t, user.IsPublic())
	users.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProvideQueryBus_DispatchesRegisteredHandlers(t *testing.T) {
	ctx := context.Background()
	plants := new(mocks.MockPlantRepository)
	users := new(mocks.MockUserRepository)
	images := new(mocks.MockImageRepository)

	name, err := valueobjects.NewPlantName("Fig")
	require.NoError(t, err)
	now := time.Now().UTC()
	plant, err := entities.ReconstructPlant("p-1", "g-1", 1, name, entities.PlantDetails{Source: "store"}, now, now, 1)
	require.NoError(t, err)
	plants.On("GetByID", mock.Anything, "p-1").Return(plant, nil)

	metrics := observability.NewMetrics("test", nil, zap.NewNop())
	queryBus, err := ProvideQueryBus(plants, users, images, mocks.NewMapCache(), observability.NewTracer("test", false),
		metrics, domainconfig.DefaultDomainConfig(), zap.NewNop())
	require.NoError(t, err)

	result, err := queryBus.Ask(ctx, queries.GetPlantQuery{PlantID: "p-1", RequesterID: "g-1"})
	require.NoError(t, err)
	view, ok := result.(*queries.PlantView)
	require.True(t, ok)
	assert.Equal(t, "Fig", view.HumanName)

	_, err = queryBus.Ask(ctx, unknownQuery{})
	assert.ErrorIs(t, err, querybus.ErrHandlerNotFound)
}

type unknownQuery struct{}

func (unknownQuery) Validate() error { return nil }
