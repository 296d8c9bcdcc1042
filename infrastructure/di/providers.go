package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plant-backend/application/commands"
	"plant-backend/application/commands/bus"
	commandhandlers "plant-backend/application/commands/handlers"
	"plant-backend/application/ports"
	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	queryhandlers "plant-backend/application/queries/handlers"
	domainconfig "plant-backend/domain/config"
	"plant-backend/infrastructure/config"
	"plant-backend/infrastructure/messaging/eventbridge"
	"plant-backend/infrastructure/persistence/dynamodb"
	"plant-backend/infrastructure/storage/s3"
	"plant-backend/pkg/auth"
	"plant-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
// DynamoDBEndpoint points it at DynamoDB Local during development.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideTableConfig names the table and its inverted index
func ProvideTableConfig(cfg *config.Config) dynamodb.TableConfig {
	return dynamodb.TableConfig{
		TableName: cfg.TableName,
		IndexName: cfg.SKPKIndexName,
	}
}

// ProvidePlantRepository creates a plant repository
func ProvidePlantRepository(client *awsdynamodb.Client, table dynamodb.TableConfig, logger *zap.Logger) ports.PlantRepository {
	return dynamodb.NewPlantRepository(client, table, logger)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, table dynamodb.TableConfig, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, table, logger)
}

// ProvideImageRepository creates an image repository
func ProvideImageRepository(client *awsdynamodb.Client, table dynamodb.TableConfig, logger *zap.Logger) ports.ImageRepository {
	return dynamodb.NewImageRepository(client, table, logger)
}

// ProvideSessionRepository creates a session repository
func ProvideSessionRepository(client *awsdynamodb.Client, table dynamodb.TableConfig) ports.SessionRepository {
	return dynamodb.NewSessionRepository(client, table)
}

// ProvideHealthChecker creates the readiness probe
func ProvideHealthChecker(client *awsdynamodb.Client, table dynamodb.TableConfig) *dynamodb.HealthChecker {
	return dynamodb.NewHealthChecker(client, table)
}

// ProvideObjectStore creates the photo object store
func ProvideObjectStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ObjectStore {
	return s3.NewObjectStore(client, cfg.ImageBucket, logger)
}

// ProvideEventPublisher creates an event publisher. With events disabled
// events are only logged.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NewNopPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := cfg.MetricsNamespace
	if namespace == "" {
		namespace = fmt.Sprintf("Plants/%s", cfg.Environment)
	}
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.ServiceName, cfg.EnableTracing)
}

// ProvideDomainConfig loads the business rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, err
	}
	return domainCfg, nil
}

// ProvideJWTValidator creates the bearer token validator. Without a secret
// only session cookies authenticate.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT secret not configured, bearer tokens are disabled")
		return nil, nil
	}

	var audience []string
	if cfg.JWTAudience != "" {
		for _, a := range strings.Split(cfg.JWTAudience, ",") {
			if a = strings.TrimSpace(a); a != "" {
				audience = append(audience, a)
			}
		}
	}

	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  audience,
	})
}

// RateLimiters holds the per-IP and per-user request limits
type RateLimiters struct {
	IP   auth.RateLimiter
	User auth.RateLimiter
}

// Stop ends the janitor goroutines of in-process limiters
func (r *RateLimiters) Stop() {
	for _, l := range []auth.RateLimiter{r.IP, r.User} {
		if s, ok := l.(interface{ Stop() }); ok {
			s.Stop()
		}
	}
}

// ProvideRateLimiters creates the request limiters. Distributed limits
// count in the table so they hold across Lambda instances.
func ProvideRateLimiters(client *awsdynamodb.Client, cfg *config.Config) *RateLimiters {
	if cfg.DistributedRateLimits {
		return &RateLimiters{
			IP:   auth.NewDistributedRateLimiter(client, cfg.TableName, "ip", cfg.IPRateLimit, time.Minute),
			User: auth.NewDistributedRateLimiter(client, cfg.TableName, "user", cfg.UserRateLimit, time.Minute),
		}
	}
	return &RateLimiters{
		IP:   auth.NewScopedLimiter("ip", auth.NewPerMinuteLimiter(cfg.IPRateLimit)),
		User: auth.NewScopedLimiter("user", auth.NewPerMinuteLimiter(cfg.UserRateLimit)),
	}
}

// ProvideInMemoryCache creates a simple in-memory cache
func ProvideInMemoryCache() *InMemoryCache {
	return NewInMemoryCache(time.Minute)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	plantRepo ports.PlantRepository,
	userRepo ports.UserRepository,
	imageRepo ports.ImageRepository,
	objectStore ports.ObjectStore,
	publisher ports.EventPublisher,
	cache ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(&zapLoggerAdapter{logger}),
		bus.MetricsMiddleware(metrics),
	)

	createHandler := commandhandlers.NewCreatePlantHandler(plantRepo, domainCfg, publisher, cache, logger)
	updateHandler := commandhandlers.NewUpdatePlantHandler(plantRepo, domainCfg, publisher, cache, logger)
	cleanupHandler := commands.NewCleanupPlantImagesHandler(imageRepo, objectStore, logger)
	deleteHandler := commandhandlers.NewDeletePlantHandler(plantRepo, cleanupHandler, domainCfg, publisher, cache, logger)
	visibilityHandler := commandhandlers.NewUpdateVisibilityHandler(userRepo, publisher, logger)
	imageHandler := commandhandlers.NewImageCommandHandler(plantRepo, imageRepo, objectStore, logger)

	registrations := []struct {
		cmd     bus.Command
		handler func(context.Context, bus.Command) error
	}{
		{commands.CreatePlantCommand{}, func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreatePlantCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createHandler.Handle(ctx, createCmd)
			return err
		}},
		{commands.UpdatePlantCommand{}, func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdatePlantCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := updateHandler.Handle(ctx, updateCmd)
			return err
		}},
		{commands.DeletePlantCommand{}, func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeletePlantCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		}},
		{commands.UpdateVisibilityCommand{}, func(ctx context.Context, cmd bus.Command) error {
			visibilityCmd, ok := cmd.(commands.UpdateVisibilityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return visibilityHandler.Handle(ctx, visibilityCmd)
		}},
		{commands.CleanupPlantImagesCommand{}, func(ctx context.Context, cmd bus.Command) error {
			cleanupCmd, ok := cmd.(commands.CleanupPlantImagesCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return cleanupHandler.HandleCommand(ctx, cleanupCmd)
		}},
		{commands.UpdateImageCommand{}, func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateImageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := imageHandler.HandleUpdate(ctx, updateCmd)
			return err
		}},
		{commands.DeleteImageCommand{}, func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteImageCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return imageHandler.HandleDelete(ctx, deleteCmd)
		}},
	}

	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, &CommandHandlerAdapter{handler: reg.handler}); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	plantRepo ports.PlantRepository,
	userRepo ports.UserRepository,
	imageRepo ports.ImageRepository,
	cache ports.Cache,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBusWithMetrics(metrics)

	lineageHandler := queryhandlers.NewGetLineageHandler(plantRepo, userRepo, cache, tracer, metrics, domainCfg, logger)
	plantHandler := queryhandlers.NewPlantQueryHandler(plantRepo, userRepo, logger)
	userHandler := queryhandlers.NewUserQueryHandler(userRepo, plantRepo, logger)
	imagesHandler := queryhandlers.NewListImagesHandler(plantRepo, imageRepo, userRepo)
	imageHandler := queryhandlers.NewGetImageHandler(plantRepo, imageRepo, userRepo)

	registrations := []struct {
		query   querybus.Query
		handler func(context.Context, querybus.Query) (interface{}, error)
	}{
		{queries.GetLineageQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetLineageQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return lineageHandler.Handle(ctx, q)
		}},
		{queries.ListPlantsQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListPlantsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return plantHandler.HandleList(ctx, q)
		}},
		{queries.GetPlantQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetPlantQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return plantHandler.HandleGet(ctx, q)
		}},
		{queries.GetPlantByHumanIDQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetPlantByHumanIDQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return plantHandler.HandleGetByHumanID(ctx, q)
		}},
		{queries.ListUsersQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListUsersQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return userHandler.HandleList(ctx, q)
		}},
		{queries.GetCurrentUserQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetCurrentUserQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return userHandler.HandleCurrent(ctx, q)
		}},
		{queries.ListImagesQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListImagesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return imagesHandler.Handle(ctx, q)
		}},
		{queries.GetImageQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetImageQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return imageHandler.Handle(ctx, q)
		}},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, &QueryHandlerAdapter{handler: reg.handler}); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// zapLoggerAdapter adapts zap.Logger to the bus.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, _ := fields[i].(string)
			zapFields = append(zapFields, zap.Any(key, fields[i+1]))
		}
	}
	return zapFields
}
