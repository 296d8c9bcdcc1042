package di

import (
	"plant-backend/application/commands/bus"
	"plant-backend/application/ports"
	querybus "plant-backend/application/queries/bus"
	domainconfig "plant-backend/domain/config"
	"plant-backend/infrastructure/config"
	"plant-backend/infrastructure/persistence/dynamodb"
	"plant-backend/interfaces/http/rest"
	"plant-backend/interfaces/http/rest/middleware"
	"plant-backend/pkg/auth"
	"plant-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	DomainConfig  *domainconfig.DomainConfig
	Logger        *zap.Logger
	PlantRepo     ports.PlantRepository
	UserRepo      ports.UserRepository
	ImageRepo     ports.ImageRepository
	SessionRepo   ports.SessionRepository
	ObjectStore   ports.ObjectStore
	Publisher     ports.EventPublisher
	CommandBus    *bus.CommandBus
	QueryBus      *querybus.QueryBus
	Cache         *InMemoryCache
	Metrics       *observability.Metrics
	Tracer        *observability.Tracer
	JWTValidator  *auth.JWTValidator
	RateLimiters  *RateLimiters
	HealthChecker *dynamodb.HealthChecker
}

// Shutdown stops background goroutines and flushes the logger
func (c *Container) Shutdown() {
	if c.Cache != nil {
		c.Cache.Stop()
	}
	if c.RateLimiters != nil {
		c.RateLimiters.Stop()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

// Router assembles the HTTP router from the container
func (c *Container) Router() *rest.Router {
	cfg := c.Config
	breaker := middleware.DefaultCircuitBreakerConfig(cfg.ServiceName)
	if cfg.BreakerMaxFailures > 0 {
		breaker.MaxFailures = cfg.BreakerMaxFailures
	}
	if cfg.BreakerTimeout > 0 {
		breaker.Timeout = cfg.BreakerTimeout
	}

	authenticator := middleware.NewAuthenticator(middleware.AuthenticatorConfig{
		Sessions:    c.SessionRepo,
		Users:       c.UserRepo,
		Validator:   c.JWTValidator,
		IPLimiter:   c.RateLimiters.IP,
		UserLimiter: c.RateLimiters.User,
		CookieName:  cfg.SessionCookieName,
		Logger:      c.Logger,
	})

	return rest.NewRouter(c.CommandBus, c.QueryBus, authenticator, c.HealthChecker, rest.RouterConfig{
		ServiceName:        cfg.ServiceName,
		Version:            cfg.Version,
		EnableCORS:         cfg.EnableCORS,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Breaker:            breaker,
		Debug:              cfg.IsDevelopment(),
	}, c.Logger)
}
