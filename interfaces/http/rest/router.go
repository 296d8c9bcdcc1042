package rest

import (
	"context"
	"net/http"
	"time"

	"plant-backend/application/commands/bus"
	querybus "plant-backend/application/queries/bus"
	"plant-backend/interfaces/http/rest/handlers"
	"plant-backend/interfaces/http/rest/middleware"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// ReadinessChecker reports whether a dependency can serve requests
type ReadinessChecker interface {
	Check(ctx context.Context) error
}

// RouterConfig holds the HTTP settings of the router
type RouterConfig struct {
	ServiceName        string
	Version            string
	EnableCORS         bool
	CORSAllowedOrigins []string
	Breaker            middleware.CircuitBreakerConfig
	Debug              bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus    *bus.CommandBus
	queryBus      *querybus.QueryBus
	authenticator *middleware.Authenticator
	readiness     ReadinessChecker
	errHandler    *pkgerrors.ErrorHandler
	cfg           RouterConfig
	logger        *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	authenticator *middleware.Authenticator,
	readiness ReadinessChecker,
	cfg RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:    commandBus,
		queryBus:      queryBus,
		authenticator: authenticator,
		readiness:     readiness,
		errHandler:    pkgerrors.NewErrorHandler(logger, cfg.Debug),
		cfg:           cfg,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(chimiddleware.Recoverer)

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errHandler.HandleStatus(w, r, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	plantHandler := handlers.NewPlantHandler(rt.commandBus, rt.queryBus, rt.errHandler, rt.logger)
	lineageHandler := handlers.NewLineageHandler(rt.queryBus, rt.errHandler, rt.logger)
	imageHandler := handlers.NewImageHandler(rt.commandBus, rt.queryBus, rt.errHandler)
	userHandler := handlers.NewUserHandler(rt.commandBus, rt.queryBus, rt.errHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker(rt.cfg.Breaker, rt.errHandler, rt.logger))
		r.Use(rt.authenticator.Middleware)

		r.Get("/auth/check_token", handlers.CheckToken)
		r.Get("/lineages/user/{userID}", lineageHandler.GetLineage)

		r.Route("/plants", func(r chi.Router) {
			r.Post("/create", plantHandler.CreatePlant)
			r.Get("/user/{userID}", plantHandler.ListPlants)
			r.Get("/user/{userID}/{humanID}", plantHandler.GetPlantByHumanID)
			r.Get("/{plantID}", plantHandler.GetPlant)
			r.Patch("/{plantID}", plantHandler.UpdatePlant)
			r.Delete("/{plantID}", plantHandler.DeletePlant)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/plant/{plantID}", imageHandler.ListImages)
			r.Get("/{imageID}", imageHandler.GetImage)
			r.Patch("/{imageID}", imageHandler.UpdateImage)
			r.Delete("/{imageID}", imageHandler.DeleteImage)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Get("/me", userHandler.GetCurrentUser)
			r.Post("/settings/visibility", userHandler.UpdateVisibility)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, common.NewHealthResponse("healthy", rt.cfg.ServiceName, rt.cfg.Version))
}

// readinessCheck verifies the table can be reached
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	resp := common.NewHealthResponse("ready", rt.cfg.ServiceName, rt.cfg.Version)
	if rt.readiness == nil {
		common.RespondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	resp.Checks = map[string]string{"dynamodb": "ok"}
	if err := rt.readiness.Check(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		resp.Status = "not_ready"
		resp.Checks["dynamodb"] = "unavailable"
		common.RespondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	common.RespondJSON(w, http.StatusOK, resp)
}
