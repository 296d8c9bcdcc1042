package middleware

import (
	"errors"
	"net/http"
	"time"

	pkgerrors "plant-backend/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// errServerFailure marks a request whose handler already answered with a 5xx
var errServerFailure = errors.New("handler returned a server error")

// CircuitBreakerConfig holds configuration for circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// MaxFailures consecutive 5xx responses open the breaker
	MaxFailures uint32
}

// DefaultCircuitBreakerConfig returns a default configuration for circuit breaker
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		MaxFailures: 10,
	}
}

// CircuitBreaker fails fast with 503 while the wrapped handlers keep
// answering with server errors
func CircuitBreaker(config CircuitBreakerConfig, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) func(http.Handler) http.Handler {
	if config.MaxFailures == 0 {
		config.MaxFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := cb.Execute(func() (interface{}, error) {
				ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)

				if ww.Status() >= http.StatusInternalServerError {
					return nil, errServerFailure
				}
				return nil, nil
			})

			switch {
			case err == nil, errors.Is(err, errServerFailure):
				// response already written
			case errors.Is(err, gobreaker.ErrOpenState):
				errHandler.HandleStatus(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable - too many failures")
			case errors.Is(err, gobreaker.ErrTooManyRequests):
				errHandler.HandleStatus(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable - too many requests")
			default:
				logger.Error("Circuit breaker error", zap.Error(err), zap.String("path", r.URL.Path))
				errHandler.HandleStatus(w, r, http.StatusInternalServerError, "Service error")
			}
		})
	}
}
