package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"plant-backend/application/ports"
	"plant-backend/pkg/auth"
	pkgerrors "plant-backend/pkg/errors"

	"go.uber.org/zap"
)

const credentialsMessage = "Could not validate credentials"

var (
	errInvalidSession = errors.New("session revoked or expired")
	errUserDisabled   = errors.New("user is disabled")
)

// Authenticator resolves the caller from a session cookie or a bearer token
type Authenticator struct {
	sessions    ports.SessionRepository
	users       ports.UserRepository
	validator   *auth.JWTValidator
	ipLimiter   auth.RateLimiter
	userLimiter auth.RateLimiter
	cookieName  string
	errHandler  *pkgerrors.ErrorHandler
	logger      *zap.Logger
	now         func() time.Time
}

// AuthenticatorConfig holds the dependencies of an Authenticator.
// A nil Validator disables bearer tokens; nil limiters disable rate limiting.
type AuthenticatorConfig struct {
	Sessions    ports.SessionRepository
	Users       ports.UserRepository
	Validator   *auth.JWTValidator
	IPLimiter   auth.RateLimiter
	UserLimiter auth.RateLimiter
	CookieName  string
	ErrHandler  *pkgerrors.ErrorHandler
	Logger      *zap.Logger
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	if cfg.CookieName == "" {
		cfg.CookieName = "session_token"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ErrHandler == nil {
		cfg.ErrHandler = pkgerrors.NewErrorHandler(cfg.Logger, false)
	}
	return &Authenticator{
		sessions:    cfg.Sessions,
		users:       cfg.Users,
		validator:   cfg.Validator,
		ipLimiter:   cfg.IPLimiter,
		userLimiter: cfg.UserLimiter,
		cookieName:  cfg.CookieName,
		errHandler:  cfg.ErrHandler,
		logger:      cfg.Logger,
		now:         time.Now,
	}
}

// Middleware authenticates every request it wraps. The session cookie wins
// over the Authorization header when both are present.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientIP := getClientIP(r)

		if !a.allow(w, r, a.ipLimiter, clientIP, "Rate limit exceeded") {
			return
		}

		userCtx, err := a.resolve(ctx, r)
		if err != nil {
			a.logger.Warn("Authentication failed",
				zap.Error(err),
				zap.String("ip", clientIP),
				zap.String("path", r.URL.Path),
			)
			a.errHandler.HandleStatus(w, r, http.StatusUnauthorized, credentialsMessage)
			return
		}

		if !a.allow(w, r, a.userLimiter, userCtx.UserID, "User rate limit exceeded") {
			return
		}

		recordUser(ctx, userCtx)
		a.logger.Debug("Request authenticated",
			zap.String("user_id", userCtx.UserID),
			zap.String("method", string(userCtx.Method)),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(ctx, userCtx)))
	})
}

func (a *Authenticator) allow(w http.ResponseWriter, r *http.Request, limiter auth.RateLimiter, key, message string) bool {
	if limiter == nil {
		return true
	}
	allowed, err := limiter.Allow(r.Context(), key)
	if err != nil {
		a.logger.Error("Rate limiter error", zap.Error(err))
		a.errHandler.HandleStatus(w, r, http.StatusInternalServerError, "Internal server error")
		return false
	}
	if !allowed {
		a.errHandler.HandleStatus(w, r, http.StatusTooManyRequests, message)
		return false
	}
	return true
}

func (a *Authenticator) resolve(ctx context.Context, r *http.Request) (*auth.UserContext, error) {
	var (
		userID string
		method auth.Method
	)

	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		session, err := a.sessions.GetByID(ctx, cookie.Value)
		if err != nil {
			return nil, err
		}
		if !session.IsValid(a.now()) {
			return nil, errInvalidSession
		}
		userID, method = session.UserID, auth.MethodSession
	} else {
		token := extractBearerToken(r)
		if token == "" {
			return nil, auth.ErrMissingToken
		}
		if a.validator == nil {
			return nil, auth.ErrInvalidToken
		}
		claims, err := a.validator.ValidateToken(token)
		if err != nil {
			return nil, err
		}
		userID, method = claims.UserID, auth.MethodJWT
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Disabled() {
		return nil, errUserDisabled
	}

	return &auth.UserContext{
		UserID: user.GoogleID(),
		Email:  user.Email(),
		Method: method,
	}, nil
}

// extractBearerToken reads the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
