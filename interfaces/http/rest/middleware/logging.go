package middleware

import (
	"context"
	"net/http"
	"time"

	"plant-backend/pkg/auth"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger creates a logging middleware
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The authenticator stores the caller on a derived request, so
			// it shares this holder to report the user id back
			holder := &auth.UserContext{}
			next.ServeHTTP(ww, r.WithContext(withUserHolder(r.Context(), holder)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("remoteAddr", r.RemoteAddr),
				zap.String("userAgent", r.UserAgent()),
			}
			if holder.UserID != "" {
				fields = append(fields, zap.String("userID", holder.UserID))
			}

			level := zapcore.InfoLevel
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case ww.Status() >= http.StatusBadRequest:
				level = zapcore.WarnLevel
			}
			if ce := logger.Check(level, "HTTP Request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}

type userHolderKey struct{}

func withUserHolder(ctx context.Context, holder *auth.UserContext) context.Context {
	return context.WithValue(ctx, userHolderKey{}, holder)
}

// recordUser copies the authenticated caller into the request logger's holder
func recordUser(ctx context.Context, user *auth.UserContext) {
	if holder, ok := ctx.Value(userHolderKey{}).(*auth.UserContext); ok && holder != nil {
		*holder = *user
	}
}
