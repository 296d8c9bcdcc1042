package auth

import (
	"context"
	"errors"
)

// Method names how a request was authenticated
type Method string

const (
	MethodSession Method = "session"
	MethodJWT     Method = "jwt"
)

// UserContext represents the authenticated caller
type UserContext struct {
	UserID string
	Email  string
	Method Method
}

type contextKey string

const UserContextKey contextKey = "user"

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
