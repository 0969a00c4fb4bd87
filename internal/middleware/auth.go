package middleware

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/memoria/internal/auth"
	"github.com/mmynk/memoria/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userKey contextKey = "user"
	callKey contextKey = "call"
)

// call is filled in by RequireAuth so outer interceptors can log who called.
type call struct {
	userID string
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if c, ok := ctx.Value(callKey).(*call); ok && user != nil {
		c.userID = user.ID
	}
	return context.WithValue(ctx, userKey, user)
}

// User extracts the authenticated user from the context.
// Returns nil if not found.
func User(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if user := User(ctx); user != nil {
		return user.ID
	}
	if c, ok := ctx.Value(callKey).(*call); ok {
		return c.userID
	}
	return ""
}

// TokenResolver turns a bearer token into the user it was issued to.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// RequireAuth returns an interceptor that validates the bearer token, loads
// its user and adds it to the request context. Procedures listed in public
// are passed through untouched.
func RequireAuth(resolver TokenResolver, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			token, err := BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			user, err := resolver.Resolve(ctx, token)
			if err != nil {
				return nil, connect.NewError(authCode(err), err)
			}

			return next(WithUser(ctx, user), req)
		}
	}
}

func authCode(err error) connect.Code {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrUnknownUser),
		errors.Is(err, auth.ErrInactiveUser):
		return connect.CodeUnauthenticated
	default:
		return connect.CodeInternal
	}
}
