package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/lealre/moviereviews/internal/mongodb"
)

type contextKey struct{}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(headers http.Header) (string, error) {
	value := headers.Get("Authorization")
	if value == "" {
		return "", ErrNoAuthorizationHeader
	}

	token, ok := strings.CutPrefix(value, "Bearer ")
	if !ok {
		return "", ErrMalformedAuthHeader
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrNoTokenInAuthHeader
	}
	return token, nil
}

func WithUser(ctx context.Context, user mongodb.UserDb) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// GetUserFromContext returns nil for anonymous requests.
func GetUserFromContext(ctx context.Context) *mongodb.UserDb {
	user, ok := ctx.Value(contextKey{}).(mongodb.UserDb)
	if !ok {
		return nil
	}
	return &user
}
