package auth

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidToken          = errors.New("access token is invalid")
	ErrTokenExpired          = errors.New("access token has expired")
	ErrTokenWithNoSubject    = errors.New("access token does not name a user")
	ErrNoAuthorizationHeader = errors.New("missing Authorization header")
	ErrMalformedAuthHeader   = errors.New("authorization header must use the Bearer scheme")
	ErrNoTokenInAuthHeader   = errors.New("authorization header has an empty bearer token")
	ErrInvalidCredentials    = errors.New("invalid username, email or password")
)

// ErrorsMap covers every error the package returns to a client; all of them
// are authentication failures.
var ErrorsMap = map[error]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrTokenExpired:          http.StatusUnauthorized,
	ErrTokenWithNoSubject:    http.StatusUnauthorized,
	ErrNoAuthorizationHeader: http.StatusUnauthorized,
	ErrMalformedAuthHeader:   http.StatusUnauthorized,
	ErrNoTokenInAuthHeader:   http.StatusUnauthorized,
	ErrInvalidCredentials:    http.StatusUnauthorized,
}
