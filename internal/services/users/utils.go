package users

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrCredentialsAlreadyExists = errors.New("username or email already registered")
	ErrInvalidUsername          = errors.New("username may only contain letters, numbers, '_' and '-'")
	ErrInvalidUser              = errors.New("invalid user fields")
	ErrMissingCredentials       = errors.New("one of the fields username or email is required, together with password")
)

var ErrorMap = map[error]int{
	ErrUserNotFound:             http.StatusNotFound,
	ErrCredentialsAlreadyExists: http.StatusConflict,
	ErrInvalidUsername:          http.StatusBadRequest,
	ErrInvalidUser:              http.StatusBadRequest,
	ErrMissingCredentials:       http.StatusBadRequest,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}
