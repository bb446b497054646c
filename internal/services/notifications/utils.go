package notifications

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrInvalidMarkRead     = errors.New("kind must be 'movie' or 'support' and key is required")
	ErrInvalidAnnouncement = errors.New("announcement title and message are required")
	ErrUsernameRequired    = errors.New("username is required")
)

var ErrorMap = map[error]int{
	ErrInvalidMarkRead:          http.StatusBadRequest,
	ErrInvalidAnnouncement:      http.StatusBadRequest,
	ErrUsernameRequired:         http.StatusBadRequest,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

var validate = validator.New(validator.WithRequiredStructEnabled())
