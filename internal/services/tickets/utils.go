package tickets

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrInvalidTicket        = errors.New("subject and message are required and email must be valid")
	ErrInvalidResponse      = errors.New("response text is required")
	ErrInvalidStatusFilter  = errors.New("status must be one of open, in_progress, resolved, closed")
	ErrAdminUsernameMissing = errors.New("admin username is required")
)

var ErrorMap = map[error]int{
	ErrTicketNotFound:           http.StatusNotFound,
	ErrInvalidTicket:            http.StatusBadRequest,
	ErrInvalidResponse:          http.StatusBadRequest,
	ErrInvalidStatusFilter:      http.StatusBadRequest,
	ErrAdminUsernameMissing:     http.StatusBadRequest,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const notificationPreviewLength = 100

// preview shortens text to notificationPreviewLength runes, marking the cut
// with "...".
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= notificationPreviewLength {
		return text
	}
	return string(runes[:notificationPreviewLength]) + "..."
}

func validStatus(status string) bool {
	switch status {
	case mongodb.TicketStatusOpen, mongodb.TicketStatusInProgress,
		mongodb.TicketStatusResolved, mongodb.TicketStatusClosed:
		return true
	}
	return false
}
