package reviews

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrInvalidReview  = errors.New("movie slug and username are required, title and body must be within limits")
	ErrMovieNotFound  = errors.New("movie not found")
	ErrReviewNotFound = errors.New("review not found")
)

var ErrorMap = map[error]int{
	ErrInvalidRating:            http.StatusBadRequest,
	ErrInvalidReview:            http.StatusBadRequest,
	ErrMovieNotFound:            http.StatusNotFound,
	ErrReviewNotFound:           http.StatusNotFound,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateSubmit(req SubmitReviewRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() == "Rating" {
				return ErrInvalidRating
			}
		}
	}
	return ErrInvalidReview
}
