package movies

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrMovieNotFound      = errors.New("movie not found")
	ErrMovieAlreadyExists = errors.New("a movie with this slug already exists")
	ErrInvalidMovie       = errors.New("invalid movie fields")
	ErrEmptyUpdate        = errors.New("no fields to update")
	ErrInvalidSort        = errors.New("sort must be one of newest, highest, most_reviewed")
)

var ErrorMap = map[error]int{
	ErrMovieNotFound:            http.StatusNotFound,
	ErrMovieAlreadyExists:       http.StatusConflict,
	ErrInvalidMovie:             http.StatusBadRequest,
	ErrEmptyUpdate:              http.StatusBadRequest,
	ErrInvalidSort:              http.StatusBadRequest,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const maxSlugLength = 200

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL-safe slug: lower case ASCII letters and
// digits separated by single dashes. "The Dark Knight (2008)" becomes
// "the-dark-knight-2008".
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

func validSort(sort string) bool {
	switch sort {
	case "", mongodb.MovieSortNewest, mongodb.MovieSortHighest, mongodb.MovieSortMostReviewed:
		return true
	}
	return false
}
