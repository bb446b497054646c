package reviews

import "github.com/lealre/moviereviews/internal/mongodb"

func MapDbReviewToApiReview(r mongodb.ReviewDb) Review {
	return Review{
		Id:        r.Id,
		MovieSlug: r.MovieSlug,
		Username:  r.Username,
		Rating:    r.Rating,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
