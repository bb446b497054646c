package reviews

import "time"

type Review struct {
	Id        string    `json:"id"`
	MovieSlug string    `json:"movieSlug"`
	Username  string    `json:"username"`
	Rating    float64   `json:"rating"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmitReviewRequest is the validated tuple a review submission works on.
// MovieSlug and Username come from the route and the authenticated user.
type SubmitReviewRequest struct {
	MovieSlug string  `json:"-" validate:"required"`
	Username  string  `json:"-" validate:"required"`
	Rating    float64 `json:"rating" validate:"gte=1,lte=5"`
	Title     string  `json:"title" validate:"max=200"`
	Body      string  `json:"body" validate:"max=5000"`
}

type Aggregate struct {
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}
