package movies

import "time"

type Movie struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Director    string    `json:"director"`
	Year        int       `json:"year"`
	Cast        []string  `json:"cast"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	AvgRating   float64   `json:"avgRating"`
	ReviewCount int       `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MovieDetail is a movie page: the movie plus what the viewer did with it.
type MovieDetail struct {
	Movie
	InWatchlist bool `json:"inWatchlist"`
}

type CreateMovieRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"omitempty,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Director    string   `json:"director" validate:"max=200"`
	Year        int      `json:"year" validate:"omitempty,gte=1870,lte=2200"`
	Cast        []string `json:"cast" validate:"omitempty,dive,required"`
	PhotoURL    string   `json:"photoUrl" validate:"omitempty,url"`
}

// UpdateMovieRequest leaves absent fields untouched. Slug and the rating
// aggregate cannot be changed through it.
type UpdateMovieRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Director    *string   `json:"director" validate:"omitempty,max=200"`
	Year        *int      `json:"year" validate:"omitempty,gte=1870,lte=2200"`
	Cast        *[]string `json:"cast" validate:"omitempty,dive,required"`
	PhotoURL    *string   `json:"photoUrl" validate:"omitempty,url"`
}

type AllMoviesResponse struct {
	Movies []Movie `json:"movies"`
}

type DeleteMovieResponse struct {
	DeletedReviews   int64 `json:"deletedReviews"`
	DeletedWatchlist int64 `json:"deletedWatchlistEntries"`
}

type Dashboard struct {
	MoviesCount    int `json:"moviesCount"`
	WatchlistUsers int `json:"watchlistUsers"`
	OpenTickets    int `json:"openTickets"`
}
