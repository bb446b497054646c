package movies

import "github.com/lealre/moviereviews/internal/mongodb"

func MapDbMovieToApiMovie(m mongodb.MovieDb) Movie {
	cast := m.Cast
	if cast == nil {
		cast = []string{}
	}

	return Movie{
		Slug:        m.Slug,
		Title:       m.Title,
		Description: m.Description,
		Director:    m.Director,
		Year:        m.Year,
		Cast:        cast,
		PhotoURL:    m.PhotoURL,
		AvgRating:   m.AvgRating,
		ReviewCount: m.ReviewCount,
		CreatedAt:   m.CreatedAt,
	}
}

func MapUpdateRequestToDbUpdate(req UpdateMovieRequest) mongodb.MovieUpdate {
	return mongodb.MovieUpdate{
		Title:       req.Title,
		Description: req.Description,
		Director:    req.Director,
		Year:        req.Year,
		Cast:        req.Cast,
		PhotoURL:    req.PhotoURL,
	}
}
