package watchlists

import "github.com/lealre/moviereviews/internal/mongodb"

func MapDbWatchlistToApiEntry(w mongodb.WatchlistDb) WatchlistEntry {
	return WatchlistEntry{
		MovieSlug:  w.MovieSlug,
		MovieTitle: w.MovieTitle,
		AddedAt:    w.AddedAt,
		IsFavorite: w.IsFavorite,
	}
}
