package watchlists

import "time"

const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

type WatchlistEntry struct {
	MovieSlug  string    `json:"movieSlug"`
	MovieTitle string    `json:"movieTitle"`
	AddedAt    time.Time `json:"addedAt"`
	IsFavorite bool      `json:"isFavorite"`
}

type ToggleResponse struct {
	Action string `json:"action"`
}
