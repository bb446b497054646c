package notifications

import "time"

// HighRatingThreshold is the lowest review rating that notifies the movie's
// watchlist owners.
const HighRatingThreshold = 4.5

const (
	KindMovie   = "movie"
	KindSupport = "support"
)

type Notification struct {
	Id            string    `json:"id"`
	Type          string    `json:"notificationType"`
	MovieSlug     string    `json:"movieSlug,omitempty"`
	MovieTitle    string    `json:"movieTitle,omitempty"`
	ReviewRating  float64   `json:"reviewRating,omitempty"`
	ReviewTitle   string    `json:"reviewTitle,omitempty"`
	TicketId      string    `json:"ticketId,omitempty"`
	TicketSubject string    `json:"ticketSubject,omitempty"`
	Title         string    `json:"title,omitempty"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	IsRead        bool      `json:"isRead"`
}

type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// FanoutRequest describes the review that triggers a watchlist fanout.
type FanoutRequest struct {
	MovieSlug   string
	MovieTitle  string
	Rating      float64
	ReviewTitle string
}

type MarkReadRequest struct {
	Kind string `json:"kind" validate:"required,oneof=movie support"`
	Key  string `json:"key" validate:"required"`
}

type MarkReadResponse struct {
	Updated bool `json:"updated"`
}

type BroadcastRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

type BroadcastResponse struct {
	Notified int `json:"notified"`
}
