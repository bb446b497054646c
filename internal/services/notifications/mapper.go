package notifications

import "github.com/lealre/moviereviews/internal/mongodb"

func MapDbNotificationToApiNotification(n mongodb.NotificationDb) Notification {
	return Notification{
		Id:            n.Id,
		Type:          n.Type,
		MovieSlug:     n.MovieSlug,
		MovieTitle:    n.MovieTitle,
		ReviewRating:  n.ReviewRating,
		ReviewTitle:   n.ReviewTitle,
		TicketId:      n.TicketId,
		TicketSubject: n.TicketSubject,
		Title:         n.Title,
		Message:       n.Message,
		CreatedAt:     n.CreatedAt,
		IsRead:        n.IsRead,
	}
}
