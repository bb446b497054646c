package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

// GetNotifications returns the user's notifications newest first. When the
// store is unreachable the list comes back empty instead of failing.
func GetNotifications(ctx context.Context, db mongodb.NotificationStore, username string, unreadOnly bool) ([]Notification, error) {
	if username == "" {
		return []Notification{}, ErrUsernameRequired
	}

	notificationsDb, err := db.GetNotificationsByUser(ctx, username, unreadOnly)
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("notifications unavailable, returning empty list", zap.Error(err))
			return []Notification{}, nil
		}
		return []Notification{}, err
	}

	notifications := make([]Notification, 0, len(notificationsDb))
	for _, n := range notificationsDb {
		notifications = append(notifications, MapDbNotificationToApiNotification(n))
	}

	return notifications, nil
}

func UnreadCount(ctx context.Context, db mongodb.NotificationStore, username string) (int, error) {
	total, err := db.CountUnreadNotifications(ctx, username)
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("unread count unavailable", zap.Error(err))
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

/*
MarkRead flips every unread notification of the user that matches key to
read. For KindMovie the key is a movie slug, for KindSupport a ticket id.

Returns true when at least one notification changed. Notifications are never
set back to unread.
*/
func MarkRead(ctx context.Context, db mongodb.NotificationStore, username string, req MarkReadRequest) (bool, error) {
	if username == "" {
		return false, ErrUsernameRequired
	}
	if err := validate.StructCtx(ctx, req); err != nil {
		return false, ErrInvalidMarkRead
	}

	var (
		modified int64
		err      error
	)
	switch req.Kind {
	case KindMovie:
		modified, err = db.MarkMovieNotificationsRead(ctx, username, req.Key)
	case KindSupport:
		modified, err = db.MarkTicketNotificationsRead(ctx, username, req.Key)
	}
	if err != nil {
		return false, err
	}

	return modified > 0, nil
}

// Notify writes a single notification. It is the size-one case of the
// fanout and is used by the ticket workflow.
func Notify(ctx context.Context, db mongodb.NotificationStore, notification mongodb.NotificationDb) (Notification, error) {
	m := metrics.NewMetrics()

	stored, err := db.AddNotification(ctx, notification)
	if err != nil {
		m.NotificationsTotal.WithLabelValues(notification.Type, "failed").Inc()
		return Notification{}, fmt.Errorf("notify %s: %w", notification.Username, err)
	}

	m.NotificationsTotal.WithLabelValues(notification.Type, "sent").Inc()
	return MapDbNotificationToApiNotification(stored), nil
}
