package memstore

import (
	"context"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func (s *Store) AddNotification(ctx context.Context, notification mongodb.NotificationDb) (mongodb.NotificationDb, error) {
	if err := s.check("AddNotification", notification.Username); err != nil {
		return mongodb.NotificationDb{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notification.Id = newId()
	notification.CreatedAt = now()
	notification.IsRead = false
	s.notifications[notification.Id] = &row[mongodb.NotificationDb]{val: notification, seq: s.next()}

	return notification, nil
}

func (s *Store) GetNotificationsByUser(ctx context.Context, username string, unreadOnly bool) ([]mongodb.NotificationDb, error) {
	if err := s.check("GetNotificationsByUser", username); err != nil {
		return []mongodb.NotificationDb{}, err
	}

	s.mu.RLock()
	var rows []*row[mongodb.NotificationDb]
	for _, r := range s.notifications {
		if r.val.Username == username && (!unreadOnly || !r.val.IsRead) {
			rows = append(rows, r.snapshot())
		}
	}
	s.mu.RUnlock()

	newestFirst(rows, func(n mongodb.NotificationDb) time.Time { return n.CreatedAt })
	return values(rows), nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, username string) (int, error) {
	if err := s.check("CountUnreadNotifications", username); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, r := range s.notifications {
		if r.val.Username == username && !r.val.IsRead {
			total++
		}
	}
	return total, nil
}

func (s *Store) MarkMovieNotificationsRead(ctx context.Context, username, movieSlug string) (int64, error) {
	if err := s.check("MarkMovieNotificationsRead", username); err != nil {
		return 0, err
	}
	return s.markRead(func(n mongodb.NotificationDb) bool {
		return n.Username == username && n.MovieSlug == movieSlug
	}), nil
}

func (s *Store) MarkTicketNotificationsRead(ctx context.Context, username, ticketId string) (int64, error) {
	if err := s.check("MarkTicketNotificationsRead", username); err != nil {
		return 0, err
	}
	return s.markRead(func(n mongodb.NotificationDb) bool {
		return n.Username == username && n.TicketId == ticketId
	}), nil
}

func (s *Store) markRead(match func(mongodb.NotificationDb) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for _, r := range s.notifications {
		if !r.val.IsRead && match(r.val) {
			r.val.IsRead = true
			modified++
		}
	}
	return modified
}

func (s *Store) DistinctNotificationUsernames(ctx context.Context) ([]string, error) {
	if err := s.check("DistinctNotificationUsernames", ""); err != nil {
		return []string{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := map[string]struct{}{}
	for _, r := range s.notifications {
		if r.val.Username != "" {
			set[r.val.Username] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}
