package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
	"go.uber.org/zap"
)

/*
NotifyWatchlistOwners creates one unread new_review notification for every
user that has the movie on a watchlist, provided the rating reaches
HighRatingThreshold. Below the threshold nothing is read or written.

Each recipient is delivered independently on the pool; a failed delivery is
logged and does not stop the others. The result counts successful
deliveries only, so it never fails as a whole.
*/
func NotifyWatchlistOwners(ctx context.Context, db mongodb.Store, pool *worker.Pool, req FanoutRequest) int {
	if req.Rating < HighRatingThreshold {
		return 0
	}

	logger := logx.FromContext(ctx).With(zap.String("movieSlug", req.MovieSlug))

	usernames, err := db.GetWatchlistUsernames(ctx, req.MovieSlug)
	if err != nil {
		logger.Warn("could not list watchlist owners, skipping fanout", zap.Error(err))
		return 0
	}

	sent := deliver(ctx, db, pool, mongodb.NotificationTypeNewReview, usernames, func(username string) mongodb.NotificationDb {
		return mongodb.NotificationDb{
			Username:     username,
			Type:         mongodb.NotificationTypeNewReview,
			MovieSlug:    req.MovieSlug,
			MovieTitle:   req.MovieTitle,
			ReviewRating: req.Rating,
			ReviewTitle:  req.ReviewTitle,
		}
	})

	logger.Info("watchlist fanout finished",
		zap.Int("recipients", len(usernames)),
		zap.Int("sent", sent),
	)
	return sent
}

/*
Broadcast sends an announcement to every known user: registered users plus
anyone who has a watchlist entry or a notification. Delivery is best effort
like the watchlist fanout and the result counts successful deliveries.

An error is returned only when the request is invalid or the recipients
cannot be listed.
*/
func Broadcast(ctx context.Context, db mongodb.Store, pool *worker.Pool, req BroadcastRequest) (int, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return 0, ErrInvalidAnnouncement
	}

	recipients, err := knownUsernames(ctx, db)
	if err != nil {
		return 0, err
	}

	sent := deliver(ctx, db, pool, mongodb.NotificationTypeAnnouncement, recipients, func(username string) mongodb.NotificationDb {
		return mongodb.NotificationDb{
			Username: username,
			Type:     mongodb.NotificationTypeAnnouncement,
			Title:    req.Title,
			Message:  req.Message,
		}
	})

	logx.FromContext(ctx).Info("announcement broadcast finished",
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", sent),
	)
	return sent, nil
}

func knownUsernames(ctx context.Context, db mongodb.Store) ([]string, error) {
	sources := []func(context.Context) ([]string, error){
		db.DistinctUsernames,
		db.DistinctWatchlistUsernames,
		db.DistinctNotificationUsernames,
	}

	var all []string
	for _, source := range sources {
		usernames, err := source(ctx)
		if err != nil {
			return nil, fmt.Errorf("list recipients: %w", err)
		}
		all = append(all, usernames...)
	}

	return dedupe(all), nil
}

// dedupe drops empty and repeated usernames, keeping first-seen order.
func dedupe(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func deliver(
	ctx context.Context,
	db mongodb.NotificationStore,
	pool *worker.Pool,
	notificationType string,
	usernames []string,
	build func(username string) mongodb.NotificationDb,
) int {
	usernames = dedupe(usernames)
	if len(usernames) == 0 {
		return 0
	}

	m := metrics.NewMetrics()
	start := time.Now()
	defer func() {
		m.FanoutDuration.WithLabelValues(notificationType).Observe(time.Since(start).Seconds())
	}()

	tasks := make([]worker.Task, len(usernames))
	for i, username := range usernames {
		notification := build(username)
		tasks[i] = func(ctx context.Context) error {
			_, err := db.AddNotification(ctx, notification)
			return err
		}
	}

	logger := logx.FromContext(ctx)
	sent := 0
	for i, err := range pool.RunAll(ctx, tasks...) {
		if err != nil {
			m.NotificationsTotal.WithLabelValues(notificationType, "failed").Inc()
			logger.Warn("notification delivery failed",
				zap.String("username", usernames[i]),
				zap.String("type", notificationType),
				zap.Error(err),
			)
			continue
		}
		m.NotificationsTotal.WithLabelValues(notificationType, "sent").Inc()
		sent++
	}

	return sent
}
