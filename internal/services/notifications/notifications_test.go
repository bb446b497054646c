package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) *worker.Pool {
	t.Helper()
	pool, err := worker.NewPool("test-notifications", 2)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Shutdown(time.Second) })
	return pool
}

func watch(t *testing.T, store *memstore.Store, slug string, usernames ...string) {
	t.Helper()
	for _, username := range usernames {
		_, err := store.AddWatchlistEntry(context.Background(), mongodb.WatchlistDb{
			Username: username, MovieSlug: slug, MovieTitle: "Inception",
		})
		require.NoError(t, err)
	}
}

func TestNotifyWatchlistOwners(t *testing.T) {
	ctx := context.Background()

	t.Run("Below the threshold the store is not touched", func(t *testing.T) {
		store := memstore.New()
		store.SetFault(func(op, key string) error {
			t.Errorf("unexpected store call %s(%s)", op, key)
			return nil
		})

		sent := NotifyWatchlistOwners(ctx, store, newPool(t), FanoutRequest{
			MovieSlug: "inception", MovieTitle: "Inception", Rating: 4.4,
		})
		require.Zero(t, sent)
	})

	t.Run("Every owner gets one unread notification", func(t *testing.T) {
		store := memstore.New()
		watch(t, store, "inception", "carol", "dave")
		watch(t, store, "heat", "erin")

		sent := NotifyWatchlistOwners(ctx, store, newPool(t), FanoutRequest{
			MovieSlug: "inception", MovieTitle: "Inception", Rating: 5, ReviewTitle: "Great",
		})
		require.Equal(t, 2, sent)

		for _, username := range []string{"carol", "dave"} {
			count, err := UnreadCount(ctx, store, username)
			require.NoError(t, err)
			require.Equal(t, 1, count, username)
		}
		count, err := UnreadCount(ctx, store, "erin")
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("Failed deliveries only lower the count", func(t *testing.T) {
		store := memstore.New()
		watch(t, store, "inception", "carol", "dave", "erin")
		store.SetFault(func(op, key string) error {
			if op == "AddNotification" && key != "carol" {
				return errors.New("write failed")
			}
			return nil
		})

		sent := NotifyWatchlistOwners(ctx, store, newPool(t), FanoutRequest{
			MovieSlug: "inception", Rating: 4.5,
		})
		require.Equal(t, 1, sent)
	})

	t.Run("Unlistable owners skip the fanout", func(t *testing.T) {
		store := memstore.New()
		store.SetFault(func(op, key string) error {
			if op == "GetWatchlistUsernames" {
				return mongodb.ErrStoreUnavailable
			}
			return nil
		})

		sent := NotifyWatchlistOwners(ctx, store, newPool(t), FanoutRequest{MovieSlug: "inception", Rating: 5})
		require.Zero(t, sent)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("Marking a movie read is monotonic", func(t *testing.T) {
		store := memstore.New()
		watch(t, store, "inception", "carol")
		pool := newPool(t)

		NotifyWatchlistOwners(ctx, store, pool, FanoutRequest{MovieSlug: "inception", Rating: 5})
		NotifyWatchlistOwners(ctx, store, pool, FanoutRequest{MovieSlug: "inception", Rating: 4.8})

		updated, err := MarkRead(ctx, store, "carol", MarkReadRequest{Kind: KindMovie, Key: "inception"})
		require.NoError(t, err)
		require.True(t, updated)

		updated, err = MarkRead(ctx, store, "carol", MarkReadRequest{Kind: KindMovie, Key: "inception"})
		require.NoError(t, err)
		require.False(t, updated, "nothing left to mark")

		all, err := GetNotifications(ctx, store, "carol", false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, n := range all {
			require.True(t, n.IsRead)
		}

		unread, err := GetNotifications(ctx, store, "carol", true)
		require.NoError(t, err)
		require.Empty(t, unread)
	})

	t.Run("Support notifications are matched by ticket id", func(t *testing.T) {
		store := memstore.New()
		for _, ticketId := range []string{"t1", "t2"} {
			_, err := Notify(ctx, store, mongodb.NotificationDb{
				Username: "carol", Type: mongodb.NotificationTypeSupportResponse, TicketId: ticketId,
			})
			require.NoError(t, err)
		}

		updated, err := MarkRead(ctx, store, "carol", MarkReadRequest{Kind: KindSupport, Key: "t1"})
		require.NoError(t, err)
		require.True(t, updated)

		unread, err := GetNotifications(ctx, store, "carol", true)
		require.NoError(t, err)
		require.Len(t, unread, 1)
		require.Equal(t, "t2", unread[0].TicketId)
	})

	t.Run("Invalid requests", func(t *testing.T) {
		store := memstore.New()

		_, err := MarkRead(ctx, store, "carol", MarkReadRequest{Kind: "other", Key: "x"})
		require.ErrorIs(t, err, ErrInvalidMarkRead)
		_, err = MarkRead(ctx, store, "carol", MarkReadRequest{Kind: KindMovie})
		require.ErrorIs(t, err, ErrInvalidMarkRead)
		_, err = MarkRead(ctx, store, "", MarkReadRequest{Kind: KindMovie, Key: "x"})
		require.ErrorIs(t, err, ErrUsernameRequired)
	})
}

func TestGetNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("Newest first", func(t *testing.T) {
		store := memstore.New()
		for _, title := range []string{"first", "second", "third"} {
			_, err := Notify(ctx, store, mongodb.NotificationDb{
				Username: "carol", Type: mongodb.NotificationTypeAnnouncement, Title: title,
			})
			require.NoError(t, err)
		}

		ns, err := GetNotifications(ctx, store, "carol", false)
		require.NoError(t, err)
		require.Len(t, ns, 3)
		require.Equal(t, "third", ns[0].Title)
		require.Equal(t, "first", ns[2].Title)
	})

	t.Run("Unavailable store gives an empty list", func(t *testing.T) {
		store := memstore.New()
		store.SetFault(func(op, key string) error { return mongodb.ErrStoreUnavailable })

		ns, err := GetNotifications(ctx, store, "carol", false)
		require.NoError(t, err)
		require.Empty(t, ns)
	})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("Every known user is notified once", func(t *testing.T) {
		store := memstore.New()
		_, err := store.AddUser(ctx, mongodb.UserDb{Username: "alice", Email: "alice@example.com", IsActive: true})
		require.NoError(t, err)
		watch(t, store, "inception", "alice", "carol")
		_, err = Notify(ctx, store, mongodb.NotificationDb{Username: "dave", Type: mongodb.NotificationTypeNewReview})
		require.NoError(t, err)

		sent, err := Broadcast(ctx, store, newPool(t), BroadcastRequest{Title: "Maintenance", Message: "Down at 2am"})
		require.NoError(t, err)
		require.Equal(t, 3, sent)

		for _, username := range []string{"alice", "carol", "dave"} {
			ns, err := GetNotifications(ctx, store, username, true)
			require.NoError(t, err)
			var announcements int
			for _, n := range ns {
				if n.Type == mongodb.NotificationTypeAnnouncement {
					announcements++
					require.Equal(t, "Maintenance", n.Title)
				}
			}
			require.Equal(t, 1, announcements, username)
		}
	})

	t.Run("Title and message are required", func(t *testing.T) {
		_, err := Broadcast(ctx, memstore.New(), newPool(t), BroadcastRequest{Title: "only title"})
		require.ErrorIs(t, err, ErrInvalidAnnouncement)
	})

	t.Run("Recipient listing failure is returned", func(t *testing.T) {
		store := memstore.New()
		store.SetFault(func(op, key string) error {
			if op == "DistinctUsernames" {
				return mongodb.ErrStoreUnavailable
			}
			return nil
		})

		_, err := Broadcast(ctx, store, newPool(t), BroadcastRequest{Title: "t", Message: "m"})
		require.ErrorIs(t, err, mongodb.ErrStoreUnavailable)
	})
}
