package watchlists

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("Toggle adds then removes", func(t *testing.T) {
		store := memstore.New()

		action, err := Toggle(ctx, store, "carol", "inception", "Inception")
		require.NoError(t, err)
		require.Equal(t, ActionAdded, action)
		require.True(t, IsInWatchlist(ctx, store, "carol", "inception"))

		entries, err := GetUserWatchlist(ctx, store, "carol")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "Inception", entries[0].MovieTitle)
		require.True(t, entries[0].IsFavorite)

		action, err = Toggle(ctx, store, "carol", "inception", "Inception")
		require.NoError(t, err)
		require.Equal(t, ActionRemoved, action)
		require.False(t, IsInWatchlist(ctx, store, "carol", "inception"))
	})

	t.Run("Losing the insert race reports added without error", func(t *testing.T) {
		store := memstore.New()

		// Another toggle inserts the entry between our delete and insert.
		var raced atomic.Bool
		store.SetFault(func(op, key string) error {
			if op == "AddWatchlistEntry" && raced.CompareAndSwap(false, true) {
				_, err := store.AddWatchlistEntry(ctx, mongodb.WatchlistDb{
					Username: "carol", MovieSlug: "inception", MovieTitle: "Inception",
				})
				require.NoError(t, err)
			}
			return nil
		})

		action, err := Toggle(ctx, store, "carol", "inception", "Inception")
		require.NoError(t, err)
		require.Equal(t, ActionAdded, action)

		entries, err := store.GetWatchlistByUser(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("Concurrent toggles never leave two entries", func(t *testing.T) {
		store := memstore.New()

		var (
			wg      sync.WaitGroup
			added   atomic.Int32
			removed atomic.Int32
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				action, err := Toggle(ctx, store, "carol", "inception", "Inception")
				assert.NoError(t, err)
				switch action {
				case ActionAdded:
					added.Add(1)
				case ActionRemoved:
					removed.Add(1)
				}
			}()
		}
		wg.Wait()

		entries, err := store.GetWatchlistByUser(ctx, "carol")
		require.NoError(t, err)
		require.LessOrEqual(t, len(entries), 1)
		require.Equal(t, int32(8), added.Load()+removed.Load())
	})

	t.Run("Username and slug are required", func(t *testing.T) {
		store := memstore.New()

		_, err := Toggle(ctx, store, "", "inception", "Inception")
		require.ErrorIs(t, err, ErrInvalidEntry)
		_, err = Toggle(ctx, store, "carol", "", "")
		require.ErrorIs(t, err, ErrInvalidEntry)
	})
}

func TestAddRemove(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := store.AddMovie(ctx, mongodb.MovieDb{Slug: "heat", Title: "Heat"})
	require.NoError(t, err)

	entry, err := Add(ctx, store, "dave", "heat")
	require.NoError(t, err)
	require.Equal(t, "Heat", entry.MovieTitle)

	_, err = Add(ctx, store, "dave", "heat")
	require.ErrorIs(t, err, ErrEntryAlreadyExist)

	_, err = Add(ctx, store, "dave", "missing")
	require.ErrorIs(t, err, ErrMovieNotFound)

	require.NoError(t, Remove(ctx, store, "dave", "heat"))
	require.ErrorIs(t, Remove(ctx, store, "dave", "heat"), ErrEntryNotFound)
	require.ErrorIs(t, Remove(ctx, store, "", "heat"), ErrInvalidEntry)
}

func TestGetUserWatchlistUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := store.AddMovie(ctx, mongodb.MovieDb{Slug: "heat", Title: "Heat"})
	require.NoError(t, err)
	_, err = Add(ctx, store, "dave", "heat")
	require.NoError(t, err)

	store.SetFault(func(op, key string) error { return mongodb.ErrStoreUnavailable })

	entries, err := GetUserWatchlist(ctx, store, "dave")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.False(t, IsInWatchlist(ctx, store, "dave", "heat"))
}
