package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type WatchlistDb struct {
	Username   string    `json:"username" bson:"username"`
	MovieSlug  string    `json:"movieSlug" bson:"movieSlug"`
	MovieTitle string    `json:"movieTitle" bson:"movieTitle"`
	AddedAt    time.Time `json:"addedAt" bson:"addedAt"`
	IsFavorite bool      `json:"isFavorite" bson:"isFavorite"`
}

// ----- Methods for the database -----

// AddWatchlistEntry inserts the entry. The username_and_movieSlug_unique index
// makes a second insert for the same pair fail with ErrDuplicateKey.
func (db *DB) AddWatchlistEntry(ctx context.Context, entry WatchlistDb) (WatchlistDb, error) {
	coll := db.Collection(WatchlistsCollection)

	entry.AddedAt = time.Now().UTC().Truncate(time.Millisecond)
	entry.IsFavorite = true

	if _, err := coll.InsertOne(ctx, entry); err != nil {
		return WatchlistDb{}, storeError(err)
	}

	return entry, nil
}

func (db *DB) GetWatchlistEntry(ctx context.Context, username, movieSlug string) (WatchlistDb, error) {
	coll := db.Collection(WatchlistsCollection)

	var entry WatchlistDb
	err := coll.FindOne(ctx, bson.M{"username": username, "movieSlug": movieSlug}).Decode(&entry)
	if err != nil {
		return WatchlistDb{}, storeError(err)
	}

	return entry, nil
}

func (db *DB) DeleteWatchlistEntry(ctx context.Context, username, movieSlug string) (bool, error) {
	coll := db.Collection(WatchlistsCollection)

	result, err := coll.DeleteOne(ctx, bson.M{"username": username, "movieSlug": movieSlug})
	if err != nil {
		return false, storeError(err)
	}

	return result.DeletedCount > 0, nil
}

func (db *DB) DeleteWatchlistByMovie(ctx context.Context, movieSlug string) (int64, error) {
	coll := db.Collection(WatchlistsCollection)

	result, err := coll.DeleteMany(ctx, bson.M{"movieSlug": movieSlug})
	if err != nil {
		return 0, storeError(err)
	}

	return result.DeletedCount, nil
}

func (db *DB) GetWatchlistByUser(ctx context.Context, username string) ([]WatchlistDb, error) {
	coll := db.Collection(WatchlistsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return []WatchlistDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	entries := []WatchlistDb{}
	if err := cursor.All(ctx, &entries); err != nil {
		return []WatchlistDb{}, storeError(err)
	}

	return entries, nil
}

// GetWatchlistUsernames returns the owners of every watchlist entry for the
// movie. The unique index guarantees each username appears once.
func (db *DB) GetWatchlistUsernames(ctx context.Context, movieSlug string) ([]string, error) {
	coll := db.Collection(WatchlistsCollection)

	values, err := coll.Distinct(ctx, "username", bson.M{"movieSlug": movieSlug})
	if err != nil {
		return []string{}, storeError(err)
	}

	return distinctStrings(values), nil
}

func (db *DB) DistinctWatchlistUsernames(ctx context.Context) ([]string, error) {
	coll := db.Collection(WatchlistsCollection)

	values, err := coll.Distinct(ctx, "username", bson.M{})
	if err != nil {
		return []string{}, storeError(err)
	}

	return distinctStrings(values), nil
}
