package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type ViewHistoryDb struct {
	Username      string    `json:"username" bson:"username"`
	MovieSlug     string    `json:"movieSlug" bson:"movieSlug"`
	MovieTitle    string    `json:"movieTitle" bson:"movieTitle"`
	FirstViewedAt time.Time `json:"firstViewedAt" bson:"firstViewedAt"`
	LastViewedAt  time.Time `json:"lastViewedAt" bson:"lastViewedAt"`
	ViewCount     int       `json:"viewCount" bson:"viewCount"`
}

// ----- Methods for the database -----

// UpsertView records one more view of the movie by the user.
func (db *DB) UpsertView(ctx context.Context, username, movieSlug, movieTitle string) error {
	coll := db.Collection(ViewHistoryCollection)

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"username": username, "movieSlug": movieSlug}
	update := bson.M{
		"$set": bson.M{
			"movieTitle":   movieTitle,
			"lastViewedAt": now,
		},
		"$inc":         bson.M{"viewCount": 1},
		"$setOnInsert": bson.M{"firstViewedAt": now},
	}

	_, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return storeError(err)
}

func (db *DB) GetViewHistory(ctx context.Context, username string, limit int) ([]ViewHistoryDb, error) {
	coll := db.Collection(ViewHistoryCollection)

	opts := options.Find().SetSort(bson.D{{Key: "lastViewedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := coll.Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return []ViewHistoryDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	history := []ViewHistoryDb{}
	if err := cursor.All(ctx, &history); err != nil {
		return []ViewHistoryDb{}, storeError(err)
	}

	return history, nil
}
