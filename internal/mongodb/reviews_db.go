package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type ReviewDb struct {
	Id        string    `json:"id" bson:"_id"`
	MovieSlug string    `json:"movieSlug" bson:"movieSlug"`
	Username  string    `json:"username" bson:"username"`
	Rating    float64   `json:"rating" bson:"rating"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type reviewAggregate struct {
	Avg   float64 `bson:"avg"`
	Count int     `bson:"count"`
}

// ----- Methods for the database -----

/*
UpsertReview writes the review for the (movieSlug, username) pair in a single
findOneAndUpdate with upsert. Rating, title, body and updatedAt are replaced;
the id and createdAt are only written on insert, so a resubmission keeps the
original identity.

Two concurrent first submissions can both miss the filter and race on the
insert; the loser gets a duplicate key error from the unique index and is
retried once, which then matches the winner's document.

Returns the stored review and whether it was created by this call.
*/
func (db *DB) UpsertReview(ctx context.Context, review ReviewDb) (ReviewDb, bool, error) {
	coll := db.Collection(ReviewsCollection)

	filter := bson.M{"movieSlug": review.MovieSlug, "username": review.Username}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC().Truncate(time.Millisecond)
		newId := primitive.NewObjectID().Hex()
		update := bson.M{
			"$set": bson.M{
				"rating":    review.Rating,
				"title":     review.Title,
				"body":      review.Body,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"_id":       newId,
				"createdAt": now,
			},
		}

		var stored ReviewDb
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
		if err == nil {
			return stored, stored.Id == newId, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}

	return ReviewDb{}, false, storeError(err)
}

func (db *DB) GetReview(ctx context.Context, movieSlug, username string) (ReviewDb, error) {
	coll := db.Collection(ReviewsCollection)

	filter := bson.M{"movieSlug": movieSlug, "username": username}

	var review ReviewDb
	if err := coll.FindOne(ctx, filter).Decode(&review); err != nil {
		return ReviewDb{}, storeError(err)
	}

	return review, nil
}

// GetReviewsByMovie returns reviews newest first. limit <= 0 means no limit.
func (db *DB) GetReviewsByMovie(ctx context.Context, movieSlug string, skip, limit int) ([]ReviewDb, error) {
	coll := db.Collection(ReviewsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := coll.Find(ctx, bson.M{"movieSlug": movieSlug}, opts)
	if err != nil {
		return []ReviewDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	reviews := []ReviewDb{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return []ReviewDb{}, storeError(err)
	}

	return reviews, nil
}

func (db *DB) CountReviewsByMovie(ctx context.Context, movieSlug string) (int, error) {
	coll := db.Collection(ReviewsCollection)

	total, err := coll.CountDocuments(ctx, bson.M{"movieSlug": movieSlug})
	if err != nil {
		return 0, storeError(err)
	}
	return int(total), nil
}

func (db *DB) DeleteReview(ctx context.Context, movieSlug, username string) (bool, error) {
	coll := db.Collection(ReviewsCollection)

	filter := bson.M{"movieSlug": movieSlug, "username": username}
	result, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, storeError(err)
	}

	return result.DeletedCount > 0, nil
}

func (db *DB) DeleteReviewsByMovie(ctx context.Context, movieSlug string) (int64, error) {
	coll := db.Collection(ReviewsCollection)

	result, err := coll.DeleteMany(ctx, bson.M{"movieSlug": movieSlug})
	if err != nil {
		return 0, storeError(err)
	}

	return result.DeletedCount, nil
}

// AggregateReviews computes the mean rating and the number of reviews of a
// movie on the server. An empty review set yields (0, 0).
func (db *DB) AggregateReviews(ctx context.Context, movieSlug string) (float64, int, error) {
	coll := db.Collection(ReviewsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"movieSlug": movieSlug}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$movieSlug",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, storeError(err)
	}
	defer cursor.Close(ctx)

	var results []reviewAggregate
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, storeError(err)
	}

	if len(results) == 0 {
		return 0, 0, nil
	}

	return results[0].Avg, results[0].Count, nil
}
