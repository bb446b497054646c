package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

type MovieDb struct {
	Slug        string    `json:"slug" bson:"slug"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Director    string    `json:"director" bson:"director"`
	Year        int       `json:"year" bson:"year"`
	Cast        []string  `json:"cast" bson:"cast"`
	PhotoURL    string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	AvgRating   float64   `json:"avgRating" bson:"avgRating"`
	ReviewCount int       `json:"reviewCount" bson:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

const (
	MovieSortNewest       = "newest"
	MovieSortHighest      = "highest"
	MovieSortMostReviewed = "most_reviewed"
)

// MovieQuery filters and orders movie listings. An empty Sort keeps the
// title order, Limit <= 0 means no limit.
type MovieQuery struct {
	Q     string
	Sort  string
	Limit int
}

// MovieUpdate carries the admin-editable fields; nil fields are left as is.
// The slug and the aggregate fields are deliberately absent.
type MovieUpdate struct {
	Title       *string   `bson:"title,omitempty"`
	Description *string   `bson:"description,omitempty"`
	Director    *string   `bson:"director,omitempty"`
	Year        *int      `bson:"year,omitempty"`
	Cast        *[]string `bson:"cast,omitempty"`
	PhotoURL    *string   `bson:"photoUrl,omitempty"`
}

func (u MovieUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Director == nil &&
		u.Year == nil && u.Cast == nil && u.PhotoURL == nil
}

// ----- Methods for the database -----

func (db *DB) GetMovieBySlug(ctx context.Context, slug string) (MovieDb, error) {
	coll := db.Collection(MoviesCollection)

	var movie MovieDb
	if err := coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&movie); err != nil {
		return MovieDb{}, storeError(err)
	}
	return movie, nil
}

func (db *DB) GetMovies(ctx context.Context, query MovieQuery) ([]MovieDb, error) {
	coll := db.Collection(MoviesCollection)

	filter := bson.M{}
	if query.Q != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(query.Q), "$options": "i"}
	}

	opts := options.Find()
	switch query.Sort {
	case MovieSortNewest:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	case MovieSortHighest:
		opts.SetSort(bson.D{{Key: "avgRating", Value: -1}})
	case MovieSortMostReviewed:
		opts.SetSort(bson.D{{Key: "reviewCount", Value: -1}})
	default:
		opts.SetSort(bson.D{{Key: "title", Value: 1}})
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return []MovieDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	movies := []MovieDb{}
	if err := cursor.All(ctx, &movies); err != nil {
		return []MovieDb{}, storeError(err)
	}

	return movies, nil
}

func (db *DB) CountMovies(ctx context.Context) (int, error) {
	coll := db.Collection(MoviesCollection)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeError(err)
	}
	return int(total), nil
}

// AddMovie inserts a movie with zeroed aggregates. A slug that already exists
// returns ErrDuplicateKey (enforced by the slug_unique index).
func (db *DB) AddMovie(ctx context.Context, movie MovieDb) (MovieDb, error) {
	coll := db.Collection(MoviesCollection)

	movie.AvgRating = 0
	movie.ReviewCount = 0
	movie.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if movie.Cast == nil {
		movie.Cast = []string{}
	}

	if _, err := coll.InsertOne(ctx, movie); err != nil {
		return MovieDb{}, storeError(err)
	}

	return movie, nil
}

func (db *DB) UpdateMovie(ctx context.Context, slug string, update MovieUpdate) error {
	coll := db.Collection(MoviesCollection)

	result, err := coll.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{"$set": update})
	if err != nil {
		return storeError(err)
	}

	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (db *DB) DeleteMovie(ctx context.Context, slug string) (bool, error) {
	coll := db.Collection(MoviesCollection)

	res, err := coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return false, storeError(err)
	}
	return res.DeletedCount > 0, nil
}

// SetMovieAggregate overwrites the derived rating fields of a movie.
func (db *DB) SetMovieAggregate(ctx context.Context, slug string, avgRating float64, reviewCount int) error {
	coll := db.Collection(MoviesCollection)

	update := bson.M{
		"$set": bson.M{
			"avgRating":   avgRating,
			"reviewCount": reviewCount,
		},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"slug": slug}, update)
	if err != nil {
		return storeError(err)
	}

	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}

	return nil
}
