package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/lealre/moviereviews/internal/logx"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type indexSpec struct {
	collection string
	model      mongo.IndexModel
}

// nonEmptyString restricts a unique index to documents where every listed
// field is a non-empty string.
func nonEmptyString(fields ...string) bson.M {
	clauses := make([]bson.M, 0, len(fields)*2)
	for _, f := range fields {
		clauses = append(clauses,
			bson.M{f: bson.M{"$type": "string"}},
			bson.M{f: bson.M{"$gt": ""}},
		)
	}
	return bson.M{"$and": clauses}
}

func uniqueIndex(name string, keys bson.D, partial bson.M) mongo.IndexModel {
	opts := options.Index().SetUnique(true).SetName(name)
	if partial != nil {
		opts.SetPartialFilterExpression(partial)
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

func plainIndex(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

// allIndexes lists every index the stores rely on. The unique ones back the
// one-review-per-user, one-entry-per-watchlist and one-history-row rules.
func allIndexes() []indexSpec {
	return []indexSpec{
		{MoviesCollection, uniqueIndex("slug_unique",
			bson.D{{Key: "slug", Value: 1}}, nonEmptyString("slug"))},
		{MoviesCollection, plainIndex("avgRating_desc",
			bson.D{{Key: "avgRating", Value: -1}})},

		{ReviewsCollection, uniqueIndex("movieSlug_and_username_unique",
			bson.D{{Key: "movieSlug", Value: 1}, {Key: "username", Value: 1}}, nil)},
		{ReviewsCollection, plainIndex("movieSlug_createdAt",
			bson.D{{Key: "movieSlug", Value: 1}, {Key: "createdAt", Value: -1}})},

		{WatchlistsCollection, uniqueIndex("username_and_movieSlug_unique",
			bson.D{{Key: "username", Value: 1}, {Key: "movieSlug", Value: 1}}, nil)},
		{WatchlistsCollection, plainIndex("movieSlug",
			bson.D{{Key: "movieSlug", Value: 1}})},

		{NotificationsCollection, plainIndex("username_isRead_createdAt",
			bson.D{{Key: "username", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}})},

		{ViewHistoryCollection, uniqueIndex("username_and_movieSlug_unique",
			bson.D{{Key: "username", Value: 1}, {Key: "movieSlug", Value: 1}}, nil)},

		{TicketsCollection, plainIndex("status_createdAt",
			bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}})},
		{TicketsCollection, plainIndex("username",
			bson.D{{Key: "username", Value: 1}})},

		{UsersCollection, uniqueIndex("username_unique",
			bson.D{{Key: "username", Value: 1}}, nonEmptyString("username"))},
		{UsersCollection, uniqueIndex("email_unique",
			bson.D{{Key: "email", Value: 1}}, nonEmptyString("email"))},
	}
}

// CreateAllIndexes creates every index that does not exist yet. With reset
// set, existing indexes of the same name are dropped and recreated.
func CreateAllIndexes(ctx context.Context, db *mongo.Database, reset bool) error {
	for _, spec := range allIndexes() {
		if err := createIndexIfNotExists(ctx, db.Collection(spec.collection), spec.model, reset); err != nil {
			return fmt.Errorf("failed to create indexes for '%s': %w", spec.collection, err)
		}
	}
	return nil
}

// DeleteAllIndexes deletes all indexes from all collections in the database
// (except the default _id_ index which cannot be deleted)
func DeleteAllIndexes(ctx context.Context, db *mongo.Database) error {
	logger := logx.FromContext(ctx)

	collections, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collName := range collections {
		coll := db.Collection(collName)

		names, err := indexNames(ctx, coll)
		if err != nil {
			return fmt.Errorf("failed to list indexes for collection '%s': %w", collName, err)
		}

		for _, name := range names {
			if name == "_id_" {
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, name); err != nil {
				return fmt.Errorf("failed to delete index '%s' from collection '%s': %w", name, collName, err)
			}
			logger.Info("deleted index", zap.String("index", name), zap.String("collection", collName))
		}
	}

	return nil
}

// listIndexes fails with NamespaceNotFound before the collection exists.
const namespaceNotFoundCode = 26

func indexNames(ctx context.Context, coll *mongo.Collection) ([]string, error) {
	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == namespaceNotFoundCode {
			return nil, nil
		}
		return nil, err
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			return nil, fmt.Errorf("failed to decode index: %w", err)
		}
		if name, ok := index["name"].(string); ok {
			names = append(names, name)
		}
	}

	return names, cursor.Err()
}

// createIndexIfNotExists checks if an index exists and creates it if it doesn't
// If reset is true, it will delete the existing index and recreate it
func createIndexIfNotExists(ctx context.Context, coll *mongo.Collection, indexModel mongo.IndexModel, reset bool) error {
	logger := logx.FromContext(ctx)
	indexName := *indexModel.Options.Name

	names, err := indexNames(ctx, coll)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	indexExists := false
	for _, name := range names {
		if name == indexName {
			indexExists = true
			break
		}
	}

	if indexExists {
		if !reset {
			logger.Debug("index already exists, skipping",
				zap.String("index", indexName), zap.String("collection", coll.Name()))
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, indexName); err != nil {
			return fmt.Errorf("failed to delete index '%s': %w", indexName, err)
		}
		logger.Info("deleted index", zap.String("index", indexName), zap.String("collection", coll.Name()))
	}

	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create index '%s': %w", indexName, err)
	}

	logger.Info("created index", zap.String("index", indexName), zap.String("collection", coll.Name()))
	return nil
}
