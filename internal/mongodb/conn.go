package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	MoviesCollection        = "movies"
	ReviewsCollection       = "reviews"
	WatchlistsCollection    = "watchlists"
	NotificationsCollection = "notifications"
	ViewHistoryCollection   = "view_history"
	TicketsCollection       = "support_tickets"
	UsersCollection         = "users"
)

const DefaultDatabaseName = "moviereviews"

// DB is the handle every store operation goes through. It is built once at
// startup and passed down explicitly; Close releases the underlying client.
type DB struct {
	client *mongo.Client
	name   string
}

// Connect connects to MongoDB at uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is required (e.g. mongodb://localhost:27017)")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}

func NewDB(client *mongo.Client, name string) *DB {
	if name == "" {
		name = DefaultDatabaseName
	}
	return &DB{client: client, name: name}
}

func (db *DB) GetDatabaseName() string {
	return db.name
}

func (db *DB) Database() *mongo.Database {
	return db.client.Database(db.name)
}

func (db *DB) Collection(name string) *mongo.Collection {
	return db.Database().Collection(name)
}

func (db *DB) Ping(ctx context.Context) error {
	return storeError(db.client.Ping(ctx, readpref.Primary()))
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
