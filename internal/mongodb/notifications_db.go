package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ----- Types for the database -----

const (
	NotificationTypeNewReview       = "new_review"
	NotificationTypeSupportResponse = "support_response"
	NotificationTypeAnnouncement    = "announcement"
)

type NotificationDb struct {
	Id            string    `json:"id" bson:"_id"`
	Username      string    `json:"username" bson:"username"`
	Type          string    `json:"notificationType" bson:"notificationType"`
	MovieSlug     string    `json:"movieSlug" bson:"movieSlug"`
	MovieTitle    string    `json:"movieTitle,omitempty" bson:"movieTitle,omitempty"`
	ReviewRating  float64   `json:"reviewRating,omitempty" bson:"reviewRating,omitempty"`
	ReviewTitle   string    `json:"reviewTitle,omitempty" bson:"reviewTitle,omitempty"`
	TicketId      string    `json:"ticketId,omitempty" bson:"ticketId,omitempty"`
	TicketSubject string    `json:"ticketSubject,omitempty" bson:"ticketSubject,omitempty"`
	Title         string    `json:"title,omitempty" bson:"title,omitempty"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	IsRead        bool      `json:"isRead" bson:"isRead"`
}

// ----- Methods for the database -----

// AddNotification inserts an unread notification with a fresh id.
func (db *DB) AddNotification(ctx context.Context, notification NotificationDb) (NotificationDb, error) {
	coll := db.Collection(NotificationsCollection)

	notification.Id = primitive.NewObjectID().Hex()
	notification.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	notification.IsRead = false

	if _, err := coll.InsertOne(ctx, notification); err != nil {
		return NotificationDb{}, storeError(err)
	}

	return notification, nil
}

func (db *DB) GetNotificationsByUser(ctx context.Context, username string, unreadOnly bool) ([]NotificationDb, error) {
	coll := db.Collection(NotificationsCollection)

	filter := bson.M{"username": username}
	if unreadOnly {
		filter["isRead"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return []NotificationDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	notifications := []NotificationDb{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return []NotificationDb{}, storeError(err)
	}

	return notifications, nil
}

func (db *DB) CountUnreadNotifications(ctx context.Context, username string) (int, error) {
	coll := db.Collection(NotificationsCollection)

	total, err := coll.CountDocuments(ctx, bson.M{"username": username, "isRead": false})
	if err != nil {
		return 0, storeError(err)
	}
	return int(total), nil
}

func (db *DB) MarkMovieNotificationsRead(ctx context.Context, username, movieSlug string) (int64, error) {
	return db.markRead(ctx, bson.M{"username": username, "movieSlug": movieSlug})
}

func (db *DB) MarkTicketNotificationsRead(ctx context.Context, username, ticketId string) (int64, error) {
	return db.markRead(ctx, bson.M{"username": username, "ticketId": ticketId})
}

// markRead only ever sets isRead to true, so a read notification never goes
// back to unread.
func (db *DB) markRead(ctx context.Context, filter bson.M) (int64, error) {
	coll := db.Collection(NotificationsCollection)

	filter["isRead"] = false
	result, err := coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, storeError(err)
	}

	return result.ModifiedCount, nil
}

func (db *DB) DistinctNotificationUsernames(ctx context.Context) ([]string, error) {
	coll := db.Collection(NotificationsCollection)

	values, err := coll.Distinct(ctx, "username", bson.M{})
	if err != nil {
		return []string{}, storeError(err)
	}

	return distinctStrings(values), nil
}
