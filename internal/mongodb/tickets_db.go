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
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

type TicketDb struct {
	Id        string             `json:"id" bson:"_id"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Subject   string             `json:"subject" bson:"subject"`
	Message   string             `json:"message" bson:"message"`
	Status    string             `json:"status" bson:"status"`
	Responses []TicketResponseDb `json:"responses" bson:"responses"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type TicketResponseDb struct {
	AdminUsername string    `json:"adminUsername" bson:"adminUsername"`
	ResponseText  string    `json:"responseText" bson:"responseText"`
	RespondedAt   time.Time `json:"respondedAt" bson:"respondedAt"`
}

// ----- Methods for the database -----

func (db *DB) AddTicket(ctx context.Context, ticket TicketDb) (TicketDb, error) {
	coll := db.Collection(TicketsCollection)

	ticket.Id = primitive.NewObjectID().Hex()
	now := time.Now().UTC().Truncate(time.Millisecond)
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.Status = TicketStatusOpen
	ticket.Responses = []TicketResponseDb{}

	if _, err := coll.InsertOne(ctx, ticket); err != nil {
		return TicketDb{}, storeError(err)
	}

	return ticket, nil
}

func (db *DB) GetTicketById(ctx context.Context, id string) (TicketDb, error) {
	coll := db.Collection(TicketsCollection)

	var ticket TicketDb
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket); err != nil {
		return TicketDb{}, storeError(err)
	}

	return ticket, nil
}

// GetTickets lists tickets newest first; an empty status lists all of them.
func (db *DB) GetTickets(ctx context.Context, status string) ([]TicketDb, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return db.findTickets(ctx, filter)
}

func (db *DB) GetTicketsByUser(ctx context.Context, username string) ([]TicketDb, error) {
	return db.findTickets(ctx, bson.M{"username": username})
}

func (db *DB) findTickets(ctx context.Context, filter bson.M) ([]TicketDb, error) {
	coll := db.Collection(TicketsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return []TicketDb{}, storeError(err)
	}
	defer cursor.Close(ctx)

	tickets := []TicketDb{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return []TicketDb{}, storeError(err)
	}

	return tickets, nil
}

func (db *DB) CountTickets(ctx context.Context, status string) (int, error) {
	coll := db.Collection(TicketsCollection)

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storeError(err)
	}
	return int(total), nil
}

// AddTicketResponse appends the response and moves the ticket to in_progress.
// Returns false when no ticket has the id.
func (db *DB) AddTicketResponse(ctx context.Context, id string, response TicketResponseDb) (bool, error) {
	coll := db.Collection(TicketsCollection)

	now := time.Now().UTC().Truncate(time.Millisecond)
	response.RespondedAt = now
	update := bson.M{
		"$push": bson.M{"responses": response},
		"$set": bson.M{
			"status":    TicketStatusInProgress,
			"updatedAt": now,
		},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, storeError(err)
	}

	return result.MatchedCount > 0, nil
}

// SetTicketStatus writes the status without any transition guard. Returns
// false when no ticket has the id.
func (db *DB) SetTicketStatus(ctx context.Context, id string, status string) (bool, error) {
	coll := db.Collection(TicketsCollection)

	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, storeError(err)
	}

	return result.MatchedCount > 0, nil
}
