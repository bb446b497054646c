package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserDb struct {
	Id           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	IsAdmin      bool      `json:"isAdmin" bson:"isAdmin"`
	IsActive     bool      `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (db *DB) AddUser(ctx context.Context, user UserDb) (UserDb, error) {
	coll := db.Collection(UsersCollection)

	user.Id = primitive.NewObjectID().Hex()
	user.Email = strings.ToLower(user.Email)
	now := time.Now().UTC().Truncate(time.Millisecond)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := coll.InsertOne(ctx, user); err != nil {
		return UserDb{}, storeError(err)
	}

	return user, nil
}

func (db *DB) GetUserById(ctx context.Context, id string) (UserDb, error) {
	return db.findUser(ctx, bson.M{"_id": id})
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (UserDb, error) {
	return db.findUser(ctx, bson.M{"username": username})
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (UserDb, error) {
	return db.findUser(ctx, bson.M{"email": strings.ToLower(email)})
}

func (db *DB) findUser(ctx context.Context, filter bson.M) (UserDb, error) {
	coll := db.Collection(UsersCollection)

	var userDb UserDb
	if err := coll.FindOne(ctx, filter).Decode(&userDb); err != nil {
		return UserDb{}, storeError(err)
	}

	return userDb, nil
}

func (db *DB) DistinctUsernames(ctx context.Context) ([]string, error) {
	coll := db.Collection(UsersCollection)

	values, err := coll.Distinct(ctx, "username", bson.M{})
	if err != nil {
		return []string{}, storeError(err)
	}

	return distinctStrings(values), nil
}
