package activity

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"meal-manager/internal"
)

const collection = "activity"

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLogin  Action = "login"
)

// Event records one mutation made through the API.
type Event struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Actor      string             `json:"actor,omitempty" bson:"actor,omitempty"`
	Action     Action             `json:"action" bson:"action"`
	Collection string             `json:"collection" bson:"collection"`
	Object     string             `json:"object,omitempty" bson:"object,omitempty"`
	ClientIP   string             `json:"client_ip,omitempty" bson:"client_ip,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

func (e *Event) Create(ctx context.Context, db *mongo.Database) error {
	e.ID = primitive.NewObjectID()
	if (e.CreatedAt == time.Time{}) {
		e.CreatedAt = time.Now()
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	_, err := db.Collection(collection).InsertOne(ctx, e)
	if err != nil {
		log.Errorf("error inserting activity event: %s", err)
		return err
	}

	return nil
}

// Latest returns up to limit events, newest first.
func Latest(ctx context.Context, db *mongo.Database, limit int64) ([]Event, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0)
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
