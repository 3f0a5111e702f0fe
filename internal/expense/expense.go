package expense

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"meal-manager/internal"
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrEmptyUpdate  = errors.New("no fields to update")
	ErrInvalidField = errors.New("field has the wrong type")
)

// Kind selects the collection an Entry lives in.
type Kind struct {
	Collection string
	Label      string
}

var (
	Bills = Kind{Collection: "bills", Label: "Bill"}
	Costs = Kind{Collection: "costs", Label: "Cost"}
)

func (k Kind) Create(ctx context.Context, db *mongo.Database, e *Entry) error {
	if e.Date != "" {
		if err := internal.ValidDate(e.Date); err != nil {
			return err
		}
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	_, err := db.Collection(k.Collection).InsertOne(ctx, e)
	if err != nil {
		return internal.ErrorFormat{Package: "internal.expense", Level: log.ErrorLevel, Function: k.Collection + ".Create", ObjectID: e.ID, Message: "unable to create " + k.Collection, Error: err}.ToError()
	}

	return nil
}

// List returns the entries dated inside month (YYYY-MM); an empty month lists all.
func (k Kind) List(ctx context.Context, db *mongo.Database, month string) ([]Entry, error) {
	filter, err := internal.DateFilter(bson.M{}, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	cursor, err := db.Collection(k.Collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0)
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, internal.ErrorFormat{Package: "internal.expense", Level: log.ErrorLevel, Function: k.Collection + ".List", Message: "unable to decode " + k.Collection, Error: err}.ToError()
	}

	return entries, nil
}

func (k Kind) Get(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*Entry, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	var e Entry
	err := db.Collection(k.Collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// Update applies set (see UpdateFields) to the entry and returns the modified count.
func (k Kind) Update(ctx context.Context, db *mongo.Database, id primitive.ObjectID, set bson.M) (int64, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	result, err := db.Collection(k.Collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, internal.ErrorFormat{Package: "internal.expense", Level: log.ErrorLevel, Function: k.Collection + ".Update", ObjectID: id, Message: "unable to update " + k.Collection, Error: err}.ToError()
	}
	if result.MatchedCount == 0 {
		return 0, ErrNotFound
	}

	return result.ModifiedCount, nil
}

func (k Kind) Delete(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	result, err := db.Collection(k.Collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return internal.ErrorFormat{Package: "internal.expense", Level: log.ErrorLevel, Function: k.Collection + ".Delete", ObjectID: id, Message: "unable to delete " + k.Collection, Error: err}.ToError()
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
