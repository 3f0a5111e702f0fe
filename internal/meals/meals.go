package meals

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

const collection = "meals"

var (
	ErrMissingFields = errors.New("missing fields")
	ErrNotFound      = errors.New("meal not found")
)

// Meal is one member's meals for one day. Breakfast, lunch and dinner are counts
// so guest meals and half portions can be recorded.
type Meal struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Date      string             `json:"date" bson:"date"`
	Breakfast float64            `json:"breakfast" bson:"breakfast"`
	Lunch     float64            `json:"lunch" bson:"lunch"`
	Dinner    float64            `json:"dinner" bson:"dinner"`
	MealCount float64            `json:"mealCount" bson:"mealCount"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RecordResult reports what Record did to the (email, date) slot.
type RecordResult struct {
	Created       bool               `json:"created"`
	MatchedCount  int64              `json:"matchedCount"`
	ModifiedCount int64              `json:"modifiedCount"`
	UpsertedID    primitive.ObjectID `json:"upsertedId,omitempty"`
}

func (m *Meal) key() bson.D {
	return bson.D{{Key: "email", Value: m.Email}, {Key: "date", Value: m.Date}}
}

func (m *Meal) validate() error {
	if m.Email == "" || m.Date == "" {
		return ErrMissingFields
	}
	return internal.ValidDate(m.Date)
}

// Record upserts the meal on its (email, date) key in one write. An existing
// record only gets breakfast, lunch and dinner overwritten; a new one stores
// every submitted field.
func (m *Meal) Record(ctx context.Context, db *mongo.Database) (*RecordResult, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	now := time.Now()
	onInsert := bson.D{{Key: "mealCount", Value: m.MealCount}, {Key: "createdAt", Value: now}}
	if m.Name != "" {
		onInsert = append(onInsert, bson.E{Key: "name", Value: m.Name})
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "breakfast", Value: m.Breakfast},
			{Key: "lunch", Value: m.Lunch},
			{Key: "dinner", Value: m.Dinner},
			{Key: "updatedAt", Value: now},
		}},
		{Key: "$setOnInsert", Value: onInsert},
	}

	result, err := db.Collection(collection).UpdateOne(ctx, m.key(), update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, internal.ErrorFormat{Package: "internal.meals", Level: log.ErrorLevel, Function: "meals.Record", Message: "unable to record meal for " + m.Email + " on " + m.Date, Error: err}.ToError()
	}

	return newRecordResult(result), nil
}

// SetCount upserts mealCount on the (email, date) key. A zero count is rejected.
func (m *Meal) SetCount(ctx context.Context, db *mongo.Database) (*RecordResult, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if m.MealCount == 0 {
		return nil, ErrMissingFields
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	now := time.Now()
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "mealCount", Value: m.MealCount}, {Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}

	result, err := db.Collection(collection).UpdateOne(ctx, m.key(), update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, internal.ErrorFormat{Package: "internal.meals", Level: log.ErrorLevel, Function: "meals.SetCount", Message: "unable to update meal count for " + m.Email + " on " + m.Date, Error: err}.ToError()
	}

	return newRecordResult(result), nil
}

func newRecordResult(result *mongo.UpdateResult) *RecordResult {
	out := &RecordResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		out.Created = true
		out.UpsertedID = id
	} else if result.UpsertedCount > 0 {
		out.Created = true
	}
	return out
}

// Get returns the meal for m.Email on m.Date, or ErrNotFound.
func (m *Meal) Get(ctx context.Context, db *mongo.Database) (*Meal, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	var meal Meal
	err := db.Collection(collection).FindOne(ctx, m.key()).Decode(&meal)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &meal, nil
}

// List returns meals in month (YYYY-MM, optional), optionally for one email.
func List(ctx context.Context, db *mongo.Database, month, email string) ([]Meal, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	filter, err := internal.DateFilter(filter, month)
	if err != nil {
		return nil, err
	}

	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	cursor, err := db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}

	all := make([]Meal, 0)
	if err = cursor.All(ctx, &all); err != nil {
		return nil, internal.ErrorFormat{Package: "internal.meals", Level: log.ErrorLevel, Function: "meals.List", Message: "unable to decode meals", Error: err}.ToError()
	}

	return all, nil
}

func Delete(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	result, err := db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return internal.ErrorFormat{Package: "internal.meals", Level: log.ErrorLevel, Function: "meals.Delete", ObjectID: id, Message: "unable to delete meal", Error: err}.ToError()
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
