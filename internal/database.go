package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Timeout bounds every single database operation issued by a request.
const Timeout = 10 * time.Second

type DatabaseConnection struct {
	URI         string
	DB          string
	MongoDB     *mongo.Database
	MongoClient *mongo.Client
	Logger      *logrus.Logger
}

func (d *DatabaseConnection) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	session := options.Client().ApplyURI(d.URI)
	client, err := mongo.Connect(ctx, session)
	if err != nil {
		return err
	}
	if err = client.Ping(ctx, nil); err != nil {
		return err
	}

	d.MongoClient = client
	d.MongoDB = client.Database(d.DB)
	d.Logger.Infof("Successfully connected to database: %s", d.DB)
	return nil
}

// ErrDuplicateRecords means a unique index could not be built because the
// collection already holds duplicates, e.g. left by an older deployment.
var ErrDuplicateRecords = errors.New("collection holds duplicate records")

type collectionIndex struct {
	collection string
	fields     string
	model      mongo.IndexModel
}

var indexes = []collectionIndex{
	{"users", "email", mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	}},
	{"meals", "(email, date)", mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_date_unique"),
	}},
	{"bills", "date", mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}},
	{"costs", "date", mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}},
}

// EnsureIndexes creates the unique keys the record collections rely on for
// insert-or-fail and conditional upserts.
func (d *DatabaseConnection) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	for _, idx := range indexes {
		name, err := d.MongoDB.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
		if mongo.IsDuplicateKeyError(err) {
			d.Logger.WithFields(logrus.Fields{
				"collection": idx.collection,
				"key":        idx.fields,
			}).Errorf("duplicate %s values in %s; keep one document per %s and delete the rest, then restart", idx.fields, idx.collection, idx.fields)
			return fmt.Errorf("%w: %s on %s", ErrDuplicateRecords, idx.collection, idx.fields)
		}
		if err != nil {
			return ErrorFormat{Package: "internal", Function: "EnsureIndexes", Level: logrus.ErrorLevel, Message: "unable to create index on " + idx.collection, Error: err}.ToError()
		}
		d.Logger.Debugf("index %s ready on %s", name, idx.collection)
	}

	return nil
}

func (d *DatabaseConnection) Disconnect(ctx context.Context) {
	if d.MongoClient == nil {
		return
	}
	if err := d.MongoClient.Disconnect(ctx); err != nil {
		d.Logger.Error(err)
	}
}

// OpContext derives the per-operation context used by the record packages.
func OpContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, Timeout)
}
