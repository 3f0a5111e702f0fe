package users

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

const collection = "users"

const RoleMember = "member"

var (
	ErrUserExists = errors.New("user already exists")
	ErrNotFound   = errors.New("user not found")
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	// Email is the login name and is unique across the collection.
	Email       string             `bson:"email" json:"email"`
	// Password holds the bcrypt hash and is never serialized to clients.
	Password    string             `bson:"password" json:"-"`
	Name        string             `bson:"name" json:"name"`
	Phone       string             `bson:"phone" json:"phone"`
	Role        string             `bson:"role" json:"role"`
	RentedSit   string             `bson:"rented_sit" json:"rented_sit"`
	SitRent     internal.Amount    `bson:"sit_rent" json:"sit_rent"`
	JoiningDate string             `bson:"joining_date" json:"joining_date"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Create inserts the user. The unique email index turns a duplicate into ErrUserExists.
func (u *User) Create(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	u.ID = primitive.NewObjectID()
	if u.Role == "" {
		u.Role = RoleMember
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	_, err := db.Collection(collection).InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return internal.ErrorFormat{Package: "internal.users", Level: log.ErrorLevel, Function: "users.Create", ObjectID: u.ID, Message: "unable to insert user", Error: err}.ToError()
	}

	log.Info("inserted user with the id " + u.ID.Hex())

	return nil
}

// FromID returns the user stored under u.ID.
func (u *User) FromID(ctx context.Context, db *mongo.Database) (*User, error) {
	return findOne(ctx, db, bson.D{{Key: "_id", Value: u.ID}})
}

// FromEmail returns the user registered with u.Email.
func (u *User) FromEmail(ctx context.Context, db *mongo.Database) (*User, error) {
	return findOne(ctx, db, bson.D{{Key: "email", Value: u.Email}})
}

func findOne(ctx context.Context, db *mongo.Database, filter bson.D) (*User, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	var user User
	err := db.Collection(collection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, internal.ErrorFormat{Package: "internal.users", Level: log.ErrorLevel, Function: "users.findOne", Message: "unable to search database for user", Error: err}.ToError()
	}

	return &user, nil
}

func GetAll(ctx context.Context, db *mongo.Database) ([]User, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	cursor, err := db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "joining_date", Value: 1}}))
	if err != nil {
		return nil, err
	}

	all := make([]User, 0)
	if err = cursor.All(ctx, &all); err != nil {
		return nil, internal.ErrorFormat{Package: "internal.users", Level: log.ErrorLevel, Function: "users.GetAll", Message: "unable to decode users", Error: err}.ToError()
	}

	return all, nil
}

// Update writes the profile fields of u over the stored document. It returns
// ErrNotFound when no document has u.ID and ErrUserExists when the new email
// belongs to someone else.
func (u *User) Update(ctx context.Context, db *mongo.Database) (int64, error) {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	u.UpdatedAt = time.Now()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: u.Name},
		{Key: "email", Value: u.Email},
		{Key: "phone", Value: u.Phone},
		{Key: "password", Value: u.Password},
		{Key: "role", Value: u.Role},
		{Key: "rented_sit", Value: u.RentedSit},
		{Key: "sit_rent", Value: u.SitRent},
		{Key: "joining_date", Value: u.JoiningDate},
		{Key: "updatedAt", Value: u.UpdatedAt},
	}}}

	result, err := db.Collection(collection).UpdateOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrUserExists
		}
		return 0, internal.ErrorFormat{Package: "internal.users", Level: log.ErrorLevel, Function: "users.Update", ObjectID: u.ID, Message: "unable to update user", Error: err}.ToError()
	}
	if result.MatchedCount == 0 {
		return 0, ErrNotFound
	}

	return result.ModifiedCount, nil
}

func (u *User) Delete(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := internal.OpContext(ctx)
	defer cancel()

	result, err := db.Collection(collection).DeleteOne(ctx, bson.D{{Key: "_id", Value: u.ID}})
	if err != nil {
		return internal.ErrorFormat{Package: "internal.users", Level: log.ErrorLevel, Function: "users.Delete", ObjectID: u.ID, Message: "unable to delete user", Error: err}.ToError()
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}
