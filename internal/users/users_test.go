package users

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"meal-manager/internal"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{Email: "a@mess.io", Password: "$2a$10$hash", Name: "A"}
	out, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "password")
	assert.NotContains(t, string(out), "$2a$10$hash")
	assert.Contains(t, string(out), `"email":"a@mess.io"`)
}

func TestUsers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create defaults the role", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := User{Email: "a@mess.io"}
		require.NoError(mt, u.Create(ctx, mt.DB))
		assert.Equal(mt, RoleMember, u.Role)
		assert.False(mt, u.ID.IsZero())
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		u := User{Email: "a@mess.io"}
		assert.ErrorIs(mt, u.Create(ctx, mt.DB), ErrUserExists)
	})

	mt.Run("from email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "a@mess.io"},
			{Key: "name", Value: "A"},
			{Key: "sit_rent", Value: 1500.0},
		}))

		u := User{Email: "a@mess.io"}
		found, err := u.FromEmail(ctx, mt.DB)
		require.NoError(mt, err)
		assert.Equal(mt, id, found.ID)
		assert.Equal(mt, "A", found.Name)
		assert.Equal(mt, internal.Amount(1500), found.SitRent)
	})

	mt.Run("from email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch))

		u := User{Email: "ghost@mess.io"}
		_, err := u.FromEmail(ctx, mt.DB)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get all", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@mess.io"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@mess.io"}},
		))

		all, err := GetAll(ctx, mt.DB)
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, "b@mess.io", all[1].Email)
	})

	mt.Run("get all reads string and integer rents", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@mess.io"}, {Key: "sit_rent", Value: "2500"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@mess.io"}, {Key: "sit_rent", Value: int32(1800)}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "c@mess.io"}, {Key: "sit_rent", Value: ""}},
		))

		all, err := GetAll(ctx, mt.DB)
		require.NoError(mt, err)
		require.Len(mt, all, 3)
		assert.Equal(mt, internal.Amount(2500), all[0].SitRent)
		assert.Equal(mt, internal.Amount(1800), all[1].SitRent)
		assert.Equal(mt, internal.Amount(0), all[2].SitRent)
	})

	mt.Run("update missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		u := User{ID: primitive.NewObjectID(), Email: "a@mess.io"}
		_, err := u.Update(ctx, mt.DB)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update reports modified count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		u := User{ID: primitive.NewObjectID(), Email: "a@mess.io"}
		modified, err := u.Update(ctx, mt.DB)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), modified)
	})

	mt.Run("delete missing user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		u := User{ID: primitive.NewObjectID()}
		assert.ErrorIs(mt, u.Delete(ctx, mt.DB), ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		u := User{ID: primitive.NewObjectID()}
		assert.NoError(mt, u.Delete(ctx, mt.DB))
	})
}
