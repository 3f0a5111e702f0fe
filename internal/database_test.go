package internal

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every index", func(mt *mtest.T) {
		for range indexes {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}

		d := DatabaseConnection{MongoDB: mt.DB, Logger: logrus.StandardLogger()}
		require.NoError(mt, d.EnsureIndexes(context.Background()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "users", evt.Command.Lookup("createIndexes").StringValue())
		assert.True(mt, evt.Command.Lookup("indexes", "0", "unique").Boolean())
	})

	mt.Run("duplicate legacy records", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11000,
				Name:    "DuplicateKey",
				Message: "E11000 duplicate key error collection: meal-managements.meals index: email_date_unique",
			}),
		)

		d := DatabaseConnection{MongoDB: mt.DB, Logger: logrus.StandardLogger()}
		err := d.EnsureIndexes(context.Background())
		assert.ErrorIs(mt, err, ErrDuplicateRecords)
		assert.Contains(mt, err.Error(), "meals")
	})
}
