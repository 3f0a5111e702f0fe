package web

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iris-contrib/httpexpect/v2"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"meal-manager/internal/activity"
	"meal-manager/internal/auth"
)

const testSecret = "router-test-secret"

func newTestServer(mt *mtest.T) (*httpexpect.Expect, *auth.Issuer) {
	issuer := auth.NewIssuer(testSecret, 0)
	r := NewRouter(mt.DB, issuer)
	r.Init()
	return httptest.New(mt.T, r.App), issuer
}

func TestRouterRoutes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("greeting", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/").Expect().Status(iris.StatusOK).Body().IsEqual(greeting)
	})

	mt.Run("request id is echoed", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/").WithHeader("X-Request-Id", "abc-123").Expect().
			Status(iris.StatusOK).Header("X-Request-Id").IsEqual("abc-123")
	})

	mt.Run("metrics", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/").Expect().Status(iris.StatusOK)
		e.GET("/metrics").Expect().Status(iris.StatusOK).Body().Contains("http_requests_total")
	})

	mt.Run("auth without bearer", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/auth").Expect().Status(iris.StatusUnauthorized).
			JSON().Object().HasValue("message", "Unauthorized")
		e.GET("/auth").WithHeader("Authorization", "Token abc").Expect().Status(iris.StatusUnauthorized)
	})

	mt.Run("auth with a bad token", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/auth").WithHeader("Authorization", "Bearer not-a-token").Expect().
			Status(iris.StatusForbidden).JSON().Object().HasValue("message", "Forbidden")
	})

	mt.Run("auth rejects tokens the issuer would not accept", func(mt *mtest.T) {
		e, _ := newTestServer(mt)

		sign := func(method jwt.SigningMethod, secret string, exp *jwt.NumericDate) string {
			claims := auth.Session{
				Email:            "a@mess.io",
				Role:             "member",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
			}
			token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
			require.NoError(mt, err)
			return token
		}
		hour := jwt.NewNumericDate(time.Now().Add(time.Hour))

		for _, token := range []string{
			sign(jwt.SigningMethodHS256, "other-secret", hour),
			sign(jwt.SigningMethodHS512, testSecret, hour),
			sign(jwt.SigningMethodHS256, testSecret, jwt.NewNumericDate(time.Now().Add(-time.Hour))),
			sign(jwt.SigningMethodHS256, testSecret, nil),
		} {
			e.GET("/auth").WithHeader("Authorization", "Bearer "+token).Expect().
				Status(iris.StatusForbidden).JSON().Object().HasValue("message", "Forbidden")
		}
	})

	mt.Run("auth with a valid token", func(mt *mtest.T) {
		e, issuer := newTestServer(mt)
		token, err := issuer.Issue("a@mess.io", "member")
		require.NoError(mt, err)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "a@mess.io"},
			{Key: "password", Value: "$2a$10$stored"},
			{Key: "name", Value: "A"},
		}))

		obj := e.GET("/auth").WithHeader("Authorization", "Bearer "+token).Expect().
			Status(iris.StatusOK).JSON().Object()
		obj.HasValue("email", "a@mess.io")
		obj.NotContainsKey("password")
	})

	mt.Run("register duplicate", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		e.POST("/Users").WithJSON(map[string]interface{}{"email": "a@mess.io", "password": "pw"}).Expect().
			Status(iris.StatusConflict).JSON().Object().HasValue("message", "User already exists")
	})

	mt.Run("register", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		obj := e.POST("/Users").WithJSON(map[string]interface{}{"email": "a@mess.io", "password": "pw"}).Expect().
			Status(iris.StatusOK).JSON().Object()
		obj.HasValue("acknowledged", true)
		obj.ContainsKey("insertedId")
	})

	mt.Run("register with an over-long password", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.POST("/Users").WithJSON(map[string]interface{}{"email": "a@mess.io", "password": strings.Repeat("p", 80)}).Expect().
			Status(iris.StatusBadRequest).JSON().Object().HasValue("message", "Password is too long")
	})

	mt.Run("register after activity is closed", func(mt *mtest.T) {
		issuer := auth.NewIssuer(testSecret, 0)
		r := NewRouter(mt.DB, issuer)
		r.Activity = make(chan activity.Event, 1)
		r.Init()
		e := httptest.New(mt.T, r.App)

		r.CloseActivity()
		r.CloseActivity()
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		e.POST("/Users").WithJSON(map[string]interface{}{"email": "a@mess.io", "password": "pw"}).Expect().
			Status(iris.StatusOK)
	})

	mt.Run("users with legacy string rents", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@mess.io"}, {Key: "sit_rent", Value: "2500"}},
		))

		arr := e.GET("/Users").Expect().Status(iris.StatusOK).JSON().Array()
		arr.Length().IsEqual(1)
		arr.Value(0).Object().HasValue("sit_rent", 2500)
	})

	mt.Run("register without password", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.POST("/Users").WithJSON(map[string]interface{}{"email": "a@mess.io"}).Expect().
			Status(iris.StatusBadRequest)
	})

	hash, err := auth.HashPassword("pw")
	require.NoError(t, err)
	stored := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "email", Value: "a@mess.io"},
		{Key: "password", Value: hash},
		{Key: "role", Value: "manager"},
	}

	mt.Run("login wrong password", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch, stored))

		e.POST("/login").WithJSON(map[string]string{"email": "a@mess.io", "password": "nope"}).Expect().
			Status(iris.StatusUnauthorized).JSON().Object().HasValue("message", "Invalid credentials")
	})

	mt.Run("login unknown email", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch))

		e.POST("/login").WithJSON(map[string]string{"email": "ghost@mess.io", "password": "pw"}).Expect().
			Status(iris.StatusNotFound).JSON().Object().HasValue("message", "User not found")
	})

	mt.Run("login", func(mt *mtest.T) {
		e, issuer := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch, stored))

		obj := e.POST("/login").WithJSON(map[string]string{"email": "a@mess.io", "password": "pw"}).Expect().
			Status(iris.StatusOK).JSON().Object()
		obj.HasValue("message", "Login successful")
		obj.Value("user").Object().NotContainsKey("password")

		session, err := issuer.Parse(obj.Value("token").String().Raw())
		require.NoError(mt, err)
		assert.Equal(mt, "a@mess.io", session.Email)
		assert.Equal(mt, "manager", session.Role)
	})

	mt.Run("user not found", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.users", mtest.FirstBatch))

		e.GET("/Users/ghost@mess.io").Expect().Status(iris.StatusNotFound)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.DELETE("/users/123").Expect().Status(iris.StatusBadRequest).
			JSON().Object().HasValue("message", "Invalid id")
		e.GET("/bills/xyz").Expect().Status(iris.StatusBadRequest)
	})

	mt.Run("delete missing bill", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		e.DELETE("/bills/" + primitive.NewObjectID().Hex()).Expect().
			Status(iris.StatusNotFound).JSON().Object().HasValue("message", "Bill not found")
	})

	mt.Run("invalid month", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/costs").WithQuery("month", "2025-13").Expect().Status(iris.StatusBadRequest)
		e.GET("/meals").WithQuery("month", "May").Expect().Status(iris.StatusBadRequest)
	})

	mt.Run("bill update with a mistyped field", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.PATCH("/bills/" + primitive.NewObjectID().Hex()).WithJSON(map[string]interface{}{"title": 123}).Expect().
			Status(iris.StatusBadRequest)
	})

	mt.Run("bills list survives legacy documents", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.bills", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: 123.0}, {Key: "amount", Value: 10.0}, {Key: "date", Value: "2025-05-02"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "Gas"}, {Key: "amount", Value: "1200"}, {Key: "date", Value: "2025-05-03"}},
		))

		arr := e.GET("/bills").WithQuery("month", "2025-05").Expect().Status(iris.StatusOK).JSON().Array()
		arr.Length().IsEqual(2)
		arr.Value(0).Object().HasValue("title", 123)
		arr.Value(1).Object().HasValue("amount", 1200)
	})

	mt.Run("cost with a string amount", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		e.POST("/costs").WithJSON(map[string]interface{}{"title": "Rice", "amount": "1200", "date": "2025-05-02"}).Expect().
			Status(iris.StatusOK).JSON().Object().HasValue("message", "Cost added")

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, 1200.0, cmd.Lookup("documents", "0", "amount").Double())
	})

	mt.Run("empty cost update", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.PATCH("/costs/" + primitive.NewObjectID().Hex()).WithJSON(map[string]string{"_id": "x"}).Expect().
			Status(iris.StatusBadRequest)
	})

	mt.Run("record meal", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}}}},
		))

		e.POST("/meals").WithJSON(map[string]interface{}{"email": "a@mess.io", "date": "2025-05-01", "lunch": 1}).Expect().
			Status(iris.StatusOK).JSON().Object().HasValue("message", "Meal recorded")
	})

	mt.Run("record meal without date", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.POST("/meals").WithJSON(map[string]interface{}{"email": "a@mess.io"}).Expect().
			Status(iris.StatusBadRequest).JSON().Object().HasValue("message", "Missing fields")
	})

	mt.Run("meal not recorded", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "meal.meals", mtest.FirstBatch))

		e.GET("/meals/a@mess.io/2025-05-01").Expect().Status(iris.StatusOK).JSON().Object().IsEmpty()
	})

	mt.Run("activity requires a session", func(mt *mtest.T) {
		e, _ := newTestServer(mt)
		e.GET("/activity").Expect().Status(iris.StatusUnauthorized)
	})
}
