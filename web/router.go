package web

import (
	"context"
	"sync"

	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris/v12"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"meal-manager/internal/activity"
	"meal-manager/internal/auth"
	"meal-manager/internal/expense"
)

const greeting = "Meal management server is open..."

type Router struct {
	App      *iris.Application
	DB       *mongo.Database
	Issuer   *auth.Issuer
	Routes   []*Route
	Activity chan activity.Event
	metrics  *metrics

	activityMu     sync.RWMutex
	activityClosed bool
}

func NewRouter(mongoDB *mongo.Database, issuer *auth.Issuer) *Router {
	app := iris.New()
	app.Logger().SetLevel("warn")

	router := &Router{
		App:     app,
		DB:      mongoDB,
		Issuer:  issuer,
		metrics: newMetrics(),
	}
	return router
}

func (r *Router) Init() {
	r.App.UseRouter(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{iris.MethodGet, iris.MethodPost, iris.MethodPatch, iris.MethodDelete, iris.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))
	r.App.UseRouter(RequestIDMiddleware)
	r.App.UseRouter(ProxyIPMiddleware)
	r.App.UseRouter(AccessLogMiddleware)
	r.App.UseRouter(r.metrics.middleware)

	r.App.Get("/", func(ctx iris.Context) {
		ctx.WriteString(greeting)
	})
	r.App.Get("/metrics", iris.FromStd(r.metrics.handler()))

	r.Routes = append(r.Routes, addRouteAuth(r)...)
	r.Routes = append(r.Routes, addRouteUsers(r)...)
	r.Routes = append(r.Routes, addRouteMeals(r)...)
	r.Routes = append(r.Routes, addRouteExpense(r, "/bills", "Bill created", expense.Bills)...)
	r.Routes = append(r.Routes, addRouteExpense(r, "/costs", "Cost added", expense.Costs)...)
	r.Routes = append(r.Routes, addRouteActivity(r)...)

	log.Info("Loading all routes...")
	log.Infof("Found %d route(s).", len(r.Routes))
	if len(r.Routes) == 0 {
		log.Error("No routes found.")
		return
	}

	log.Info("Loading public routes...")
	r.LoadRoutes(false)
	log.Info("Loading JWT routes...")
	r.LoadRoutes(true)
}

// LoadRoutes registers the routes whose JWT flag equals JWT. Protected routes get
// the bearer verifier in front of their handler.
func (r *Router) LoadRoutes(JWT bool) {
	for n := range r.Routes {
		v := r.Routes[n]
		if v.JWT != JWT {
			continue
		}

		handlers := make([]iris.Handler, 0, 2)
		if v.JWT {
			handlers = append(handlers, VerifySession(r.Issuer))
		}
		handlers = append(handlers, r.serve(v))

		r.App.Handle(string(v.Type), v.Path, handlers...)
		log.Debugf("Loaded route: %s (%s) - %s", v.Name, v.Type, v.Path)
	}
}

// serve runs the route func and answers with the mapped status when it fails.
func (r *Router) serve(v *Route) iris.Handler {
	return func(ctx iris.Context) {
		err := v.Func(ctx)
		if err == nil {
			return
		}

		status, message := statusFor(err)
		entry := log.WithFields(log.Fields{"route": v.Name, "status": status, "request_id": RequestID(ctx)})
		if status >= iris.StatusInternalServerError {
			entry.Error(err)
		} else {
			entry.Debug(err)
		}
		ctx.StopWithJSON(status, iris.Map{"message": message})
	}
}

func (r *Router) Listen(host string) error {
	log.Infof("Server is running on %s", host)
	return r.App.Listen(host,
		iris.WithoutServerError(iris.ErrServerClosed),
		iris.WithoutStartupLog,
		iris.WithoutInterruptHandler,
	)
}

func (r *Router) Shutdown(ctx context.Context) error {
	return r.App.Shutdown(ctx)
}

// CloseActivity closes the activity channel once. Handlers still running after
// a timed out Shutdown stop recording instead of sending on the closed channel.
func (r *Router) CloseActivity() {
	r.activityMu.Lock()
	defer r.activityMu.Unlock()

	if r.Activity == nil || r.activityClosed {
		return
	}
	r.activityClosed = true
	close(r.Activity)
}
