package web

import (
	"github.com/kataras/iris/v12"
	"meal-manager/internal/activity"
	"meal-manager/internal/auth"
	"meal-manager/internal/users"
)

func addRouteAuth(r *Router) []*Route {
	var tempRoutes []*Route

	tempRoutes = append(tempRoutes, &Route{
		Name: "Register",
		Path: "/Users",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			var reg auth.Register
			if err := ctx.ReadJSON(&reg); err != nil {
				return badRequest("Invalid request body")
			}

			id, err := reg.Register(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}
			r.record(ctx, activity.ActionCreate, "users", id.Hex(), reg.Email)

			return ctx.JSON(iris.Map{"acknowledged": true, "insertedId": id})
		},
		Type: RouteType_POST,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Login",
		Path: "/login",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			var l auth.Login
			if err := ctx.ReadJSON(&l); err != nil {
				return badRequest("Invalid request body")
			}

			result, err := l.Login(ctx.Request().Context(), r.DB, r.Issuer)
			if err != nil {
				return err
			}
			r.record(ctx, activity.ActionLogin, "users", result.User.ID.Hex(), result.User.Email)

			return ctx.JSON(result)
		},
		Type: RouteType_POST,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Current User",
		Path: "/auth",
		JWT:  true,
		Func: func(ctx iris.Context) error {
			session := GetClaims(ctx)
			u := users.User{Email: session.Email}
			user, err := u.FromEmail(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}

			return ctx.JSON(user)
		},
		Type: RouteType_GET,
	})

	return tempRoutes
}

// record hands an activity event to the worker without blocking the request.
func (r *Router) record(ctx iris.Context, action activity.Action, collection, object, actor string) {
	if r.Activity == nil {
		return
	}
	if session := GetClaims(ctx); session != nil {
		actor = session.Email
	}

	event := activity.Event{
		Actor:      actor,
		Action:     action,
		Collection: collection,
		Object:     object,
		ClientIP:   ClientIP(ctx),
	}

	r.activityMu.RLock()
	defer r.activityMu.RUnlock()
	if r.activityClosed {
		return
	}
	select {
	case r.Activity <- event:
	default:
		// worker is behind; drop rather than stall the response
	}
}
