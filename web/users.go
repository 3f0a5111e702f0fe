package web

import (
	"github.com/kataras/iris/v12"
	"meal-manager/internal"
	"meal-manager/internal/activity"
	"meal-manager/internal/auth"
	"meal-manager/internal/users"
)

func addRouteUsers(r *Router) []*Route {
	var tempRoutes []*Route

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get Users",
		Path: "/Users",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			all, err := users.GetAll(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}
			return ctx.JSON(all)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get User",
		Path: "/Users/{email}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			u := users.User{Email: ctx.Params().Get("email")}
			user, err := u.FromEmail(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}
			return ctx.JSON(user)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Update User",
		Path: "/users/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			var p auth.Profile
			if err = ctx.ReadJSON(&p); err != nil {
				return badRequest("Invalid request body")
			}

			modified, err := auth.UpdateProfile(ctx.Request().Context(), r.DB, id, &p)
			if err != nil {
				return err
			}
			r.record(ctx, activity.ActionUpdate, "users", id.Hex(), p.Email)

			return ctx.JSON(iris.Map{"message": "User updated", "modifiedCount": modified})
		},
		Type: RouteType_PATCH,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Delete User",
		Path: "/users/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			u := users.User{ID: id}
			if err = u.Delete(ctx.Request().Context(), r.DB); err != nil {
				return err
			}
			r.record(ctx, activity.ActionDelete, "users", id.Hex(), "")

			return ctx.JSON(iris.Map{"message": "User deleted", "deletedCount": 1})
		},
		Type: RouteType_DELETE,
	})

	return tempRoutes
}
