package web

import (
	"errors"

	"github.com/kataras/iris/v12"
	"meal-manager/internal"
	"meal-manager/internal/activity"
	"meal-manager/internal/meals"
)

func addRouteMeals(r *Router) []*Route {
	var tempRoutes []*Route

	tempRoutes = append(tempRoutes, &Route{
		Name: "Record Meal",
		Path: "/meals",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			m := new(meals.Meal)
			if err := ctx.ReadJSON(m); err != nil {
				return badRequest("Invalid request body")
			}

			result, err := m.Record(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}

			message := "Meal updated"
			action := activity.ActionUpdate
			if result.Created {
				message = "Meal recorded"
				action = activity.ActionCreate
			}
			r.record(ctx, action, "meals", m.Email+"/"+m.Date, m.Email)

			return ctx.JSON(iris.Map{"message": message, "data": result})
		},
		Type: RouteType_POST,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Update Meal Count",
		Path: "/meals",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			m := new(meals.Meal)
			if err := ctx.ReadJSON(m); err != nil {
				return badRequest("Invalid request body")
			}

			result, err := m.SetCount(ctx.Request().Context(), r.DB)
			if err != nil {
				return err
			}
			r.record(ctx, activity.ActionUpdate, "meals", m.Email+"/"+m.Date, m.Email)

			return ctx.JSON(iris.Map{"message": "Meal updated", "data": result})
		},
		Type: RouteType_PATCH,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get Meals",
		Path: "/meals",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			all, err := meals.List(ctx.Request().Context(), r.DB, ctx.URLParam("month"), ctx.URLParam("email"))
			if err != nil {
				return err
			}
			return ctx.JSON(all)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get Meal",
		Path: "/meals/{email}/{date}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			params := ctx.Params()
			m := meals.Meal{Email: params.Get("email"), Date: params.Get("date")}

			meal, err := m.Get(ctx.Request().Context(), r.DB)
			if errors.Is(err, meals.ErrNotFound) {
				// clients treat an empty object as "nothing recorded that day"
				return ctx.JSON(iris.Map{})
			}
			if err != nil {
				return err
			}
			return ctx.JSON(meal)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Delete Meal",
		Path: "/meals/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			if err = meals.Delete(ctx.Request().Context(), r.DB, id); err != nil {
				return err
			}
			r.record(ctx, activity.ActionDelete, "meals", id.Hex(), "")

			return ctx.JSON(iris.Map{"message": "Meal deleted"})
		},
		Type: RouteType_DELETE,
	})

	return tempRoutes
}
