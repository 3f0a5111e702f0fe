package web

import (
	"errors"

	"github.com/kataras/iris/v12"
	"meal-manager/internal"
	"meal-manager/internal/activity"
	"meal-manager/internal/expense"
)

// addRouteExpense registers the bill or cost routes under base.
func addRouteExpense(r *Router, base, createdMessage string, kind expense.Kind) []*Route {
	var tempRoutes []*Route

	entryError := func(err error) error {
		switch {
		case errors.Is(err, expense.ErrNotFound):
			return notFound(kind.Label + " not found")
		case errors.Is(err, expense.ErrEmptyUpdate), errors.Is(err, expense.ErrInvalidField):
			return badRequest(err.Error())
		}
		return err
	}

	tempRoutes = append(tempRoutes, &Route{
		Name: "New " + kind.Label,
		Path: base,
		JWT:  false,
		Func: func(ctx iris.Context) error {
			e := new(expense.Entry)
			if err := ctx.ReadJSON(e); err != nil {
				return badRequest("Invalid request body")
			}

			if err := kind.Create(ctx.Request().Context(), r.DB, e); err != nil {
				return entryError(err)
			}
			r.record(ctx, activity.ActionCreate, kind.Collection, e.ID.Hex(), e.Email)

			return ctx.JSON(iris.Map{"message": createdMessage, "insertedId": e.ID})
		},
		Type: RouteType_POST,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get " + kind.Collection,
		Path: base,
		JWT:  false,
		Func: func(ctx iris.Context) error {
			entries, err := kind.List(ctx.Request().Context(), r.DB, ctx.URLParam("month"))
			if err != nil {
				return entryError(err)
			}
			return ctx.JSON(entries)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get " + kind.Label,
		Path: base + "/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			e, err := kind.Get(ctx.Request().Context(), r.DB, id)
			if err != nil {
				return entryError(err)
			}
			return ctx.JSON(e)
		},
		Type: RouteType_GET,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Update " + kind.Label,
		Path: base + "/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			var body map[string]interface{}
			if err = ctx.ReadJSON(&body); err != nil {
				return badRequest("Invalid request body")
			}
			set, err := expense.UpdateFields(body)
			if err != nil {
				return entryError(err)
			}

			modified, err := kind.Update(ctx.Request().Context(), r.DB, id, set)
			if err != nil {
				return entryError(err)
			}
			r.record(ctx, activity.ActionUpdate, kind.Collection, id.Hex(), "")

			return ctx.JSON(iris.Map{"message": kind.Label + " updated", "modifiedCount": modified})
		},
		Type: RouteType_PATCH,
	})

	tempRoutes = append(tempRoutes, &Route{
		Name: "Delete " + kind.Label,
		Path: base + "/{id}",
		JWT:  false,
		Func: func(ctx iris.Context) error {
			id, err := internal.ParseObjectID(ctx.Params().Get("id"))
			if err != nil {
				return err
			}

			if err = kind.Delete(ctx.Request().Context(), r.DB, id); err != nil {
				return entryError(err)
			}
			r.record(ctx, activity.ActionDelete, kind.Collection, id.Hex(), "")

			return ctx.JSON(iris.Map{"message": kind.Label + " deleted"})
		},
		Type: RouteType_DELETE,
	})

	return tempRoutes
}
