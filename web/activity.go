package web

import (
	"github.com/kataras/iris/v12"
	"meal-manager/internal/activity"
)

const maxActivity = 100

func addRouteActivity(r *Router) []*Route {
	var tempRoutes []*Route

	tempRoutes = append(tempRoutes, &Route{
		Name: "Get Activity",
		Path: "/activity",
		JWT:  true,
		Func: func(ctx iris.Context) error {
			limit := ctx.URLParamInt64Default("limit", maxActivity)
			if limit <= 0 || limit > maxActivity {
				limit = maxActivity
			}

			events, err := activity.Latest(ctx.Request().Context(), r.DB, limit)
			if err != nil {
				return err
			}
			return ctx.JSON(events)
		},
		Type: RouteType_GET,
	})

	return tempRoutes
}
