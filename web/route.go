package web

import (
	"github.com/kataras/iris/v12"
)

type Route struct {
	Name string
	Path string
	JWT  bool
	Type RouteType
	Func func(ctx iris.Context) error
}

type RouteType string

const (
	RouteType_GET    RouteType = iris.MethodGet
	RouteType_POST   RouteType = iris.MethodPost
	RouteType_PATCH  RouteType = iris.MethodPatch
	RouteType_DELETE RouteType = iris.MethodDelete
)
