package web

import (
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	log "github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

func RequestID(ctx iris.Context) string {
	return ctx.Values().GetString(requestIDKey)
}

// RequestIDMiddleware keeps the caller's X-Request-Id or assigns a new one.
func RequestIDMiddleware(ctx iris.Context) {
	id := ctx.GetHeader(requestIDHeader)
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	ctx.Values().Set(requestIDKey, id)
	ctx.Header(requestIDHeader, id)
	ctx.Next()
}

func AccessLogMiddleware(ctx iris.Context) {
	start := time.Now()
	ctx.Next()

	log.WithFields(log.Fields{
		"method":      ctx.Method(),
		"path":        ctx.Path(),
		"status":      ctx.GetStatusCode(),
		"duration_ms": time.Since(start).Milliseconds(),
		"client_ip":   ClientIP(ctx),
		"request_id":  RequestID(ctx),
	}).Info("request")
}
