// Package server assembles the HTTP router and the gRPC health server.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	healthhandler "teatime-live/internal/health/handler"
	livehandler "teatime-live/internal/live/handler"
	"teatime-live/internal/server/middleware"
)

// Deps holds what the HTTP router serves.
type Deps struct {
	// Live serves the board live routes and the webhook. Required.
	Live *livehandler.Handler
	// Tokens validates actor access tokens on live routes. Required.
	Tokens middleware.TokenValidator
	// Health serves /healthz. If nil, /healthz always answers ok.
	Health *healthhandler.Server
	// Logger receives one line per request.
	Logger zerolog.Logger
}

// NewRouter returns the gin engine for the live API.
//
// Route → handler mapping:
//   - /api/v1/boards/:boardId/lives/* → internal/live/handler (Bearer auth)
//   - /api/v1/lives/webhook           → internal/live/handler (signed by the control plane)
//   - /healthz                        → internal/health/handler
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.ClientIP(), middleware.RequestLog(deps.Logger, "/healthz"))

	health := deps.Health
	if health == nil {
		health = healthhandler.NewServer(nil, nil)
	}
	r.GET("/healthz", health.Healthz)

	deps.Live.RegisterRoutes(r, middleware.Auth(deps.Tokens))
	return r
}
