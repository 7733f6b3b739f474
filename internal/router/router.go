// Package router wires the health server's routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"docworker/internal/handler"
	"docworker/internal/middleware"
)

// Setup configures the Gin engine with the health routes and middleware.
func Setup(healthH *handler.HealthHandler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	return r
}
