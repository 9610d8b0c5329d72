package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfwatch/api/handler"
	"github.com/use-agent/shelfwatch/api/middleware"
	"github.com/use-agent/shelfwatch/batch"
	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Health is intentionally outside the rate limit so monitoring probes
// always work.
func NewRouter(runner *batch.Runner, reg *session.Registry, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(startTime))

	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))

	limited.POST("/batch", handler.PostBatch(runner))

	limited.POST("/sessions/:id/location", handler.PostSessionLocation(reg))
	limited.POST("/sessions/:id/search", handler.PostSessionSearch(reg))
	limited.DELETE("/sessions/:id", handler.DeleteSession(reg))

	return r
}
