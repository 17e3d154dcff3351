package api

import (
	"github.com/gin-gonic/gin"

	"github.com/MikaTepe/keyscope/internal/logging"
)

// RouterConfig wires handlers and middleware into the router
type RouterConfig struct {
	ExtractHandler *ExtractHandler
	JobHandler     *JobHandler
	HealthHandler  *HealthHandler

	Log         *logging.Logger
	CORSOrigins []string
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/ready", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api/v1")
	{
		if cfg.ExtractHandler != nil {
			api.POST("/keywords/extract", cfg.ExtractHandler.Extract)
			api.POST("/keywords/extract/batch", cfg.ExtractHandler.ExtractBatch)
		}

		if cfg.JobHandler != nil {
			api.POST("/jobs", cfg.JobHandler.CreateJob)
			api.GET("/jobs/:id", cfg.JobHandler.GetJob)
		}
	}

	return r
}
