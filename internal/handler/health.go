package handler

import (
	"net/http"
	"time"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/pkg/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Health reports liveness plus the state of the database and cache. A failed
// dependency turns the response into 503.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}

	if h.redis == nil || h.redis.Ping(ctx) != nil {
		checks["cache"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	message := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "degraded"
	}

	c.JSON(status, constants.BuildSuccessResponse(status, message, gin.H{
		"service": constants.AppName,
		"version": constants.AppVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"checks":  checks,
	}))
}
