package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/staynest/booking-backend/internal/database"
)

// HealthHandler reports the state of the backing stores
type HealthHandler struct {
	db      database.DB
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a new health handler. redis may be nil.
func NewHealthHandler(db database.DB, rdb *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, version: version}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unhealthy",
			"error":    err.Error(),
		})
		return
	}

	// Redis is optional: a failure degrades drafts and rate limiting only
	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "healthy"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "healthy",
		"redis":     redisStatus,
		"version":   h.version,
		"timestamp": time.Now().Unix(),
	})
}
