package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency of the API is reachable.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HandleIndex godoc
// @Summary Welcome message
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *handlerImpl) HandleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Task Management API"})
}

// HandleHealth godoc
// @Summary Health check
// @Description Ping every backing store of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *handlerImpl) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	failed := make(map[string]string)
	for _, check := range h.checks {
		err := check.Ping(ctx)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("check", check.Name).
				Msg("health check failed")
			failed[check.Name] = "unavailable"
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"checks": failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
