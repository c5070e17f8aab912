// Package v1 implements the HTTP API on top of gin.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/services"
)

type Handler interface {
	HandleIndex(c *gin.Context)
	HandleHealth(c *gin.Context)

	HandleSignup(c *gin.Context)
	HandleToken(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	auth   services.AuthService
	tasks  services.TaskService
	checks []HealthCheck
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	checks ...HealthCheck,
) Handler {
	return &handlerImpl{
		logger: logger,
		auth:   authService,
		tasks:  taskService,
		checks: checks,
	}
}
