package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/", h.HandleIndex)
	router.GET("/health", h.HandleHealth)

	authRouter := router.Group("/auth")
	authRouter.POST("/signup", h.HandleSignup)
	authRouter.POST("/token", h.HandleToken)
	authRouter.POST("/token/refresh", h.HandleRefresh)
	authRouter.POST("/logout", h.HandleAuthMiddleware, h.HandleLogout)

	taskRouter := router.Group("/task", h.HandleAuthMiddleware)
	taskRouter.GET("/", h.HandleGetTasks)
	taskRouter.POST("/", h.HandleCreateTask)
	taskRouter.GET("/:id/", h.HandleGetTask)
	taskRouter.PUT("/:id/", h.HandleUpdateTask)
	taskRouter.DELETE("/:id/", h.HandleDeleteTask)
}
