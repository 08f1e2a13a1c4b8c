package v1

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API on router. authLimiter guards register and
// login and may be nil.
func RegisterRoutes(router *gin.Engine, h Handler, authLimiter gin.HandlerFunc) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(h.HandleNotFound)
	router.NoMethod(h.HandleMethodNotAllowed)

	router.GET("/health", h.HandleHealth)

	api := router.Group("/api")

	guest := api.Group("")
	if authLimiter != nil {
		guest.Use(authLimiter)
	}
	guest.POST("/register", h.HandleRegister)
	guest.POST("/login", h.HandleLogin)

	authed := api.Group("", h.HandleAuthMiddleware)
	authed.GET("/user", h.HandleCurrentUser)
	authed.POST("/logout", h.HandleLogout)

	authed.GET("/tasks", h.HandleListTasks)
	authed.POST("/tasks", h.HandleCreateTask)
	authed.GET("/tasks/:id", h.HandleGetTask)
	authed.PATCH("/tasks/:id", h.HandleUpdateTask)
	authed.DELETE("/tasks/:id", h.HandleDeleteTask)
}
