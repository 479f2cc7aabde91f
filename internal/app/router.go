package app

import (
	"github.com/gin-gonic/gin"

	"github.com/praxislabs/execemy-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:           handlers.Auth,
		AuthMiddleware:        middleware.Auth,
		UserHandler:           handlers.User,
		DashboardHandler:      handlers.Dashboard,
		ProgressHandler:       handlers.Progress,
		DebriefHandler:        handlers.Debrief,
		RecommendationHandler: handlers.Recommendation,
	})
}
