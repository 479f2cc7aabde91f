package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/praxislabs/execemy-backend/internal/handlers"
	"github.com/praxislabs/execemy-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	UserHandler           *handlers.UserHandler
	DashboardHandler      *handlers.DashboardHandler
	ProgressHandler       *handlers.ProgressHandler
	DebriefHandler        *handlers.DebriefHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Profile
	protected.GET("/profile", cfg.UserHandler.GetMe)
	protected.PATCH("/profile", cfg.UserHandler.UpdateProfile)
	// Dashboard
	protected.GET("/dashboard", cfg.DashboardHandler.GetDashboard)
	protected.GET("/roadmap", cfg.DashboardHandler.GetRoadmap)
	protected.GET("/recommendations", cfg.RecommendationHandler.GetRecommendations)
	// Progress events
	protected.POST("/progress/lessons/:domainId/:moduleId/:lessonId/events", cfg.ProgressHandler.RecordLessonEvent)
	protected.POST("/progress/simulations/:caseId/events", cfg.ProgressHandler.RecordSimulationEvent)
	// Debriefs
	protected.POST("/debriefs", cfg.DebriefHandler.SubmitDebrief)

	return router
}
