package app

import (
	"github.com/praxislabs/execemy-backend/internal/handlers"
	"github.com/praxislabs/execemy-backend/internal/logger"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Dashboard      *handlers.DashboardHandler
	Progress       *handlers.ProgressHandler
	Debrief        *handlers.DebriefHandler
	Recommendation *handlers.RecommendationHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:           handlers.NewAuthHandler(services.Auth),
		User:           handlers.NewUserHandler(services.User),
		Dashboard:      handlers.NewDashboardHandler(log, services.Dashboard),
		Progress:       handlers.NewProgressHandler(log, services.Progress),
		Debrief:        handlers.NewDebriefHandler(log, services.Scoring),
		Recommendation: handlers.NewRecommendationHandler(log, services.Recommendation),
	}
}
