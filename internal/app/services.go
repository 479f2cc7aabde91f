package app

import (
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	User           services.UserService
	Progress       services.ProgressService
	Scoring        services.ScoringService
	Popularity     services.PopularityService
	Recommendation services.RecommendationService
	Dashboard      services.DashboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, cat *catalog.Catalog, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	authService := services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	userService := services.NewUserService(db, log, reposet.User)
	popularityService := services.NewPopularityService(log, cat, clients.Popularity)
	progressService := services.NewProgressService(db, log, cat, reposet.LessonProgress, reposet.SimulationProgress, popularityService)
	scoringService := services.NewScoringService(db, log, cat, reposet.Debrief, reposet.CompetencyScore)
	recommendationService := services.NewRecommendationService(db, log, cat, reposet.LessonProgress, reposet.SimulationProgress, reposet.CompetencyScore)
	dashboardService := services.NewDashboardService(
		db, log, cat,
		reposet.User,
		reposet.LessonProgress,
		reposet.SimulationProgress,
		reposet.Debrief,
		scoringService,
		recommendationService,
		popularityService,
	)

	return Services{
		Auth:           authService,
		User:           userService,
		Progress:       progressService,
		Scoring:        scoringService,
		Popularity:     popularityService,
		Recommendation: recommendationService,
		Dashboard:      dashboardService,
	}
}
