package app

import (
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/repos"
)

type Repos struct {
	User               repos.UserRepo
	LessonProgress     repos.LessonProgressRepo
	SimulationProgress repos.SimulationProgressRepo
	Debrief            repos.DebriefRepo
	CompetencyScore    repos.CompetencyScoreRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:               repos.NewUserRepo(db, log),
		LessonProgress:     repos.NewLessonProgressRepo(db, log),
		SimulationProgress: repos.NewSimulationProgressRepo(db, log),
		Debrief:            repos.NewDebriefRepo(db, log),
		CompetencyScore:    repos.NewCompetencyScoreRepo(db, log),
	}
}
