package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/repos"
	"github.com/praxislabs/execemy-backend/internal/types"
)

const (
	recentCompletedFetchLimit   = 10
	recentSimulationsFetchLimit = 5
	newestCasesFetchLimit       = 5
	newestLessonsFetchLimit     = 5
)

// nowFunc is swapped out in tests that pin the clock.
var nowFunc = time.Now

// DashboardService assembles the per-user dashboard in one shot. The whole
// path is read-only: it borrows snapshots, derives shelves, and returns.
type DashboardService interface {
	Assemble(ctx context.Context, userID uuid.UUID) (*types.DashboardData, error)
	Roadmap(ctx context.Context, userID uuid.UUID) (types.Roadmap, error)
}

type dashboardService struct {
	db                    *gorm.DB
	log                   *logger.Logger
	cat                   *catalog.Catalog
	userRepo              repos.UserRepo
	lessonProgressRepo    repos.LessonProgressRepo
	simProgressRepo       repos.SimulationProgressRepo
	debriefRepo           repos.DebriefRepo
	scoringService        ScoringService
	recommendationService RecommendationService
	popularityService     PopularityService
}

func NewDashboardService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	userRepo repos.UserRepo,
	lessonProgressRepo repos.LessonProgressRepo,
	simProgressRepo repos.SimulationProgressRepo,
	debriefRepo repos.DebriefRepo,
	scoringService ScoringService,
	recommendationService RecommendationService,
	popularityService PopularityService,
) DashboardService {
	serviceLog := baseLog.With("service", "DashboardService")
	return &dashboardService{
		db:                    db,
		log:                   serviceLog,
		cat:                   cat,
		userRepo:              userRepo,
		lessonProgressRepo:    lessonProgressRepo,
		simProgressRepo:       simProgressRepo,
		debriefRepo:           debriefRepo,
		scoringService:        scoringService,
		recommendationService: recommendationService,
		popularityService:     popularityService,
	}
}

// dashboardSnapshot is everything Assemble fetches up front. Each field is
// written by exactly one fetch slot, so no locking is needed across the
// fan-out.
type dashboardSnapshot struct {
	profile                    *types.User
	scores                     map[string]float64
	recommendation             types.Recommendation
	completedLessons           []*types.LessonProgress
	completedSimulations       []*types.SimulationProgress
	inProgressLessons          []*types.LessonProgress
	inProgressSimulations      []*types.SimulationProgress
	allProgress                []*types.LessonProgress
	recentCompletedLessons     []*types.LessonProgress
	recentCompletedSimulations []*types.SimulationProgress
	popularLessons             []catalog.LessonRef
	popularSimulations         []catalog.Simulation
	newestCases                []catalog.Simulation
	newestLessons              []catalog.LessonRef
	latestDebrief              *types.Debrief
}

// fetchSlot runs one snapshot read on the group. Failures (and panics) are
// absorbed into the slot's fallback and logged; the returned error is always
// nil so one bad source never cancels its siblings. The group wait is thus
// settle-all, not fail-fast.
func fetchSlot[T any](g *errgroup.Group, log *logger.Logger, source string, dst *T, fallback T, fn func() (T, error)) {
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Dashboard fetch panicked", "source", source, "panic", r)
				*dst = fallback
			}
		}()
		v, err := fn()
		if err != nil {
			log.Warn("Dashboard fetch failed", "source", source, "error", err)
			*dst = fallback
			return nil
		}
		*dst = v
		return nil
	})
}

// deriveShelf guards one shelf derivation. A failure inside one shelf
// degrades that shelf to its fallback and leaves every other shelf alone.
func deriveShelf[T any](log *logger.Logger, shelf string, fallback T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Shelf derivation failed", "shelf", shelf, "panic", r)
			out = fallback
		}
	}()
	return fn()
}

// Assemble always returns a complete DashboardData; shelves whose sources
// failed come back empty rather than failing the call.
func (ds *dashboardService) Assemble(ctx context.Context, userID uuid.UUID) (*types.DashboardData, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}

	snap := &dashboardSnapshot{
		recommendation: types.Recommendation{Alternates: []types.ContentPointer{}},
	}

	var g errgroup.Group
	fetchSlot(&g, ds.log, "profile", &snap.profile, nil, func() (*types.User, error) {
		found, err := ds.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("user %s not found", userID)
		}
		return found[0], nil
	})
	fetchSlot(&g, ds.log, "aggregate_scores", &snap.scores, nil, func() (map[string]float64, error) {
		return ds.scoringService.AggregateScores(ctx, userID)
	})
	fetchSlot(&g, ds.log, "recommendation", &snap.recommendation, types.Recommendation{Alternates: []types.ContentPointer{}}, func() (types.Recommendation, error) {
		return ds.recommendationService.GetSmartRecommendations(ctx, userID)
	})
	fetchSlot(&g, ds.log, "completed_lessons", &snap.completedLessons, nil, func() ([]*types.LessonProgress, error) {
		return ds.lessonProgressRepo.GetCompletedByUserID(ctx, nil, userID)
	})
	fetchSlot(&g, ds.log, "completed_simulations", &snap.completedSimulations, nil, func() ([]*types.SimulationProgress, error) {
		return ds.simProgressRepo.GetCompletedByUserID(ctx, nil, userID)
	})
	fetchSlot(&g, ds.log, "in_progress_lessons", &snap.inProgressLessons, nil, func() ([]*types.LessonProgress, error) {
		return ds.lessonProgressRepo.GetInProgressByUserID(ctx, nil, userID)
	})
	fetchSlot(&g, ds.log, "in_progress_simulations", &snap.inProgressSimulations, nil, func() ([]*types.SimulationProgress, error) {
		return ds.simProgressRepo.GetInProgressByUserID(ctx, nil, userID)
	})
	fetchSlot(&g, ds.log, "all_progress", &snap.allProgress, nil, func() ([]*types.LessonProgress, error) {
		return ds.lessonProgressRepo.GetByUserID(ctx, nil, userID)
	})
	fetchSlot(&g, ds.log, "recent_completed_lessons", &snap.recentCompletedLessons, nil, func() ([]*types.LessonProgress, error) {
		return ds.lessonProgressRepo.GetRecentCompletedByUserID(ctx, nil, userID, recentCompletedFetchLimit)
	})
	fetchSlot(&g, ds.log, "recent_completed_simulations", &snap.recentCompletedSimulations, nil, func() ([]*types.SimulationProgress, error) {
		return ds.simProgressRepo.GetRecentCompletedByUserID(ctx, nil, userID, recentSimulationsFetchLimit)
	})
	fetchSlot(&g, ds.log, "popular_lessons", &snap.popularLessons, nil, func() ([]catalog.LessonRef, error) {
		return ds.popularityService.TopLessons(ctx, popularLessonSlots)
	})
	fetchSlot(&g, ds.log, "popular_simulations", &snap.popularSimulations, nil, func() ([]catalog.Simulation, error) {
		return ds.popularityService.TopSimulations(ctx, popularMergeCap)
	})
	fetchSlot(&g, ds.log, "newest_cases", &snap.newestCases, nil, func() ([]catalog.Simulation, error) {
		return ds.cat.RecentSimulations(newestCasesFetchLimit), nil
	})
	fetchSlot(&g, ds.log, "newest_lessons", &snap.newestLessons, nil, func() ([]catalog.LessonRef, error) {
		return ds.cat.RecentLessons(newestLessonsFetchLimit), nil
	})
	fetchSlot(&g, ds.log, "latest_debrief", &snap.latestDebrief, nil, func() (*types.Debrief, error) {
		return ds.debriefRepo.GetLatestByUserID(ctx, nil, userID)
	})

	// Slot closures never return errors; Wait is just the settle barrier.
	_ = g.Wait()

	return ds.assembleFromSnapshot(snap), nil
}

func (ds *dashboardService) assembleFromSnapshot(snap *dashboardSnapshot) *types.DashboardData {
	now := nowFunc()

	completed := make(map[string]bool, len(snap.completedLessons))
	for _, row := range snap.completedLessons {
		if row != nil {
			completed[row.LessonKey()] = true
		}
	}
	inProgress := make(map[string]bool, len(snap.inProgressLessons))
	for _, row := range snap.inProgressLessons {
		if row != nil {
			inProgress[row.LessonKey()] = true
		}
	}

	data := &types.DashboardData{
		AggregateScores: snap.scores,
		Recommendation:  snap.recommendation,
	}
	if data.AggregateScores == nil {
		data.AggregateScores = map[string]float64{}
	}
	if data.Recommendation.Alternates == nil {
		data.Recommendation.Alternates = []types.ContentPointer{}
	}

	data.ResidencySummary = deriveShelf(ds.log, "residency_summary", nil, func() *types.ResidencySummary {
		return deriveResidencySummary(ds.cat, snap.profile, completed, len(snap.completedSimulations))
	})
	data.JumpBackInItems = deriveShelf(ds.log, "jump_back_in", []types.JumpBackInItem{}, func() []types.JumpBackInItem {
		return deriveJumpBackIn(ds.cat, snap.inProgressLessons, snap.inProgressSimulations)
	})
	data.StrengthenCore = deriveShelf(ds.log, "strengthen_core", []types.StrengthenCoreShelf{}, func() []types.StrengthenCoreShelf {
		return deriveStrengthenCore(ds.cat, snap.scores, completed)
	})
	data.PracticeSpotlight = deriveShelf(ds.log, "practice_spotlight", []types.SpotlightItem{}, func() []types.SpotlightItem {
		return derivePracticeSpotlight(ds.cat, snap.recentCompletedLessons, completed)
	})
	data.ContinueYearPath = deriveShelf(ds.log, "continue_year_path", []catalog.LessonRef{}, func() []catalog.LessonRef {
		return deriveContinueYearPath(ds.cat, completed)
	})
	data.NewContent = deriveShelf(ds.log, "new_content", []types.ContentPointer{}, func() []types.ContentPointer {
		return deriveNewContent(snap.newestCases, snap.newestLessons)
	})
	data.PopularContent = deriveShelf(ds.log, "popular_content", []types.ContentPointer{}, func() []types.ContentPointer {
		return derivePopularContent(snap.popularLessons, snap.popularSimulations)
	})
	data.Roadmap = deriveShelf(ds.log, "roadmap", types.Roadmap{Sections: []types.RoadmapSection{}}, func() types.Roadmap {
		return buildRoadmap(ds.cat, completed, inProgress)
	})
	data.WeeklyGoal = deriveShelf(ds.log, "weekly_goal", types.WeeklyGoal{TargetHours: defaultWeeklyTargetHours}, func() types.WeeklyGoal {
		return computeWeeklyGoal(snap.profile, snap.allProgress, now)
	})
	data.Streaks = deriveShelf(ds.log, "streaks", types.Streaks{}, func() types.Streaks {
		return computeStreaks(snap.allProgress, now)
	})
	data.LatestKeyInsight = deriveShelf(ds.log, "latest_key_insight", nil, func() *string {
		return deriveLatestInsight(snap.latestDebrief)
	})

	return data
}

// Roadmap serves the standalone roadmap endpoint without the rest of the
// dashboard fan-out.
func (ds *dashboardService) Roadmap(ctx context.Context, userID uuid.UUID) (types.Roadmap, error) {
	if userID == uuid.Nil {
		return types.Roadmap{}, fmt.Errorf("user id required")
	}

	completedRows, err := ds.lessonProgressRepo.GetCompletedByUserID(ctx, nil, userID)
	if err != nil {
		return types.Roadmap{}, fmt.Errorf("load completed lessons: %w", err)
	}
	inProgressRows, err := ds.lessonProgressRepo.GetInProgressByUserID(ctx, nil, userID)
	if err != nil {
		return types.Roadmap{}, fmt.Errorf("load in-progress lessons: %w", err)
	}

	completed := make(map[string]bool, len(completedRows))
	for _, row := range completedRows {
		completed[row.LessonKey()] = true
	}
	inProgress := make(map[string]bool, len(inProgressRows))
	for _, row := range inProgressRows {
		inProgress[row.LessonKey()] = true
	}

	return buildRoadmap(ds.cat, completed, inProgress), nil
}
