package services

import (
	"context"
	"fmt"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	redisclient "github.com/praxislabs/execemy-backend/internal/clients/redis"
	"github.com/praxislabs/execemy-backend/internal/logger"
)

const (
	popularityKindLessons     = "lessons"
	popularityKindSimulations = "simulations"
)

// PopularityService ranks catalog content by view counters kept in Redis.
// When Redis is not configured the top lists fall back to catalog order,
// so the dashboard still has something to show.
type PopularityService interface {
	BumpLesson(ctx context.Context, lessonKey string)
	BumpSimulation(ctx context.Context, caseID string)
	TopLessons(ctx context.Context, n int) ([]catalog.LessonRef, error)
	TopSimulations(ctx context.Context, n int) ([]catalog.Simulation, error)
}

type popularityService struct {
	log   *logger.Logger
	cat   *catalog.Catalog
	store redisclient.PopularityStore
}

func NewPopularityService(baseLog *logger.Logger, cat *catalog.Catalog, store redisclient.PopularityStore) PopularityService {
	serviceLog := baseLog.With("service", "PopularityService")
	return &popularityService{log: serviceLog, cat: cat, store: store}
}

func (ps *popularityService) BumpLesson(ctx context.Context, lessonKey string) {
	if ps.store == nil {
		return
	}
	if err := ps.store.Bump(ctx, popularityKindLessons, lessonKey); err != nil {
		ps.log.Debug("Lesson popularity bump failed", "error", err, "lesson", lessonKey)
	}
}

func (ps *popularityService) BumpSimulation(ctx context.Context, caseID string) {
	if ps.store == nil {
		return
	}
	if err := ps.store.Bump(ctx, popularityKindSimulations, caseID); err != nil {
		ps.log.Debug("Simulation popularity bump failed", "error", err, "case_id", caseID)
	}
}

func (ps *popularityService) TopLessons(ctx context.Context, n int) ([]catalog.LessonRef, error) {
	if n <= 0 {
		return nil, nil
	}
	if ps.store == nil {
		lessons := ps.cat.AllLessons()
		if len(lessons) > n {
			lessons = lessons[:n]
		}
		return lessons, nil
	}

	keys, err := ps.store.Top(ctx, popularityKindLessons, n)
	if err != nil {
		return nil, fmt.Errorf("top lessons: %w", err)
	}
	out := make([]catalog.LessonRef, 0, len(keys))
	for _, key := range keys {
		if ref := ps.cat.LessonByKey(key); ref != nil {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (ps *popularityService) TopSimulations(ctx context.Context, n int) ([]catalog.Simulation, error) {
	if n <= 0 {
		return nil, nil
	}
	if ps.store == nil {
		sims := ps.cat.AllSimulations()
		out := make([]catalog.Simulation, len(sims))
		copy(out, sims)
		if len(out) > n {
			out = out[:n]
		}
		return out, nil
	}

	ids, err := ps.store.Top(ctx, popularityKindSimulations, n)
	if err != nil {
		return nil, fmt.Errorf("top simulations: %w", err)
	}
	out := make([]catalog.Simulation, 0, len(ids))
	for _, id := range ids {
		if sim := ps.cat.SimulationByCaseID(id); sim != nil {
			out = append(out, *sim)
		}
	}
	return out, nil
}
