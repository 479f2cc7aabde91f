package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/repos"
	"github.com/praxislabs/execemy-backend/internal/types"
)

const recommendationAlternatesCap = 3

type RecommendationService interface {
	GetSmartRecommendations(ctx context.Context, userID uuid.UUID) (types.Recommendation, error)
}

type recommendationService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	cat                 *catalog.Catalog
	lessonProgressRepo  repos.LessonProgressRepo
	simProgressRepo     repos.SimulationProgressRepo
	competencyScoreRepo repos.CompetencyScoreRepo
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	lessonProgressRepo repos.LessonProgressRepo,
	simProgressRepo repos.SimulationProgressRepo,
	competencyScoreRepo repos.CompetencyScoreRepo,
) RecommendationService {
	serviceLog := baseLog.With("service", "RecommendationService")
	return &recommendationService{
		db:                  db,
		log:                 serviceLog,
		cat:                 cat,
		lessonProgressRepo:  lessonProgressRepo,
		simProgressRepo:     simProgressRepo,
		competencyScoreRepo: competencyScoreRepo,
	}
}

// GetSmartRecommendations picks one primary next action and a few
// alternates. Resume beats remediation beats the plain roadmap path.
func (rs *recommendationService) GetSmartRecommendations(ctx context.Context, userID uuid.UUID) (types.Recommendation, error) {
	empty := types.Recommendation{Alternates: []types.ContentPointer{}}
	if userID == uuid.Nil {
		return empty, fmt.Errorf("user id required")
	}

	inLessons, err := rs.lessonProgressRepo.GetInProgressByUserID(ctx, nil, userID)
	if err != nil {
		return empty, fmt.Errorf("load in-progress lessons: %w", err)
	}
	inSims, err := rs.simProgressRepo.GetInProgressByUserID(ctx, nil, userID)
	if err != nil {
		return empty, fmt.Errorf("load in-progress simulations: %w", err)
	}
	completedRows, err := rs.lessonProgressRepo.GetCompletedByUserID(ctx, nil, userID)
	if err != nil {
		return empty, fmt.Errorf("load completed lessons: %w", err)
	}
	scoreRows, err := rs.competencyScoreRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return empty, fmt.Errorf("load competency scores: %w", err)
	}

	completed := make(map[string]bool, len(completedRows))
	for _, row := range completedRows {
		completed[row.LessonKey()] = true
	}

	candidates := rs.rankCandidates(inLessons, inSims, scoreRows, completed)
	if len(candidates) == 0 {
		return empty, nil
	}

	rec := types.Recommendation{
		Primary:    &candidates[0],
		Alternates: []types.ContentPointer{},
	}
	seen := map[string]bool{candidates[0].DedupeKey(): true}
	for _, c := range candidates[1:] {
		if len(rec.Alternates) >= recommendationAlternatesCap {
			break
		}
		if seen[c.DedupeKey()] {
			continue
		}
		seen[c.DedupeKey()] = true
		rec.Alternates = append(rec.Alternates, c)
	}
	return rec, nil
}

// rankCandidates produces pointers in priority order: resumable in-progress
// work first (most recently touched wins, lessons before cases on a tie),
// then the weakest competency's first uncompleted lesson, then the roadmap
// next lesson, then a related simulation.
func (rs *recommendationService) rankCandidates(
	inLessons []*types.LessonProgress,
	inSims []*types.SimulationProgress,
	scoreRows []*types.CompetencyScore,
	completed map[string]bool,
) []types.ContentPointer {
	var out []types.ContentPointer

	type resumable struct {
		pointer  types.ContentPointer
		updated  int64
		isLesson bool
	}
	resumables := make([]resumable, 0, len(inLessons)+len(inSims))
	for _, row := range inLessons {
		if row == nil {
			continue
		}
		if ref := rs.cat.LessonByKey(row.LessonKey()); ref != nil {
			pointer := types.LessonPointer(*ref)
			pointer.Reason = "Pick up where you left off"
			resumables = append(resumables, resumable{pointer: pointer, updated: row.UpdatedAt.UnixNano(), isLesson: true})
		}
	}
	for _, row := range inSims {
		if row == nil {
			continue
		}
		if sim := rs.cat.SimulationByCaseID(row.CaseID); sim != nil {
			pointer := types.CasePointer(*sim)
			pointer.Reason = "Finish your case study"
			resumables = append(resumables, resumable{pointer: pointer, updated: row.UpdatedAt.UnixNano()})
		}
	}
	sort.SliceStable(resumables, func(i, j int) bool {
		if resumables[i].updated != resumables[j].updated {
			return resumables[i].updated > resumables[j].updated
		}
		return resumables[i].isLesson && !resumables[j].isLesson
	})
	for _, r := range resumables {
		out = append(out, r.pointer)
	}

	if weak := rs.weakestCompetency(scoreRows); weak != "" {
		if domain := rs.cat.DomainForCompetency(weak); domain != nil {
			for _, ref := range rs.cat.AllLessons() {
				if ref.DomainID != domain.ID || completed[ref.Key()] {
					continue
				}
				pointer := types.LessonPointer(ref)
				pointer.Reason = "Shore up your weakest competency"
				out = append(out, pointer)
				break
			}
			if sims := rs.cat.SimulationsForDomain(domain.ID); len(sims) > 0 {
				pointer := types.CasePointer(sims[0])
				pointer.Reason = "Practice your weakest competency"
				out = append(out, pointer)
			}
		}
	}

	for _, ref := range rs.cat.AllLessons() {
		if completed[ref.Key()] {
			continue
		}
		pointer := types.LessonPointer(ref)
		pointer.Reason = "Next up in your curriculum"
		out = append(out, pointer)
		break
	}

	return out
}

func (rs *recommendationService) weakestCompetency(rows []*types.CompetencyScore) string {
	weakest := ""
	lowest := 0.0
	for _, row := range rows {
		if row == nil || row.Score <= 0 {
			continue
		}
		if weakest == "" || row.Score < lowest || (row.Score == lowest && row.CompetencyKey < weakest) {
			weakest = row.CompetencyKey
			lowest = row.Score
		}
	}
	return weakest
}
