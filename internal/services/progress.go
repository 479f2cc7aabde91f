package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/catalog"
	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/repos"
	"github.com/praxislabs/execemy-backend/internal/requestdata"
	"github.com/praxislabs/execemy-backend/internal/types"
)

const (
	LessonEventOpened    = "opened"
	LessonEventProgress  = "progress"
	LessonEventBookmark  = "bookmark"
	LessonEventCompleted = "completed"

	SimulationEventStarted   = "started"
	SimulationEventProgress  = "progress"
	SimulationEventCompleted = "completed"
)

type LessonEvent struct {
	Event              string          `json:"event"`
	ProgressPercentage *int            `json:"progress_percentage"`
	ReadPosition       json.RawMessage `json:"read_position"`
	TimeDeltaSeconds   int             `json:"time_delta_seconds"`
	Bookmarked         *bool           `json:"bookmarked"`
}

type SimulationEvent struct {
	Event              string `json:"event"`
	ProgressPercentage *int   `json:"progress_percentage"`
	TimeDeltaSeconds   int    `json:"time_delta_seconds"`
}

type ProgressService interface {
	RecordLessonEvent(ctx context.Context, domainID, moduleID, lessonID string, event LessonEvent) (*types.LessonProgress, error)
	RecordSimulationEvent(ctx context.Context, caseID string, event SimulationEvent) (*types.SimulationProgress, error)
}

type progressService struct {
	db                 *gorm.DB
	log                *logger.Logger
	cat                *catalog.Catalog
	lessonProgressRepo repos.LessonProgressRepo
	simProgressRepo    repos.SimulationProgressRepo
	popularityService  PopularityService
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	lessonProgressRepo repos.LessonProgressRepo,
	simProgressRepo repos.SimulationProgressRepo,
	popularityService PopularityService,
) ProgressService {
	serviceLog := baseLog.With("service", "ProgressService")
	return &progressService{
		db:                 db,
		log:                serviceLog,
		cat:                cat,
		lessonProgressRepo: lessonProgressRepo,
		simProgressRepo:    simProgressRepo,
		popularityService:  popularityService,
	}
}

func (ps *progressService) RecordLessonEvent(ctx context.Context, domainID, moduleID, lessonID string, event LessonEvent) (*types.LessonProgress, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	if ps.cat.Lesson(domainID, moduleID, lessonID) == nil {
		return nil, fmt.Errorf("unknown lesson %s", catalog.LessonKey(domainID, moduleID, lessonID))
	}

	row, err := ps.lessonProgressRepo.GetByUserAndLesson(ctx, nil, rd.UserID, domainID, moduleID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("load lesson progress: %w", err)
	}
	now := time.Now()
	if row == nil {
		row = &types.LessonProgress{
			ID:        uuid.New(),
			UserID:    rd.UserID,
			DomainID:  domainID,
			ModuleID:  moduleID,
			LessonID:  lessonID,
			Status:    types.ProgressStatusNotStarted,
			CreatedAt: now,
		}
	}
	row.UpdatedAt = now

	if event.TimeDeltaSeconds > 0 {
		row.TimeSpentSeconds += event.TimeDeltaSeconds
	}

	switch event.Event {
	case LessonEventOpened:
		if row.Status == types.ProgressStatusNotStarted {
			row.Status = types.ProgressStatusInProgress
		}
	case LessonEventProgress:
		if row.Status == types.ProgressStatusNotStarted {
			row.Status = types.ProgressStatusInProgress
		}
		if event.ProgressPercentage != nil {
			row.ProgressPercentage = clampPercentage(*event.ProgressPercentage)
		}
		if len(event.ReadPosition) > 0 {
			row.LastReadPosition = []byte(event.ReadPosition)
		}
	case LessonEventBookmark:
		if event.Bookmarked != nil {
			row.Bookmarked = *event.Bookmarked
		} else {
			row.Bookmarked = !row.Bookmarked
		}
	case LessonEventCompleted:
		// Completed rows always read 100%; enforced here, at the write
		// boundary, so readers never see a completed row mid-way.
		row.Status = types.ProgressStatusCompleted
		row.ProgressPercentage = 100
		if row.CompletedAt == nil {
			completedAt := now
			row.CompletedAt = &completedAt
		}
	default:
		return nil, fmt.Errorf("unknown lesson event %q", event.Event)
	}

	if err := ps.lessonProgressRepo.Upsert(ctx, nil, row); err != nil {
		ps.log.Error("RecordLessonEvent upsert failed", "error", err, "user_id", rd.UserID)
		return nil, fmt.Errorf("save lesson progress: %w", err)
	}

	if ps.popularityService != nil && event.Event == LessonEventOpened {
		ps.popularityService.BumpLesson(ctx, row.LessonKey())
	}
	return row, nil
}

func (ps *progressService) RecordSimulationEvent(ctx context.Context, caseID string, event SimulationEvent) (*types.SimulationProgress, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	if ps.cat.SimulationByCaseID(caseID) == nil {
		return nil, fmt.Errorf("unknown case %q", caseID)
	}

	row, err := ps.simProgressRepo.GetByUserAndCase(ctx, nil, rd.UserID, caseID)
	if err != nil {
		return nil, fmt.Errorf("load simulation progress: %w", err)
	}
	now := time.Now()
	if row == nil {
		row = &types.SimulationProgress{
			ID:        uuid.New(),
			UserID:    rd.UserID,
			CaseID:    caseID,
			Status:    types.ProgressStatusNotStarted,
			CreatedAt: now,
		}
	}
	row.UpdatedAt = now

	if event.TimeDeltaSeconds > 0 {
		row.TimeSpentSeconds += event.TimeDeltaSeconds
	}

	switch event.Event {
	case SimulationEventStarted:
		if row.Status == types.ProgressStatusNotStarted {
			row.Status = types.ProgressStatusInProgress
		}
	case SimulationEventProgress:
		if row.Status == types.ProgressStatusNotStarted {
			row.Status = types.ProgressStatusInProgress
		}
		if event.ProgressPercentage != nil {
			row.ProgressPercentage = clampPercentage(*event.ProgressPercentage)
		}
	case SimulationEventCompleted:
		row.Status = types.ProgressStatusCompleted
		row.ProgressPercentage = 100
		if row.CompletedAt == nil {
			completedAt := now
			row.CompletedAt = &completedAt
		}
	default:
		return nil, fmt.Errorf("unknown simulation event %q", event.Event)
	}

	if err := ps.simProgressRepo.Upsert(ctx, nil, row); err != nil {
		ps.log.Error("RecordSimulationEvent upsert failed", "error", err, "user_id", rd.UserID)
		return nil, fmt.Errorf("save simulation progress: %w", err)
	}

	if ps.popularityService != nil && event.Event == SimulationEventStarted {
		ps.popularityService.BumpSimulation(ctx, caseID)
	}
	return row, nil
}

func clampPercentage(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
