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

type ScoringService interface {
	SubmitDebrief(ctx context.Context, caseID, summary string, scores map[string]float64) (*types.Debrief, error)
	AggregateScores(ctx context.Context, userID uuid.UUID) (map[string]float64, error)
}

type scoringService struct {
	db                  *gorm.DB
	log                 *logger.Logger
	cat                 *catalog.Catalog
	debriefRepo         repos.DebriefRepo
	competencyScoreRepo repos.CompetencyScoreRepo
}

func NewScoringService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cat *catalog.Catalog,
	debriefRepo repos.DebriefRepo,
	competencyScoreRepo repos.CompetencyScoreRepo,
) ScoringService {
	serviceLog := baseLog.With("service", "ScoringService")
	return &scoringService{
		db:                  db,
		log:                 serviceLog,
		cat:                 cat,
		debriefRepo:         debriefRepo,
		competencyScoreRepo: competencyScoreRepo,
	}
}

// SubmitDebrief stores the debrief and folds its scores into the per-user
// running competency aggregates.
func (ss *scoringService) SubmitDebrief(ctx context.Context, caseID, summary string, scores map[string]float64) (*types.Debrief, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	if ss.cat.SimulationByCaseID(caseID) == nil {
		return nil, fmt.Errorf("unknown case %q", caseID)
	}
	for key, score := range scores {
		if score < 0 || score > 5 {
			return nil, fmt.Errorf("score for %q out of range: %v", key, score)
		}
	}

	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}

	now := time.Now()
	debrief := &types.Debrief{
		ID:               uuid.New(),
		UserID:           rd.UserID,
		CaseID:           caseID,
		Summary:          summary,
		CompetencyScores: scoresJSON,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := ss.debriefRepo.Create(ctx, nil, []*types.Debrief{debrief}); err != nil {
		ss.log.Error("SubmitDebrief create failed", "error", err, "user_id", rd.UserID)
		return nil, fmt.Errorf("create debrief: %w", err)
	}

	if err := ss.applyScores(ctx, rd.UserID, scores, now); err != nil {
		// The debrief itself is stored; aggregate recompute is retried on
		// the next submission over the same keys.
		ss.log.Error("SubmitDebrief aggregate update failed", "error", err, "user_id", rd.UserID)
	}
	return debrief, nil
}

func (ss *scoringService) applyScores(ctx context.Context, userID uuid.UUID, scores map[string]float64, now time.Time) error {
	if len(scores) == 0 {
		return nil
	}

	existing, err := ss.competencyScoreRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("load competency scores: %w", err)
	}
	byKey := make(map[string]*types.CompetencyScore, len(existing))
	for _, row := range existing {
		byKey[row.CompetencyKey] = row
	}

	for key, score := range scores {
		row := byKey[key]
		if row == nil {
			row = &types.CompetencyScore{
				ID:            uuid.New(),
				UserID:        userID,
				CompetencyKey: key,
				CreatedAt:     now,
			}
		}
		// Running mean across all debriefs that scored this key.
		total := row.Score*float64(row.SampleCount) + score
		row.SampleCount++
		row.Score = total / float64(row.SampleCount)
		row.UpdatedAt = now

		if err := ss.competencyScoreRepo.Upsert(ctx, nil, row); err != nil {
			return fmt.Errorf("upsert competency score %q: %w", key, err)
		}
	}
	return nil
}

func (ss *scoringService) AggregateScores(ctx context.Context, userID uuid.UUID) (map[string]float64, error) {
	rows, err := ss.competencyScoreRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load competency scores: %w", err)
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.CompetencyKey] = row.Score
	}
	return out, nil
}
