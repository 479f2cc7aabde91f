package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type CompetencyScoreRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CompetencyScore, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CompetencyScore) error
}

type competencyScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompetencyScoreRepo(db *gorm.DB, baseLog *logger.Logger) CompetencyScoreRepo {
	repoLog := baseLog.With("repo", "CompetencyScoreRepo")
	return &competencyScoreRepo{db: db, log: repoLog}
}

func (r *competencyScoreRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CompetencyScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CompetencyScore
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *competencyScoreRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CompetencyScore) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique user_id + competency_key
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND competency_key = ?", row.UserID, row.CompetencyKey).
		Assign(row).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
