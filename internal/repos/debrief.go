package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type DebriefRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Debrief) ([]*types.Debrief, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Debrief, error)
	GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Debrief, error)
}

type debriefRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDebriefRepo(db *gorm.DB, baseLog *logger.Logger) DebriefRepo {
	repoLog := baseLog.With("repo", "DebriefRepo")
	return &debriefRepo{db: db, log: repoLog}
}

func (r *debriefRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Debrief) ([]*types.Debrief, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Debrief{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByUserID returns debriefs newest first.
func (r *debriefRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Debrief, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Debrief
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *debriefRepo) GetLatestByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Debrief, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var result types.Debrief
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
