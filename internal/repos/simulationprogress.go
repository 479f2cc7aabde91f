package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type SimulationProgressRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error)
	GetByUserAndCase(ctx context.Context, tx *gorm.DB, userID uuid.UUID, caseID string) (*types.SimulationProgress, error)
	GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error)
	GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error)
	GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.SimulationProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.SimulationProgress) error
}

type simulationProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationProgressRepo(db *gorm.DB, baseLog *logger.Logger) SimulationProgressRepo {
	repoLog := baseLog.With("repo", "SimulationProgressRepo")
	return &simulationProgressRepo{db: db, log: repoLog}
}

func (r *simulationProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SimulationProgress
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

func (r *simulationProgressRepo) GetByUserAndCase(ctx context.Context, tx *gorm.DB, userID uuid.UUID, caseID string) (*types.SimulationProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || caseID == "" {
		return nil, nil
	}

	var result types.SimulationProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND case_id = ?", userID, caseID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *simulationProgressRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SimulationProgress
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.ProgressStatusCompleted).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *simulationProgressRepo) GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SimulationProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SimulationProgress
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.ProgressStatusInProgress).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *simulationProgressRepo) GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.SimulationProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SimulationProgress
	if userID == uuid.Nil || limit <= 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.ProgressStatusCompleted).
		Order("completed_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *simulationProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.SimulationProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique user_id + case_id
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND case_id = ?", row.UserID, row.CaseID).
		Assign(row).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
