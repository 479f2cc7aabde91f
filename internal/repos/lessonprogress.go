package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type LessonProgressRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error)
	GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID uuid.UUID, domainID, moduleID, lessonID string) (*types.LessonProgress, error)
	GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error)
	GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error)
	GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.LessonProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error
}

type lessonProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonProgressRepo(db *gorm.DB, baseLog *logger.Logger) LessonProgressRepo {
	repoLog := baseLog.With("repo", "LessonProgressRepo")
	return &lessonProgressRepo{db: db, log: repoLog}
}

func (r *lessonProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
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

func (r *lessonProgressRepo) GetByUserAndLesson(ctx context.Context, tx *gorm.DB, userID uuid.UUID, domainID, moduleID, lessonID string) (*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil {
		return nil, nil
	}

	var result types.LessonProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND domain_id = ? AND module_id = ? AND lesson_id = ?", userID, domainID, moduleID, lessonID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *lessonProgressRepo) GetCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
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

func (r *lessonProgressRepo) GetInProgressByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
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

func (r *lessonProgressRepo) GetRecentCompletedByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.LessonProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.LessonProgress
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

func (r *lessonProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.LessonProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique user_id + lesson triple
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND domain_id = ? AND module_id = ? AND lesson_id = ?", row.UserID, row.DomainID, row.ModuleID, row.LessonID).
		Assign(row).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
