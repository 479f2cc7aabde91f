package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/repos"
	"github.com/praxislabs/execemy-backend/internal/requestdata"
	"github.com/praxislabs/execemy-backend/internal/types"
)

type ProfileUpdate struct {
	Name              *string  `json:"name"`
	Bio               *string  `json:"bio"`
	ResidencyYear     *int     `json:"residency_year"`
	LearningTrack     *string  `json:"learning_track"`
	WeeklyTargetHours *float64 `json:"weekly_target_hours"`
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		us.log.Warn("Request data not set in context")
		return nil, fmt.Errorf("request data not set in context")
	}

	found, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("user does not exist")
	}
	return found[0], nil
}

func (us *userService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*types.User, error) {
	user, err := us.GetMe(ctx)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ResidencyYear != nil {
		if *update.ResidencyYear < 1 || *update.ResidencyYear > 5 {
			return nil, fmt.Errorf("residency year must be between 1 and 5")
		}
		user.ResidencyYear = *update.ResidencyYear
	}
	if update.LearningTrack != nil {
		user.LearningTrack = *update.LearningTrack
	}
	if update.WeeklyTargetHours != nil {
		if *update.WeeklyTargetHours <= 0 {
			user.WeeklyTargetHours = nil
		} else {
			user.WeeklyTargetHours = update.WeeklyTargetHours
		}
	}

	if err := us.userRepo.Update(ctx, nil, user); err != nil {
		us.log.Error("UpdateProfile failed", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}
