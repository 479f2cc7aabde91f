package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SimulationProgress struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_case,unique" json:"user_id"`
	User               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CaseID             string         `gorm:"column:case_id;not null;index:idx_user_case,unique" json:"case_id"`
	Status             string         `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercentage int            `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	TimeSpentSeconds   int            `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SimulationProgress) TableName() string { return "simulation_progress" }
