package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProgressStatusNotStarted = "not_started"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

type LessonProgress struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_lesson,unique" json:"user_id"`
	User               *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	DomainID           string         `gorm:"column:domain_id;not null;index:idx_user_lesson,unique" json:"domain_id"`
	ModuleID           string         `gorm:"column:module_id;not null;index:idx_user_lesson,unique" json:"module_id"`
	LessonID           string         `gorm:"column:lesson_id;not null;index:idx_user_lesson,unique" json:"lesson_id"`
	Status             string         `gorm:"column:status;not null;default:'not_started'" json:"status"`
	ProgressPercentage int            `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	Bookmarked         bool           `gorm:"column:bookmarked;not null;default:false" json:"bookmarked"`
	TimeSpentSeconds   int            `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`
	LastReadPosition   datatypes.JSON `gorm:"type:jsonb;column:last_read_position" json:"last_read_position,omitempty"`
	CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

func (p *LessonProgress) LessonKey() string {
	return p.DomainID + "/" + p.ModuleID + "/" + p.LessonID
}
