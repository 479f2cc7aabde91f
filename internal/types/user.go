package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email             string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Password          string         `gorm:"column:password;not null" json:"-"`
	Name              string         `gorm:"column:name" json:"name"`
	Bio               string         `gorm:"column:bio" json:"bio"`
	ResidencyYear     int            `gorm:"column:residency_year;not null;default:1" json:"residency_year"`
	LearningTrack     string         `gorm:"column:learning_track" json:"learning_track"`
	WeeklyTargetHours *float64       `gorm:"column:weekly_target_hours" json:"weekly_target_hours,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
