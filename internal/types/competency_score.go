package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompetencyScore is the per-user running aggregate over debrief scores,
// recomputed each time a debrief is submitted. Score is on a 0-5 scale.
type CompetencyScore struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_competency,unique" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CompetencyKey string         `gorm:"column:competency_key;not null;index:idx_user_competency,unique" json:"competency_key"`
	Score         float64        `gorm:"column:score;not null;default:0" json:"score"`
	SampleCount   int            `gorm:"column:sample_count;not null;default:0" json:"sample_count"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CompetencyScore) TableName() string { return "competency_score" }
