package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medication struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_medications_user_active,priority:1;column:user_id" json:"user_id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Dosage   string    `gorm:"column:dosage" json:"dosage"`
	Notes    string    `gorm:"column:notes" json:"notes"`
	IsActive bool      `gorm:"not null;default:true;index:idx_medications_user_active,priority:2;column:is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Medication) TableName() string { return "medications" }
