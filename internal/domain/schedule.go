package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RecurrenceDaily    = "daily"
	RecurrenceWeekly   = "weekly"
	RecurrenceInterval = "interval"
)

// Schedule rows keep times/weekdays as JSON arrays. Which fields are
// populated depends on recurrence_type; the write path enforces that
// via rule construction before anything is persisted.
type Schedule struct {
	ID             uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	MedicationID   uuid.UUID                     `gorm:"type:uuid;not null;index:idx_schedules_medication_active,priority:1;column:medication_id" json:"medication_id"`
	RecurrenceType string                        `gorm:"not null;column:recurrence_type" json:"recurrence_type"`
	Times          datatypes.JSONSlice[string]   `gorm:"column:times" json:"times,omitempty"`
	Weekdays       datatypes.JSONSlice[string]   `gorm:"column:weekdays" json:"weekdays,omitempty"`
	IntervalHours  *int                          `gorm:"column:interval_hours" json:"interval_hours,omitempty"`
	IsActive       bool                          `gorm:"not null;default:true;index:idx_schedules_medication_active,priority:2;column:is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Schedule) TableName() string { return "schedules" }
