package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	IntakeTaken   = "taken"
	IntakeSkipped = "skipped"
)

// Intake is an immutable dose-log event. Rows are created once and may
// be deleted by their owner, never updated.
type Intake struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ScheduleID   uuid.UUID `gorm:"type:uuid;not null;index;column:schedule_id" json:"schedule_id"`
	MedicationID uuid.UUID `gorm:"type:uuid;not null;index;column:medication_id" json:"medication_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_intakes_user_taken,priority:1;column:user_id" json:"user_id"`
	Status       string    `gorm:"not null;column:status" json:"status"`
	TakenAt      time.Time `gorm:"not null;index:idx_intakes_user_taken,priority:2;column:taken_at" json:"taken_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (Intake) TableName() string { return "intakes" }
