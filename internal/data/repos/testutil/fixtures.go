package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/dosetrack/dosetrack-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
		Timezone: "UTC",
		Language: "en",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedMedication(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) *types.Medication {
	tb.Helper()
	m := &types.Medication{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Dosage:   "10mg",
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed medication: %v", err)
	}
	return m
}

func SeedDailySchedule(tb testing.TB, ctx context.Context, tx *gorm.DB, medicationID uuid.UUID, times ...string) *types.Schedule {
	tb.Helper()
	s := &types.Schedule{
		ID:             uuid.New(),
		MedicationID:   medicationID,
		RecurrenceType: types.RecurrenceDaily,
		Times:          datatypes.NewJSONSlice(times),
		IsActive:       true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schedule: %v", err)
	}
	return s
}

func SeedIntake(tb testing.TB, ctx context.Context, tx *gorm.DB, scheduleID, medicationID, userID uuid.UUID, status string, takenAt time.Time) *types.Intake {
	tb.Helper()
	in := &types.Intake{
		ID:           uuid.New(),
		ScheduleID:   scheduleID,
		MedicationID: medicationID,
		UserID:       userID,
		Status:       status,
		TakenAt:      takenAt,
	}
	if err := tx.WithContext(ctx).Create(in).Error; err != nil {
		tb.Fatalf("seed intake: %v", err)
	}
	return in
}
