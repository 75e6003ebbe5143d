package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/dosetrack/dosetrack-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Medication catalog + recurrence
		&types.Medication{},
		&types.Schedule{},

		// Logged dose actions
		&types.Intake{},
	)
}

func EnsureReportIndexes(db *gorm.DB) error {
	// Report ranges scan intakes by owner and instant; the composite
	// index keeps the tolerance-widened window fetch off a seq scan.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_intakes_schedule_taken
		ON intakes (schedule_id, taken_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_intakes_schedule_taken: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_intakes_medication_taken
		ON intakes (medication_id, taken_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_intakes_medication_taken: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureReportIndexes(s.db); err != nil {
		s.log.Error("Report index migration failed", "error", err)
		return err
	}
	return nil
}
