package repos

import (
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos/auth"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos/medication"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos/user"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type MedicationRepo = medication.MedicationRepo
type ScheduleRepo = medication.ScheduleRepo
type IntakeRepo = medication.IntakeRepo

type IntakeFilter = medication.IntakeFilter

// Set bundles every repository over one database handle.
type Set struct {
	User       UserRepo
	UserToken  UserTokenRepo
	Medication MedicationRepo
	Schedule   ScheduleRepo
	Intake     IntakeRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) *Set {
	return &Set{
		User:       user.NewUserRepo(db, baseLog),
		UserToken:  auth.NewUserTokenRepo(db, baseLog),
		Medication: medication.NewMedicationRepo(db, baseLog),
		Schedule:   medication.NewScheduleRepo(db, baseLog),
		Intake:     medication.NewIntakeRepo(db, baseLog),
	}
}
