package medication

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type ScheduleRepo interface {
	Create(dbc dbctx.Context, schedules []*types.Schedule) ([]*types.Schedule, error)
	GetByIDForUser(dbc dbctx.Context, scheduleID, userID uuid.UUID) (*types.Schedule, error)
	ListByMedication(dbc dbctx.Context, medicationID uuid.UUID, activeOnly bool) ([]*types.Schedule, error)
	ListActiveByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Schedule, error)
	Update(dbc dbctx.Context, schedule *types.Schedule) error
	SetActive(dbc dbctx.Context, scheduleID uuid.UUID, active bool) error
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	repoLog := baseLog.With("repo", "ScheduleRepo")
	return &scheduleRepo{db: db, log: repoLog}
}

func (sr *scheduleRepo) Create(dbc dbctx.Context, schedules []*types.Schedule) ([]*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(schedules) == 0 {
		return []*types.Schedule{}, nil
	}

	for _, s := range schedules {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&schedules).Error; err != nil {
		return nil, err
	}

	return schedules, nil
}

// GetByIDForUser scopes the lookup through the owning medication, so a
// schedule id from another account resolves to not found.
func (sr *scheduleRepo) GetByIDForUser(dbc dbctx.Context, scheduleID, userID uuid.UUID) (*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Schedule
	if err := transaction.WithContext(dbc.Ctx).
		Joins("JOIN medications ON medications.id = schedules.medication_id").
		Where("schedules.id = ? AND medications.user_id = ?", scheduleID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *scheduleRepo) ListByMedication(dbc dbctx.Context, medicationID uuid.UUID, activeOnly bool) ([]*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	query := transaction.WithContext(dbc.Ctx).
		Where("medication_id = ?", medicationID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var results []*types.Schedule
	if err := query.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListActiveByUser returns active schedules of active medications only.
// Deactivated medications drop out of reports along with their
// schedules.
func (sr *scheduleRepo) ListActiveByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Schedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Schedule
	if err := transaction.WithContext(dbc.Ctx).
		Joins("JOIN medications ON medications.id = schedules.medication_id").
		Where("medications.user_id = ? AND medications.is_active = ? AND schedules.is_active = ?", userID, true, true).
		Order("schedules.created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *scheduleRepo) Update(dbc dbctx.Context, schedule *types.Schedule) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Schedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]any{
			"recurrence_type": schedule.RecurrenceType,
			"times":           schedule.Times,
			"weekdays":        schedule.Weekdays,
			"interval_hours":  schedule.IntervalHours,
			"is_active":       schedule.IsActive,
		}).Error
}

func (sr *scheduleRepo) SetActive(dbc dbctx.Context, scheduleID uuid.UUID, active bool) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Schedule{}).
		Where("id = ?", scheduleID).
		Update("is_active", active).Error
}
