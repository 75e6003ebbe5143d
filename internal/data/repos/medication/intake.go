package medication

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

// IntakeFilter narrows range queries. Zero-value fields are ignored.
type IntakeFilter struct {
	MedicationID uuid.UUID
	ScheduleID   uuid.UUID
}

type IntakeRepo interface {
	Create(dbc dbctx.Context, intakes []*types.Intake) ([]*types.Intake, error)
	GetByIDForUser(dbc dbctx.Context, intakeID, userID uuid.UUID) (*types.Intake, error)
	ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time, filter IntakeFilter) ([]*types.Intake, error)
	DeleteByID(dbc dbctx.Context, intakeID uuid.UUID) error
}

type intakeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIntakeRepo(db *gorm.DB, baseLog *logger.Logger) IntakeRepo {
	repoLog := baseLog.With("repo", "IntakeRepo")
	return &intakeRepo{db: db, log: repoLog}
}

func (ir *intakeRepo) Create(dbc dbctx.Context, intakes []*types.Intake) ([]*types.Intake, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ir.db
	}

	if len(intakes) == 0 {
		return []*types.Intake{}, nil
	}

	for _, in := range intakes {
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&intakes).Error; err != nil {
		return nil, err
	}

	return intakes, nil
}

func (ir *intakeRepo) GetByIDForUser(dbc dbctx.Context, intakeID, userID uuid.UUID) (*types.Intake, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ir.db
	}

	var result types.Intake
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", intakeID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByUserInRange fetches intakes with taken_at inside [from, to],
// ascending. Callers widen the range themselves when matching against
// a tolerance window.
func (ir *intakeRepo) ListByUserInRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time, filter IntakeFilter) ([]*types.Intake, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ir.db
	}

	query := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND taken_at >= ? AND taken_at <= ?", userID, from, to)
	if filter.MedicationID != uuid.Nil {
		query = query.Where("medication_id = ?", filter.MedicationID)
	}
	if filter.ScheduleID != uuid.Nil {
		query = query.Where("schedule_id = ?", filter.ScheduleID)
	}

	var results []*types.Intake
	if err := query.Order("taken_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *intakeRepo) DeleteByID(dbc dbctx.Context, intakeID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ir.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", intakeID).
		Delete(&types.Intake{}).Error
}
