package medication

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type MedicationRepo interface {
	Create(dbc dbctx.Context, medications []*types.Medication) ([]*types.Medication, error)
	GetByIDForUser(dbc dbctx.Context, medicationID, userID uuid.UUID) (*types.Medication, error)
	GetByIDs(dbc dbctx.Context, medicationIDs []uuid.UUID) ([]*types.Medication, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*types.Medication, error)
	Update(dbc dbctx.Context, medication *types.Medication) error
	SetActive(dbc dbctx.Context, medicationID uuid.UUID, active bool) error
}

type medicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	repoLog := baseLog.With("repo", "MedicationRepo")
	return &medicationRepo{db: db, log: repoLog}
}

func (mr *medicationRepo) Create(dbc dbctx.Context, medications []*types.Medication) ([]*types.Medication, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(medications) == 0 {
		return []*types.Medication{}, nil
	}

	for _, m := range medications {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&medications).Error; err != nil {
		return nil, err
	}

	return medications, nil
}

func (mr *medicationRepo) GetByIDForUser(dbc dbctx.Context, medicationID, userID uuid.UUID) (*types.Medication, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.Medication
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", medicationID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *medicationRepo) GetByIDs(dbc dbctx.Context, medicationIDs []uuid.UUID) ([]*types.Medication, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.Medication
	if len(medicationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", medicationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *medicationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*types.Medication, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}

	query := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var results []*types.Medication
	if err := query.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *medicationRepo) Update(dbc dbctx.Context, medication *types.Medication) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Medication{}).
		Where("id = ?", medication.ID).
		Updates(map[string]any{
			"name":      medication.Name,
			"dosage":    medication.Dosage,
			"notes":     medication.Notes,
			"is_active": medication.IsActive,
		}).Error
}

func (mr *medicationRepo) SetActive(dbc dbctx.Context, medicationID uuid.UUID, active bool) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Medication{}).
		Where("id = ?", medicationID).
		Update("is_active", active).Error
}
