package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type MedicationInput struct {
	Name   string `json:"name" binding:"required"`
	Dosage string `json:"dosage"`
	Notes  string `json:"notes"`
}

type MedicationService interface {
	List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*types.Medication, error)
	Get(ctx context.Context, userID, medicationID uuid.UUID) (*types.Medication, error)
	Create(ctx context.Context, userID uuid.UUID, input MedicationInput) (*types.Medication, error)
	Update(ctx context.Context, userID, medicationID uuid.UUID, input MedicationInput) (*types.Medication, error)
	Deactivate(ctx context.Context, userID, medicationID uuid.UUID) error
}

type medicationService struct {
	medications repos.MedicationRepo
	log         *logger.Logger
}

func NewMedicationService(
	medications repos.MedicationRepo,
	baseLog *logger.Logger,
) MedicationService {
	return &medicationService{
		medications: medications,
		log:         baseLog.With("service", "MedicationService"),
	}
}

func (s *medicationService) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*types.Medication, error) {
	meds, err := s.medications.ListByUser(dbctx.New(ctx), userID, activeOnly)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_medications_failed", err)
	}
	return meds, nil
}

func (s *medicationService) Get(ctx context.Context, userID, medicationID uuid.UUID) (*types.Medication, error) {
	med, err := s.medications.GetByIDForUser(dbctx.New(ctx), medicationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "medication_not_found", fmt.Errorf("medication not found"))
		}
		return nil, apierr.New(http.StatusInternalServerError, "get_medication_failed", err)
	}
	return med, nil
}

func (s *medicationService) Create(ctx context.Context, userID uuid.UUID, input MedicationInput) (*types.Medication, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_name", fmt.Errorf("name required"))
	}

	med := &types.Medication{
		UserID:   userID,
		Name:     name,
		Dosage:   strings.TrimSpace(input.Dosage),
		Notes:    strings.TrimSpace(input.Notes),
		IsActive: true,
	}
	if _, err := s.medications.Create(dbctx.New(ctx), []*types.Medication{med}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_medication_failed", err)
	}
	s.log.Info("medication created", "user_id", userID.String(), "medication_name", med.Name)
	return med, nil
}

func (s *medicationService) Update(ctx context.Context, userID, medicationID uuid.UUID, input MedicationInput) (*types.Medication, error) {
	med, err := s.Get(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_name", fmt.Errorf("name required"))
	}

	med.Name = name
	med.Dosage = strings.TrimSpace(input.Dosage)
	med.Notes = strings.TrimSpace(input.Notes)
	if err := s.medications.Update(dbctx.New(ctx), med); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "update_medication_failed", err)
	}
	return med, nil
}

// Deactivate retires a medication without touching its history. Logged
// intakes stay queryable; schedules stop expanding because reports only
// consider active medications.
func (s *medicationService) Deactivate(ctx context.Context, userID, medicationID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, medicationID); err != nil {
		return err
	}
	if err := s.medications.SetActive(dbctx.New(ctx), medicationID, false); err != nil {
		return apierr.New(http.StatusInternalServerError, "deactivate_medication_failed", err)
	}
	s.log.Info("medication deactivated", "user_id", userID.String())
	return nil
}
