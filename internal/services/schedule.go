package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/adherence"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type ScheduleInput struct {
	RecurrenceType string   `json:"recurrence_type" binding:"required"`
	Times          []string `json:"times"`
	Weekdays       []string `json:"weekdays"`
	IntervalHours  *int     `json:"interval_hours"`
}

type ScheduleService interface {
	ListByMedication(ctx context.Context, userID, medicationID uuid.UUID, includeInactive bool) ([]*types.Schedule, error)
	Create(ctx context.Context, userID, medicationID uuid.UUID, input ScheduleInput) (*types.Schedule, error)
	Update(ctx context.Context, userID, scheduleID uuid.UUID, input ScheduleInput) (*types.Schedule, error)
	Deactivate(ctx context.Context, userID, scheduleID uuid.UUID) error
}

type scheduleService struct {
	medications repos.MedicationRepo
	schedules   repos.ScheduleRepo
	log         *logger.Logger
}

func NewScheduleService(
	medications repos.MedicationRepo,
	schedules repos.ScheduleRepo,
	baseLog *logger.Logger,
) ScheduleService {
	return &scheduleService{
		medications: medications,
		schedules:   schedules,
		log:         baseLog.With("service", "ScheduleService"),
	}
}

func (s *scheduleService) ListByMedication(ctx context.Context, userID, medicationID uuid.UUID, includeInactive bool) ([]*types.Schedule, error) {
	if _, err := s.ownedMedication(ctx, userID, medicationID); err != nil {
		return nil, err
	}
	found, err := s.schedules.ListByMedication(dbctx.New(ctx), medicationID, !includeInactive)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_schedules_failed", err)
	}
	return found, nil
}

func (s *scheduleService) Create(ctx context.Context, userID, medicationID uuid.UUID, input ScheduleInput) (*types.Schedule, error) {
	if _, err := s.ownedMedication(ctx, userID, medicationID); err != nil {
		return nil, err
	}

	if _, ferr := adherence.NewRule(input.RecurrenceType, input.Times, input.Weekdays, input.IntervalHours); ferr != nil {
		return nil, validationErr(ferr)
	}

	ferr, err := s.checkOverlap(ctx, medicationID, input, true, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if ferr != nil {
		return nil, validationErr(ferr)
	}

	sched := &types.Schedule{
		MedicationID:   medicationID,
		RecurrenceType: input.RecurrenceType,
		Times:          jsonSlice(input.Times),
		Weekdays:       jsonSlice(input.Weekdays),
		IntervalHours:  input.IntervalHours,
		IsActive:       true,
	}
	if _, err := s.schedules.Create(dbctx.New(ctx), []*types.Schedule{sched}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_schedule_failed", err)
	}
	s.log.Info("schedule created", "user_id", userID.String(), "recurrence_type", sched.RecurrenceType)
	return sched, nil
}

func (s *scheduleService) Update(ctx context.Context, userID, scheduleID uuid.UUID, input ScheduleInput) (*types.Schedule, error) {
	sched, err := s.ownedSchedule(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}

	if _, ferr := adherence.NewRule(input.RecurrenceType, input.Times, input.Weekdays, input.IntervalHours); ferr != nil {
		return nil, validationErr(ferr)
	}

	ferr, err := s.checkOverlap(ctx, sched.MedicationID, input, sched.IsActive, sched.ID)
	if err != nil {
		return nil, err
	}
	if ferr != nil {
		return nil, validationErr(ferr)
	}

	sched.RecurrenceType = input.RecurrenceType
	sched.Times = jsonSlice(input.Times)
	sched.Weekdays = jsonSlice(input.Weekdays)
	sched.IntervalHours = input.IntervalHours
	if err := s.schedules.Update(dbctx.New(ctx), sched); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "update_schedule_failed", err)
	}
	return sched, nil
}

func (s *scheduleService) Deactivate(ctx context.Context, userID, scheduleID uuid.UUID) error {
	if _, err := s.ownedSchedule(ctx, userID, scheduleID); err != nil {
		return err
	}
	if err := s.schedules.SetActive(dbctx.New(ctx), scheduleID, false); err != nil {
		return apierr.New(http.StatusInternalServerError, "deactivate_schedule_failed", err)
	}
	return nil
}

// checkOverlap compares the candidate against its medication's other
// schedules. Reads and the later write are not transactional; two
// concurrent creates can both pass. The check is a guard against
// accidental duplicates, not a serialization point. A failed sibling
// read aborts the write: a schedule is never persisted unvalidated.
func (s *scheduleService) checkOverlap(ctx context.Context, medicationID uuid.UUID, input ScheduleInput, active bool, excludeID uuid.UUID) (*adherence.FieldError, error) {
	siblings, err := s.schedules.ListByMedication(dbctx.New(ctx), medicationID, true)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "overlap_check_failed", err)
	}

	existing := make([]adherence.CandidateSchedule, 0, len(siblings))
	for _, sib := range siblings {
		existing = append(existing, adherence.CandidateSchedule{
			ID:             sib.ID,
			RecurrenceType: sib.RecurrenceType,
			Times:          sib.Times,
			Weekdays:       sib.Weekdays,
			IsActive:       sib.IsActive,
		})
	}

	candidate := adherence.CandidateSchedule{
		RecurrenceType: input.RecurrenceType,
		Times:          input.Times,
		Weekdays:       input.Weekdays,
		IsActive:       active,
	}
	return adherence.CheckOverlap(candidate, existing, excludeID), nil
}

func (s *scheduleService) ownedMedication(ctx context.Context, userID, medicationID uuid.UUID) (*types.Medication, error) {
	med, err := s.medications.GetByIDForUser(dbctx.New(ctx), medicationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "medication_not_found", fmt.Errorf("medication not found"))
		}
		return nil, apierr.New(http.StatusInternalServerError, "get_medication_failed", err)
	}
	return med, nil
}

func (s *scheduleService) ownedSchedule(ctx context.Context, userID, scheduleID uuid.UUID) (*types.Schedule, error) {
	sched, err := s.schedules.GetByIDForUser(dbctx.New(ctx), scheduleID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "schedule_not_found", fmt.Errorf("schedule not found"))
		}
		return nil, apierr.New(http.StatusInternalServerError, "get_schedule_failed", err)
	}
	return sched, nil
}

func validationErr(ferr *adherence.FieldError) error {
	return apierr.New(http.StatusUnprocessableEntity, "validation_failed", ferr)
}

func jsonSlice(values []string) datatypes.JSONSlice[string] {
	if values == nil {
		return nil
	}
	return datatypes.NewJSONSlice(values)
}
