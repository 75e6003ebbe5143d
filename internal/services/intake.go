package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type IntakeInput struct {
	ScheduleID uuid.UUID `json:"schedule_id" binding:"required"`
	Status     string    `json:"status" binding:"required"`
	TakenAt    time.Time `json:"taken_at"`
}

type IntakeListQuery struct {
	From         time.Time
	To           time.Time
	MedicationID uuid.UUID
	ScheduleID   uuid.UUID
}

type IntakeService interface {
	List(ctx context.Context, userID uuid.UUID, query IntakeListQuery) ([]*types.Intake, error)
	Create(ctx context.Context, userID uuid.UUID, input IntakeInput) (*types.Intake, error)
	Delete(ctx context.Context, userID, intakeID uuid.UUID) error
}

type intakeService struct {
	schedules repos.ScheduleRepo
	intakes   repos.IntakeRepo
	clock     Clock
	log       *logger.Logger
}

func NewIntakeService(
	schedules repos.ScheduleRepo,
	intakes repos.IntakeRepo,
	clock Clock,
	baseLog *logger.Logger,
) IntakeService {
	return &intakeService{
		schedules: schedules,
		intakes:   intakes,
		clock:     clock,
		log:       baseLog.With("service", "IntakeService"),
	}
}

func (s *intakeService) List(ctx context.Context, userID uuid.UUID, query IntakeListQuery) ([]*types.Intake, error) {
	if query.To.Before(query.From) {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_range", fmt.Errorf("to precedes from"))
	}
	found, err := s.intakes.ListByUserInRange(dbctx.New(ctx), userID, query.From, query.To, repos.IntakeFilter{
		MedicationID: query.MedicationID,
		ScheduleID:   query.ScheduleID,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_intakes_failed", err)
	}
	// Stored oldest first for the report pipeline; callers of the list
	// endpoint want the most recent dose on top.
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found, nil
}

func (s *intakeService) Create(ctx context.Context, userID uuid.UUID, input IntakeInput) (*types.Intake, error) {
	if input.Status != types.IntakeTaken && input.Status != types.IntakeSkipped {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_status", fmt.Errorf("status must be taken or skipped"))
	}
	takenAt := input.TakenAt
	if takenAt.IsZero() {
		takenAt = s.clock.Now()
	}
	if takenAt.After(s.clock.Now().Add(time.Minute)) {
		return nil, apierr.New(http.StatusUnprocessableEntity, "invalid_taken_at", fmt.Errorf("taken_at is in the future"))
	}

	sched, err := s.schedules.GetByIDForUser(dbctx.New(ctx), input.ScheduleID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "schedule_not_found", fmt.Errorf("schedule not found"))
		}
		return nil, apierr.New(http.StatusInternalServerError, "get_schedule_failed", err)
	}
	if !sched.IsActive {
		return nil, apierr.New(http.StatusUnprocessableEntity, "schedule_inactive", fmt.Errorf("schedule is inactive"))
	}

	intake := &types.Intake{
		ScheduleID:   sched.ID,
		MedicationID: sched.MedicationID,
		UserID:       userID,
		Status:       input.Status,
		TakenAt:      takenAt.UTC(),
	}
	if _, err := s.intakes.Create(dbctx.New(ctx), []*types.Intake{intake}); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "create_intake_failed", err)
	}
	return intake, nil
}

func (s *intakeService) Delete(ctx context.Context, userID, intakeID uuid.UUID) error {
	dbc := dbctx.New(ctx)
	if _, err := s.intakes.GetByIDForUser(dbc, intakeID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusNotFound, "intake_not_found", fmt.Errorf("intake not found"))
		}
		return apierr.New(http.StatusInternalServerError, "get_intake_failed", err)
	}
	if err := s.intakes.DeleteByID(dbc, intakeID); err != nil {
		return apierr.New(http.StatusInternalServerError, "delete_intake_failed", err)
	}
	return nil
}
