package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dosetrack/dosetrack-backend/internal/adherence"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	types "github.com/dosetrack/dosetrack-backend/internal/domain"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

const dateLayout = "2006-01-02"

// AdherenceQuery scopes a report. From/To are calendar dates in the
// user's timezone. Zero uuids mean unscoped.
type AdherenceQuery struct {
	From         string
	To           string
	MedicationID uuid.UUID
	ScheduleID   uuid.UUID
}

type AdherenceReport struct {
	From         time.Time                     `json:"from"`
	To           time.Time                     `json:"to"`
	Timezone     string                        `json:"timezone"`
	Summary      adherence.Summary             `json:"summary"`
	ByMedication []adherence.MedicationSummary `json:"by_medication,omitempty"`
}

type TimelineEntry struct {
	ScheduleID     uuid.UUID        `json:"schedule_id"`
	MedicationID   uuid.UUID        `json:"medication_id"`
	MedicationName string           `json:"medication_name"`
	ScheduledAt    time.Time        `json:"scheduled_at"`
	Status         adherence.Status `json:"status"`
}

type MedicationBreakdown struct {
	From     time.Time                     `json:"from"`
	To       time.Time                     `json:"to"`
	Timezone string                        `json:"timezone"`
	Items    []adherence.MedicationSummary `json:"items"`
}

type ScheduleBreakdown struct {
	From     time.Time                   `json:"from"`
	To       time.Time                   `json:"to"`
	Timezone string                      `json:"timezone"`
	Items    []adherence.ScheduleSummary `json:"items"`
}

type ReportService interface {
	Adherence(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*AdherenceReport, error)
	ByMedication(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*MedicationBreakdown, error)
	BySchedule(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*ScheduleBreakdown, error)
	Daily(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error)
	Weekly(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error)
	Monthly(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error)
	Timeline(ctx context.Context, userID uuid.UUID, query AdherenceQuery) ([]TimelineEntry, error)
}

type reportService struct {
	users       repos.UserRepo
	medications repos.MedicationRepo
	schedules   repos.ScheduleRepo
	intakes     repos.IntakeRepo
	clock       Clock
	tolerance   time.Duration
	log         *logger.Logger
}

func NewReportService(
	users repos.UserRepo,
	medications repos.MedicationRepo,
	schedules repos.ScheduleRepo,
	intakes repos.IntakeRepo,
	clock Clock,
	tolerance time.Duration,
	baseLog *logger.Logger,
) ReportService {
	if tolerance <= 0 {
		tolerance = adherence.DefaultTolerance
	}
	return &reportService{
		users:       users,
		medications: medications,
		schedules:   schedules,
		intakes:     intakes,
		clock:       clock,
		tolerance:   tolerance,
		log:         baseLog.With("service", "ReportService"),
	}
}

func (s *reportService) Adherence(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*AdherenceReport, error) {
	run, err := s.derive(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	report := &AdherenceReport{
		From:     run.from,
		To:       run.to,
		Timezone: run.loc.String(),
		Summary:  adherence.Summarize(run.records),
	}
	if query.MedicationID == uuid.Nil && query.ScheduleID == uuid.Nil {
		report.ByMedication = adherence.SummarizeByMedication(run.records, run.names)
	}
	return report, nil
}

func (s *reportService) ByMedication(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*MedicationBreakdown, error) {
	query.MedicationID = uuid.Nil
	query.ScheduleID = uuid.Nil
	run, err := s.derive(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return &MedicationBreakdown{
		From:     run.from,
		To:       run.to,
		Timezone: run.loc.String(),
		Items:    adherence.SummarizeByMedication(run.records, run.names),
	}, nil
}

func (s *reportService) BySchedule(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*ScheduleBreakdown, error) {
	query.ScheduleID = uuid.Nil
	run, err := s.derive(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return &ScheduleBreakdown{
		From:     run.from,
		To:       run.to,
		Timezone: run.loc.String(),
		Items:    adherence.SummarizeBySchedule(run.records),
	}, nil
}

func (s *reportService) Daily(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error) {
	return s.preset(ctx, userID, func(today time.Time) (time.Time, time.Time) {
		return today, today
	})
}

// Weekly covers the current Monday-started week.
func (s *reportService) Weekly(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error) {
	return s.preset(ctx, userID, func(today time.Time) (time.Time, time.Time) {
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	})
}

func (s *reportService) Monthly(ctx context.Context, userID uuid.UUID) (*AdherenceReport, error) {
	return s.preset(ctx, userID, func(today time.Time) (time.Time, time.Time) {
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, 1, -1)
	})
}

func (s *reportService) Timeline(ctx context.Context, userID uuid.UUID, query AdherenceQuery) ([]TimelineEntry, error) {
	run, err := s.derive(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	out := make([]TimelineEntry, 0, len(run.records))
	for _, r := range run.records {
		out = append(out, TimelineEntry{
			ScheduleID:     r.ScheduleID,
			MedicationID:   r.MedicationID,
			MedicationName: run.names[r.MedicationID],
			ScheduledAt:    r.ScheduledAt,
			Status:         r.Status,
		})
	}
	return out, nil
}

func (s *reportService) preset(ctx context.Context, userID uuid.UUID, span func(today time.Time) (time.Time, time.Time)) (*AdherenceReport, error) {
	loc, err := s.userLocation(ctx, userID)
	if err != nil {
		return nil, err
	}
	nowLocal := s.clock.Now().In(loc)
	today := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	from, to := span(today)
	return s.Adherence(ctx, userID, AdherenceQuery{
		From: from.Format(dateLayout),
		To:   to.Format(dateLayout),
	})
}

// derivation holds everything one report run computed.
type derivation struct {
	from    time.Time
	to      time.Time
	loc     *time.Location
	records []adherence.StatusRecord
	names   map[uuid.UUID]string
}

func (s *reportService) derive(ctx context.Context, userID uuid.UUID, query AdherenceQuery) (*derivation, error) {
	loc, err := s.userLocation(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to, err := resolveRange(query.From, query.To, loc)
	if err != nil {
		return nil, err
	}

	var (
		scheduleRows   []*types.Schedule
		medicationRows []*types.Medication
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.schedules.ListActiveByUser(dbctx.New(gctx), userID)
		if err != nil {
			return err
		}
		scheduleRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.medications.ListByUser(dbctx.New(gctx), userID, true)
		if err != nil {
			return err
		}
		medicationRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "report_fetch_failed", err)
	}

	names := make(map[uuid.UUID]string, len(medicationRows))
	for _, m := range medicationRows {
		names[m.ID] = m.Name
	}

	rules := make([]adherence.ScheduleRule, 0, len(scheduleRows))
	for _, row := range scheduleRows {
		if query.MedicationID != uuid.Nil && row.MedicationID != query.MedicationID {
			continue
		}
		if query.ScheduleID != uuid.Nil && row.ID != query.ScheduleID {
			continue
		}
		rule := adherence.LenientRule(row.RecurrenceType, row.Times, row.Weekdays, row.IntervalHours)
		if rule == nil {
			s.log.Warn("schedule has no expandable rule", "schedule_id", row.ID.String())
			continue
		}
		rules = append(rules, adherence.ScheduleRule{
			ScheduleID:   row.ID,
			MedicationID: row.MedicationID,
			Rule:         rule,
		})
	}

	occurrences := adherence.ExpandAll(rules, from, to, loc)

	// Widen the fetch so an intake just outside the report range can
	// still claim a window that starts inside it.
	intakeRows, err := s.intakes.ListByUserInRange(
		dbctx.New(ctx),
		userID,
		from.Add(-s.tolerance),
		to.Add(s.tolerance),
		repos.IntakeFilter{MedicationID: query.MedicationID, ScheduleID: query.ScheduleID},
	)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "report_fetch_failed", err)
	}

	events := make([]adherence.IntakeEvent, 0, len(intakeRows))
	for _, row := range intakeRows {
		events = append(events, adherence.IntakeEvent{
			ID:         row.ID,
			ScheduleID: row.ScheduleID,
			Status:     adherence.Status(row.Status),
			TakenAt:    row.TakenAt,
		})
	}

	records := adherence.Match(occurrences, events, s.tolerance, s.clock.Now())
	return &derivation{from: from, to: to, loc: loc, records: records, names: names}, nil
}

func (s *reportService) userLocation(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	found, err := s.users.GetByIDs(dbctx.New(ctx), []uuid.UUID{userID})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "get_user_failed", err)
	}
	if len(found) == 0 {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("user not found"))
	}
	tz := found[0].Timezone
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		// Stored timezones are validated on write; fall back instead
		// of failing the report over a stale row.
		s.log.Warn("stored timezone invalid, using UTC", "user_id", userID.String())
		return time.UTC, nil
	}
	return loc, nil
}

// resolveRange turns calendar dates into a UTC instant range covering
// whole local days.
func resolveRange(fromStr, toStr string, loc *time.Location) (time.Time, time.Time, error) {
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, apierr.New(http.StatusUnprocessableEntity, "invalid_range", fmt.Errorf("from and to are required"))
	}
	fromDay, err := time.ParseInLocation(dateLayout, fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.New(http.StatusUnprocessableEntity, "invalid_range", fmt.Errorf("from must be YYYY-MM-DD"))
	}
	toDay, err := time.ParseInLocation(dateLayout, toStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.New(http.StatusUnprocessableEntity, "invalid_range", fmt.Errorf("to must be YYYY-MM-DD"))
	}
	if toDay.Before(fromDay) {
		return time.Time{}, time.Time{}, apierr.New(http.StatusUnprocessableEntity, "invalid_range", fmt.Errorf("to precedes from"))
	}

	from := fromDay.UTC()
	to := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 23, 59, 59, 0, loc).UTC()
	return from, to, nil
}
