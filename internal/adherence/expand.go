package adherence

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxOccurrencesPerSchedule bounds a single schedule's expansion. The
// limit truncates rather than errors: a one-hour interval over a
// year-long report window stops at the cap instead of looping without
// bound.
const MaxOccurrencesPerSchedule = 10000

// Occurrence is a derived expected dose instant. It is recomputed on
// every report and never persisted; its identity within one run is
// (ScheduleID, ScheduledAt).
type Occurrence struct {
	ScheduleID   uuid.UUID
	MedicationID uuid.UUID
	ScheduledAt  time.Time
}

// ScheduleRule pairs a schedule's identity with its recurrence rule.
type ScheduleRule struct {
	ScheduleID   uuid.UUID
	MedicationID uuid.UUID
	Rule         Rule
}

// Expand generates the schedule's occurrences inside
// [rangeStart, rangeEnd] (inclusive), ascending, as UTC instants.
// Local-day and weekday decisions use loc. A nil rule expands to
// nothing.
func Expand(s ScheduleRule, rangeStart, rangeEnd time.Time, loc *time.Location) []Occurrence {
	if s.Rule == nil || rangeEnd.Before(rangeStart) {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	var out []Occurrence
	s.Rule.instants(rangeStart, rangeEnd, loc, func(t time.Time) bool {
		if len(out) >= MaxOccurrencesPerSchedule {
			return false
		}
		out = append(out, Occurrence{
			ScheduleID:   s.ScheduleID,
			MedicationID: s.MedicationID,
			ScheduledAt:  t,
		})
		return true
	})
	// Emission order can invert around a DST gap: a wall-clock time
	// inside the gap normalizes forward past a later entry.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

// ExpandAll expands every schedule and merges the results into one
// ascending timeline. Duplicate instants across schedules stay as
// separate entries.
func ExpandAll(schedules []ScheduleRule, rangeStart, rangeEnd time.Time, loc *time.Location) []Occurrence {
	var out []Occurrence
	for _, s := range schedules {
		out = append(out, Expand(s, rangeStart, rangeEnd, loc)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func (r DailyRule) instants(rangeStart, rangeEnd time.Time, loc *time.Location, emit func(time.Time) bool) {
	eachLocalDay(rangeStart, rangeEnd, loc, func(day time.Time) bool {
		return emitDayTimes(day, r.times, rangeStart, rangeEnd, loc, emit)
	})
}

func (r WeeklyRule) instants(rangeStart, rangeEnd time.Time, loc *time.Location, emit func(time.Time) bool) {
	eachLocalDay(rangeStart, rangeEnd, loc, func(day time.Time) bool {
		// Weekday membership is decided on the local calendar date.
		if !r.weekdays[day.Weekday()] {
			return true
		}
		return emitDayTimes(day, r.times, rangeStart, rangeEnd, loc, emit)
	})
}

func (r IntervalRule) instants(rangeStart, rangeEnd time.Time, _ *time.Location, emit func(time.Time) bool) {
	step := time.Duration(r.hours) * time.Hour
	// The first occurrence is exactly rangeStart.
	for cur := rangeStart; !cur.After(rangeEnd); cur = cur.Add(step) {
		if !emit(cur.UTC()) {
			return
		}
	}
}

// eachLocalDay walks midnights of every local calendar day overlapping
// the range. fn returning false stops the walk.
func eachLocalDay(rangeStart, rangeEnd time.Time, loc *time.Location, fn func(day time.Time) bool) {
	startLocal := rangeStart.In(loc)
	endLocal := rangeEnd.In(loc)
	day := time.Date(startLocal.Year(), startLocal.Month(), startLocal.Day(), 0, 0, 0, 0, loc)
	for !day.After(endLocal) {
		if !fn(day) {
			return
		}
		day = day.AddDate(0, 0, 1)
	}
}

func emitDayTimes(day time.Time, times []ClockTime, rangeStart, rangeEnd time.Time, loc *time.Location, emit func(time.Time) bool) bool {
	for _, ct := range times {
		inst := time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, 0, 0, loc).UTC()
		if inst.Before(rangeStart) || inst.After(rangeEnd) {
			continue
		}
		if !emit(inst) {
			return false
		}
	}
	return true
}
