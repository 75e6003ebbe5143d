package adherence

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mustUTC(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts.UTC()
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %q: %v", name, err)
	}
	return loc
}

func dailyRule(t *testing.T, times ...string) Rule {
	t.Helper()
	r, ferr := NewDailyRule(times)
	if ferr != nil {
		t.Fatalf("daily rule: %v", ferr)
	}
	return r
}

func TestExpandDailyCountsWholeDays(t *testing.T) {
	sched := ScheduleRule{
		ScheduleID:   uuid.New(),
		MedicationID: uuid.New(),
		Rule:         dailyRule(t, "08:00", "20:00"),
	}
	start := mustUTC(t, "2025-12-26T00:00:00Z")
	end := mustUTC(t, "2025-12-28T23:59:59Z")

	got := Expand(sched, start, end, time.UTC)

	// 3 whole days x 2 times.
	if len(got) != 6 {
		t.Fatalf("expected 6 occurrences, got %d", len(got))
	}
	want := []string{
		"2025-12-26T08:00:00Z",
		"2025-12-26T20:00:00Z",
		"2025-12-27T08:00:00Z",
		"2025-12-27T20:00:00Z",
		"2025-12-28T08:00:00Z",
		"2025-12-28T20:00:00Z",
	}
	for i, occ := range got {
		if !occ.ScheduledAt.Equal(mustUTC(t, want[i])) {
			t.Fatalf("occurrence %d = %s, want %s", i, occ.ScheduledAt, want[i])
		}
		if occ.ScheduleID != sched.ScheduleID {
			t.Fatalf("occurrence %d has wrong schedule id", i)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].ScheduledAt.Before(got[i-1].ScheduledAt) {
			t.Fatalf("occurrences not ascending at %d", i)
		}
	}
}

func TestExpandDailyConvertsLocalWallClockToUTC(t *testing.T) {
	loc := mustLocation(t, "America/Sao_Paulo") // UTC-3, no DST
	sched := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: dailyRule(t, "08:00")}

	start := time.Date(2025, 12, 26, 0, 0, 0, 0, loc).UTC()
	end := time.Date(2025, 12, 26, 23, 59, 59, 0, loc).UTC()

	got := Expand(sched, start, end, loc)
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(got))
	}
	want := mustUTC(t, "2025-12-26T11:00:00Z")
	if !got[0].ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at %s, want %s", got[0].ScheduledAt, want)
	}
}

func TestExpandWeeklyOnlyOnMemberWeekdays(t *testing.T) {
	rule, ferr := NewWeeklyRule([]string{"09:00"}, []string{"mon", "wed"})
	if ferr != nil {
		t.Fatalf("weekly rule: %v", ferr)
	}
	sched := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: rule}

	start := mustUTC(t, "2025-12-29T00:00:00Z") // Monday
	end := mustUTC(t, "2025-12-31T23:59:59Z")   // Wednesday

	got := Expand(sched, start, end, time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(got))
	}
	if !got[0].ScheduledAt.Equal(mustUTC(t, "2025-12-29T09:00:00Z")) {
		t.Fatalf("first occurrence = %s", got[0].ScheduledAt)
	}
	if !got[1].ScheduledAt.Equal(mustUTC(t, "2025-12-31T09:00:00Z")) {
		t.Fatalf("second occurrence = %s", got[1].ScheduledAt)
	}
	for _, occ := range got {
		wd := occ.ScheduledAt.In(time.UTC).Weekday()
		if wd != time.Monday && wd != time.Wednesday {
			t.Fatalf("occurrence on excluded weekday %s", wd)
		}
	}
}

func TestExpandWeeklyUsesLocalWeekday(t *testing.T) {
	// 2025-12-29T01:00 in Tokyo is still Sunday 2025-12-28 in UTC.
	loc := mustLocation(t, "Asia/Tokyo")
	rule, ferr := NewWeeklyRule([]string{"01:00"}, []string{"mon"})
	if ferr != nil {
		t.Fatalf("weekly rule: %v", ferr)
	}
	sched := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: rule}

	start := time.Date(2025, 12, 29, 0, 0, 0, 0, loc).UTC()
	end := time.Date(2025, 12, 29, 23, 59, 59, 0, loc).UTC()

	got := Expand(sched, start, end, loc)
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(got))
	}
	want := time.Date(2025, 12, 29, 1, 0, 0, 0, loc).UTC()
	if !got[0].ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at %s, want %s", got[0].ScheduledAt, want)
	}
	if got[0].ScheduledAt.In(loc).Weekday() != time.Monday {
		t.Fatalf("local weekday = %s, want Monday", got[0].ScheduledAt.In(loc).Weekday())
	}
}

func TestExpandIntervalStepsFromRangeStart(t *testing.T) {
	rule, ferr := NewIntervalRule(12)
	if ferr != nil {
		t.Fatalf("interval rule: %v", ferr)
	}
	sched := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: rule}

	start := mustUTC(t, "2025-12-29T00:00:00Z")
	end := mustUTC(t, "2025-12-29T23:59:59Z")

	got := Expand(sched, start, end, time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(got))
	}
	if !got[0].ScheduledAt.Equal(start) {
		t.Fatalf("first occurrence = %s, want rangeStart %s", got[0].ScheduledAt, start)
	}
	if diff := got[1].ScheduledAt.Sub(got[0].ScheduledAt); diff != 12*time.Hour {
		t.Fatalf("spacing = %s, want 12h", diff)
	}
	if got[len(got)-1].ScheduledAt.After(end) {
		t.Fatalf("last occurrence past rangeEnd")
	}
}

func TestExpandIntervalIsCapped(t *testing.T) {
	rule, ferr := NewIntervalRule(1)
	if ferr != nil {
		t.Fatalf("interval rule: %v", ferr)
	}
	sched := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: rule}

	start := mustUTC(t, "2020-01-01T00:00:00Z")
	end := mustUTC(t, "2022-01-01T00:00:00Z")

	got := Expand(sched, start, end, time.UTC)
	if len(got) != MaxOccurrencesPerSchedule {
		t.Fatalf("expected cap of %d occurrences, got %d", MaxOccurrencesPerSchedule, len(got))
	}
}

func TestLenientRuleDropsMalformedEntries(t *testing.T) {
	cases := []struct {
		name          string
		recurrence    string
		times         []string
		weekdays      []string
		intervalHours *int
		wantNil       bool
		wantPerDay    int
	}{
		{name: "bad_time_skipped", recurrence: TypeDaily, times: []string{"08:00", "banana", "25:00"}, wantPerDay: 1},
		{name: "all_bad_times", recurrence: TypeDaily, times: []string{"nope"}, wantNil: true},
		{name: "empty_times", recurrence: TypeDaily, times: nil, wantNil: true},
		{name: "empty_weekdays", recurrence: TypeWeekly, times: []string{"08:00"}, weekdays: nil, wantNil: true},
		{name: "bad_weekday_dropped", recurrence: TypeWeekly, times: []string{"08:00"}, weekdays: []string{"mon", "xyz"}, wantPerDay: 1},
		{name: "zero_interval", recurrence: TypeInterval, intervalHours: intPtr(0), wantNil: true},
		{name: "unknown_type", recurrence: "yearly", wantNil: true},
	}

	start := mustUTC(t, "2025-12-29T00:00:00Z") // Monday
	end := mustUTC(t, "2025-12-29T23:59:59Z")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := LenientRule(tc.recurrence, tc.times, tc.weekdays, tc.intervalHours)
			if tc.wantNil {
				if rule != nil {
					t.Fatalf("expected nil rule, got %T", rule)
				}
				return
			}
			if rule == nil {
				t.Fatalf("expected rule, got nil")
			}
			got := Expand(ScheduleRule{ScheduleID: uuid.New(), Rule: rule}, start, end, time.UTC)
			if len(got) != tc.wantPerDay {
				t.Fatalf("expected %d occurrences, got %d", tc.wantPerDay, len(got))
			}
		})
	}
}

func TestExpandAllMergesAscendingAndKeepsTies(t *testing.T) {
	a := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: dailyRule(t, "08:00")}
	b := ScheduleRule{ScheduleID: uuid.New(), MedicationID: uuid.New(), Rule: dailyRule(t, "08:00", "06:00")}

	start := mustUTC(t, "2025-12-26T00:00:00Z")
	end := mustUTC(t, "2025-12-26T23:59:59Z")

	got := ExpandAll([]ScheduleRule{a, b}, start, end, time.UTC)
	if len(got) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ScheduledAt.Before(got[i-1].ScheduledAt) {
			t.Fatalf("not ascending at %d", i)
		}
	}
	// The duplicate 08:00 instants stay separate entries.
	if !got[1].ScheduledAt.Equal(got[2].ScheduledAt) {
		t.Fatalf("expected tie at 08:00, got %s and %s", got[1].ScheduledAt, got[2].ScheduledAt)
	}
	if got[1].ScheduleID == got[2].ScheduleID {
		t.Fatalf("tied occurrences should come from different schedules")
	}
}

func intPtr(v int) *int { return &v }

func TestExpandAscendingAcrossSpringForwardGap(t *testing.T) {
	// New York springs forward on 2025-03-09: 02:30 does not exist and
	// normalizes to 03:30 EDT, landing after the 03:00 dose.
	loc := mustLocation(t, "America/New_York")
	sched := ScheduleRule{
		ScheduleID:   uuid.New(),
		MedicationID: uuid.New(),
		Rule:         dailyRule(t, "02:30", "03:00"),
	}

	start := mustUTC(t, "2025-03-09T00:00:00Z")
	end := mustUTC(t, "2025-03-10T00:00:00Z")

	got := Expand(sched, start, end, loc)
	if len(got) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(got))
	}
	if want := mustUTC(t, "2025-03-09T07:00:00Z"); !got[0].ScheduledAt.Equal(want) {
		t.Fatalf("first = %s, want %s (03:00 EDT)", got[0].ScheduledAt, want)
	}
	if want := mustUTC(t, "2025-03-09T07:30:00Z"); !got[1].ScheduledAt.Equal(want) {
		t.Fatalf("second = %s, want %s (02:30 normalized into the gap)", got[1].ScheduledAt, want)
	}
}
