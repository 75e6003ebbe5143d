package adherence

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func occ(scheduleID uuid.UUID, at time.Time) Occurrence {
	return Occurrence{ScheduleID: scheduleID, ScheduledAt: at}
}

func TestMatchTakenAndSkippedWithinWindow(t *testing.T) {
	scheduleID := uuid.New()
	morning := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 12, 26, 20, 0, 0, 0, time.UTC)

	occurrences := []Occurrence{occ(scheduleID, morning), occ(scheduleID, evening)}
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: morning.Add(5 * time.Minute)},
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusSkipped, TakenAt: evening},
	}
	now := time.Date(2025, 12, 27, 0, 0, 0, 0, time.UTC)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Status != StatusTaken {
		t.Fatalf("morning status = %s, want taken", got[0].Status)
	}
	if got[1].Status != StatusSkipped {
		t.Fatalf("evening status = %s, want skipped", got[1].Status)
	}
}

func TestMatchIgnoresIntakesFromOtherSchedules(t *testing.T) {
	scheduleID := uuid.New()
	otherID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)

	occurrences := []Occurrence{occ(scheduleID, at)}
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: otherID, Status: StatusTaken, TakenAt: at},
	}
	now := at.Add(2 * time.Hour)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	if got[0].Status != StatusMissed {
		t.Fatalf("status = %s, want missed", got[0].Status)
	}
}

func TestMatchNeverConsumesAnIntakeTwice(t *testing.T) {
	scheduleID := uuid.New()
	first := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	second := first.Add(10 * time.Minute)

	occurrences := []Occurrence{occ(scheduleID, first), occ(scheduleID, second)}
	// Eligible for both windows, but only the first occurrence may claim it.
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: first.Add(12 * time.Minute)},
	}
	now := first.Add(3 * time.Hour)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	if got[0].Status != StatusTaken {
		t.Fatalf("first occurrence = %s, want taken", got[0].Status)
	}
	if got[1].Status != StatusMissed {
		t.Fatalf("second occurrence = %s, want missed", got[1].Status)
	}
}

func TestMatchEarlyIntakeDoesNotCount(t *testing.T) {
	scheduleID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)

	occurrences := []Occurrence{occ(scheduleID, at)}
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: at.Add(-10 * time.Minute)},
	}
	now := at.Add(time.Hour)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	if got[0].Status != StatusMissed {
		t.Fatalf("status = %s, want missed", got[0].Status)
	}
}

func TestMatchWindowBoundaries(t *testing.T) {
	scheduleID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	now := at.Add(2 * time.Hour)

	cases := []struct {
		name    string
		takenAt time.Time
		want    Status
	}{
		{name: "exactly_at_scheduled", takenAt: at, want: StatusTaken},
		{name: "exactly_at_window_end", takenAt: at.Add(DefaultTolerance), want: StatusTaken},
		{name: "just_past_window_end", takenAt: at.Add(DefaultTolerance + time.Second), want: StatusMissed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			occurrences := []Occurrence{occ(scheduleID, at)}
			intakes := []IntakeEvent{
				{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: tc.takenAt},
			}
			got := Match(occurrences, intakes, DefaultTolerance, now)
			if got[0].Status != tc.want {
				t.Fatalf("status = %s, want %s", got[0].Status, tc.want)
			}
		})
	}
}

func TestMatchPendingUntilWindowCloses(t *testing.T) {
	scheduleID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	occurrences := []Occurrence{occ(scheduleID, at)}

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{name: "before_occurrence", now: at.Add(-time.Hour), want: StatusPending},
		{name: "inside_window", now: at.Add(10 * time.Minute), want: StatusPending},
		{name: "at_window_end", now: at.Add(DefaultTolerance), want: StatusPending},
		{name: "after_window_end", now: at.Add(DefaultTolerance + time.Second), want: StatusMissed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Match(occurrences, nil, DefaultTolerance, tc.now)
			if got[0].Status != tc.want {
				t.Fatalf("status = %s, want %s", got[0].Status, tc.want)
			}
		})
	}
}

func TestMatchEarliestIntakeWinsFirstOccurrence(t *testing.T) {
	scheduleID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	occurrences := []Occurrence{occ(scheduleID, at)}

	skippedID := uuid.New()
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: at.Add(20 * time.Minute)},
		{ID: skippedID, ScheduleID: scheduleID, Status: StatusSkipped, TakenAt: at.Add(5 * time.Minute)},
	}
	now := at.Add(time.Hour)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	// Slots are ordered by taken_at, so the earlier skip claims the slot.
	if got[0].Status != StatusSkipped {
		t.Fatalf("status = %s, want skipped", got[0].Status)
	}
}

func TestMatchIntervalScenario(t *testing.T) {
	scheduleID := uuid.New()
	midnight := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	noon := midnight.Add(12 * time.Hour)

	occurrences := []Occurrence{occ(scheduleID, midnight), occ(scheduleID, noon)}
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: midnight.Add(10 * time.Minute)},
	}
	now := time.Date(2025, 12, 29, 23, 0, 0, 0, time.UTC)

	got := Match(occurrences, intakes, DefaultTolerance, now)
	if got[0].Status != StatusTaken {
		t.Fatalf("midnight status = %s, want taken", got[0].Status)
	}
	if got[1].Status != StatusMissed {
		t.Fatalf("noon status = %s, want missed", got[1].Status)
	}
}

func TestMatchZeroToleranceFallsBackToDefault(t *testing.T) {
	scheduleID := uuid.New()
	at := time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC)
	occurrences := []Occurrence{occ(scheduleID, at)}
	intakes := []IntakeEvent{
		{ID: uuid.New(), ScheduleID: scheduleID, Status: StatusTaken, TakenAt: at.Add(15 * time.Minute)},
	}
	now := at.Add(time.Hour)

	got := Match(occurrences, intakes, 0, now)
	if got[0].Status != StatusTaken {
		t.Fatalf("status = %s, want taken", got[0].Status)
	}
}
