package adherence

import (
	"testing"

	"github.com/google/uuid"
)

func TestCheckOverlapDailyIdenticalTimes(t *testing.T) {
	existing := []CandidateSchedule{{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00", "20:00"},
		IsActive:       true,
	}}

	candidate := CandidateSchedule{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"20:00", "08:00"}, // order must not matter
		IsActive:       true,
	}

	ferr := CheckOverlap(candidate, existing, uuid.Nil)
	if ferr == nil {
		t.Fatalf("expected conflict, got nil")
	}
	if ferr.Field != "times" {
		t.Fatalf("field = %q, want times", ferr.Field)
	}
}

func TestCheckOverlapDailyDifferentTimes(t *testing.T) {
	existing := []CandidateSchedule{{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00", "20:00"},
		IsActive:       true,
	}}

	candidate := CandidateSchedule{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00", "21:00"},
		IsActive:       true,
	}

	if ferr := CheckOverlap(candidate, existing, uuid.Nil); ferr != nil {
		t.Fatalf("unexpected conflict: %v", ferr)
	}
}

func TestCheckOverlapWeeklyNeedsWeekdayIntersection(t *testing.T) {
	existing := []CandidateSchedule{{
		ID:             uuid.New(),
		RecurrenceType: TypeWeekly,
		Times:          []string{"09:00"},
		Weekdays:       []string{"mon", "wed"},
		IsActive:       true,
	}}

	cases := []struct {
		name     string
		weekdays []string
		conflict bool
	}{
		{name: "disjoint_weekdays", weekdays: []string{"tue", "thu"}, conflict: false},
		{name: "shared_weekday", weekdays: []string{"wed", "fri"}, conflict: true},
		{name: "case_insensitive", weekdays: []string{"MON"}, conflict: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := CandidateSchedule{
				ID:             uuid.New(),
				RecurrenceType: TypeWeekly,
				Times:          []string{"09:00"},
				Weekdays:       tc.weekdays,
				IsActive:       true,
			}
			ferr := CheckOverlap(candidate, existing, uuid.Nil)
			if tc.conflict && ferr == nil {
				t.Fatalf("expected conflict, got nil")
			}
			if !tc.conflict && ferr != nil {
				t.Fatalf("unexpected conflict: %v", ferr)
			}
			if tc.conflict && ferr.Field != "weekdays" {
				t.Fatalf("field = %q, want weekdays", ferr.Field)
			}
		})
	}
}

func TestCheckOverlapNormalizesDuplicates(t *testing.T) {
	existing := []CandidateSchedule{{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00"},
		IsActive:       true,
	}}

	candidate := CandidateSchedule{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00", "08:00"},
		IsActive:       true,
	}

	if ferr := CheckOverlap(candidate, existing, uuid.Nil); ferr == nil {
		t.Fatalf("expected conflict after dedupe, got nil")
	}
}

func TestCheckOverlapExemptions(t *testing.T) {
	existingID := uuid.New()
	existing := []CandidateSchedule{{
		ID:             existingID,
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00"},
		IsActive:       true,
	}}

	cases := []struct {
		name      string
		candidate CandidateSchedule
		exclude   uuid.UUID
	}{
		{
			name: "interval_candidate",
			candidate: CandidateSchedule{
				ID:             uuid.New(),
				RecurrenceType: TypeInterval,
				IsActive:       true,
			},
		},
		{
			name: "inactive_candidate",
			candidate: CandidateSchedule{
				ID:             uuid.New(),
				RecurrenceType: TypeDaily,
				Times:          []string{"08:00"},
				IsActive:       false,
			},
		},
		{
			name: "update_excludes_self",
			candidate: CandidateSchedule{
				ID:             existingID,
				RecurrenceType: TypeDaily,
				Times:          []string{"08:00"},
				IsActive:       true,
			},
			exclude: existingID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if ferr := CheckOverlap(tc.candidate, existing, tc.exclude); ferr != nil {
				t.Fatalf("unexpected conflict: %v", ferr)
			}
		})
	}
}

func TestCheckOverlapIgnoresInactiveAndOtherTypes(t *testing.T) {
	existing := []CandidateSchedule{
		{
			ID:             uuid.New(),
			RecurrenceType: TypeDaily,
			Times:          []string{"08:00"},
			IsActive:       false,
		},
		{
			ID:             uuid.New(),
			RecurrenceType: TypeWeekly,
			Times:          []string{"08:00"},
			Weekdays:       []string{"mon"},
			IsActive:       true,
		},
	}

	candidate := CandidateSchedule{
		ID:             uuid.New(),
		RecurrenceType: TypeDaily,
		Times:          []string{"08:00"},
		IsActive:       true,
	}

	if ferr := CheckOverlap(candidate, existing, uuid.Nil); ferr != nil {
		t.Fatalf("unexpected conflict: %v", ferr)
	}
}
