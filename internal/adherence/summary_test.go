package adherence

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func record(medicationID, scheduleID uuid.UUID, status Status) StatusRecord {
	return StatusRecord{
		Occurrence: Occurrence{
			ScheduleID:   scheduleID,
			MedicationID: medicationID,
			ScheduledAt:  time.Date(2025, 12, 26, 8, 0, 0, 0, time.UTC),
		},
		Status: status,
	}
}

func TestSummarizeCountsAndRate(t *testing.T) {
	medID := uuid.New()
	schedID := uuid.New()
	records := []StatusRecord{
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusSkipped),
		record(medID, schedID, StatusMissed),
	}

	got := Summarize(records)
	if got.Expected != 5 || got.Taken != 3 || got.Skipped != 1 || got.Missed != 1 {
		t.Fatalf("counts = %+v", got)
	}
	// 3 taken over (5 expected - 1 skipped).
	if got.AdherenceRate != 0.75 {
		t.Fatalf("rate = %v, want 0.75", got.AdherenceRate)
	}
}

func TestSummarizeZeroDenominator(t *testing.T) {
	medID := uuid.New()
	schedID := uuid.New()

	cases := []struct {
		name    string
		records []StatusRecord
	}{
		{name: "no_records", records: nil},
		{name: "all_skipped", records: []StatusRecord{
			record(medID, schedID, StatusSkipped),
			record(medID, schedID, StatusSkipped),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Summarize(tc.records)
			if got.AdherenceRate != 0.0 {
				t.Fatalf("rate = %v, want 0.0", got.AdherenceRate)
			}
		})
	}
}

func TestSummarizeRoundsToFourDecimals(t *testing.T) {
	medID := uuid.New()
	schedID := uuid.New()
	records := []StatusRecord{
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusMissed),
		record(medID, schedID, StatusMissed),
	}

	got := Summarize(records)
	if got.AdherenceRate != 0.3333 {
		t.Fatalf("rate = %v, want 0.3333", got.AdherenceRate)
	}
}

func TestSummarizeRateStaysWithinBounds(t *testing.T) {
	medID := uuid.New()
	schedID := uuid.New()
	records := []StatusRecord{
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusSkipped),
	}

	got := Summarize(records)
	if got.AdherenceRate < 0 || got.AdherenceRate > 1 {
		t.Fatalf("rate %v out of [0,1]", got.AdherenceRate)
	}
	if got.AdherenceRate != 1.0 {
		t.Fatalf("rate = %v, want 1.0", got.AdherenceRate)
	}
}

func TestSummarizeByMedicationKeepsFirstSeenOrder(t *testing.T) {
	medA := uuid.New()
	medB := uuid.New()
	schedA := uuid.New()
	schedB := uuid.New()

	records := []StatusRecord{
		record(medA, schedA, StatusTaken),
		record(medB, schedB, StatusMissed),
		record(medA, schedA, StatusSkipped),
	}
	names := map[uuid.UUID]string{medA: "Metformin", medB: "Lisinopril"}

	got := SummarizeByMedication(records, names)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].MedicationName != "Metformin" || got[1].MedicationName != "Lisinopril" {
		t.Fatalf("group order = %q, %q", got[0].MedicationName, got[1].MedicationName)
	}
	if got[0].Expected != 2 || got[0].Taken != 1 || got[0].Skipped != 1 {
		t.Fatalf("metformin counts = %+v", got[0].Summary)
	}
	if got[0].AdherenceRate != 1.0 {
		t.Fatalf("metformin rate = %v, want 1.0", got[0].AdherenceRate)
	}
	if got[1].Expected != 1 || got[1].Missed != 1 || got[1].AdherenceRate != 0.0 {
		t.Fatalf("lisinopril summary = %+v", got[1])
	}
}

func TestSummarizeBySchedule(t *testing.T) {
	medID := uuid.New()
	schedA := uuid.New()
	schedB := uuid.New()

	records := []StatusRecord{
		record(medID, schedA, StatusTaken),
		record(medID, schedB, StatusMissed),
		record(medID, schedA, StatusTaken),
	}

	got := SummarizeBySchedule(records)
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].ScheduleID != schedA || got[1].ScheduleID != schedB {
		t.Fatalf("group order wrong")
	}
	if got[0].Taken != 2 || got[0].AdherenceRate != 1.0 {
		t.Fatalf("schedule A summary = %+v", got[0])
	}
}

func TestSummarizeExcludesPendingFromCounts(t *testing.T) {
	medID := uuid.New()
	schedID := uuid.New()
	records := []StatusRecord{
		record(medID, schedID, StatusTaken),
		record(medID, schedID, StatusPending),
		record(medID, schedID, StatusPending),
	}

	got := Summarize(records)
	if got.Taken != 1 || got.Skipped != 0 || got.Missed != 0 {
		t.Fatalf("counts = %+v", got)
	}
}
