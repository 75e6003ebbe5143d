package adherence

import (
	"math"

	"github.com/google/uuid"
)

// Summary aggregates resolved occurrences. Pending occurrences are not
// counted: they have not resolved yet. The rate denominator excludes
// skips — a skip is a deliberate patient action, not a scheduling
// failure, and is not penalized as a miss.
type Summary struct {
	Expected      int     `json:"expected"`
	Taken         int     `json:"taken"`
	Skipped       int     `json:"skipped"`
	Missed        int     `json:"missed"`
	AdherenceRate float64 `json:"adherence_rate"`
}

func Summarize(records []StatusRecord) Summary {
	var s Summary
	for _, r := range records {
		switch r.Status {
		case StatusTaken:
			s.Taken++
		case StatusSkipped:
			s.Skipped++
		case StatusMissed:
			s.Missed++
		}
	}
	s.Expected = s.Taken + s.Skipped + s.Missed
	denominator := s.Expected - s.Skipped
	if denominator > 0 {
		s.AdherenceRate = roundRate(float64(s.Taken) / float64(denominator))
	}
	return s
}

// roundRate keeps 4 decimal places.
func roundRate(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// MedicationSummary is one breakdown row, labeled with the medication
// name for display.
type MedicationSummary struct {
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	Summary
}

// SummarizeByMedication groups records by medication in first-seen
// order. names supplies display labels; missing entries stay empty.
func SummarizeByMedication(records []StatusRecord, names map[uuid.UUID]string) []MedicationSummary {
	order, grouped := groupRecords(records, func(r StatusRecord) uuid.UUID { return r.MedicationID })
	out := make([]MedicationSummary, 0, len(order))
	for _, id := range order {
		out = append(out, MedicationSummary{
			MedicationID:   id,
			MedicationName: names[id],
			Summary:        Summarize(grouped[id]),
		})
	}
	return out
}

type ScheduleSummary struct {
	ScheduleID   uuid.UUID `json:"schedule_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Summary
}

func SummarizeBySchedule(records []StatusRecord) []ScheduleSummary {
	order, grouped := groupRecords(records, func(r StatusRecord) uuid.UUID { return r.ScheduleID })
	out := make([]ScheduleSummary, 0, len(order))
	for _, id := range order {
		rows := grouped[id]
		out = append(out, ScheduleSummary{
			ScheduleID:   id,
			MedicationID: rows[0].MedicationID,
			Summary:      Summarize(rows),
		})
	}
	return out
}

func groupRecords(records []StatusRecord, key func(StatusRecord) uuid.UUID) ([]uuid.UUID, map[uuid.UUID][]StatusRecord) {
	var order []uuid.UUID
	grouped := make(map[uuid.UUID][]StatusRecord)
	for _, r := range records {
		k := key(r)
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}
	return order, grouped
}
