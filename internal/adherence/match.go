package adherence

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultTolerance is the grace period after a scheduled instant during
// which a logged intake still counts as on-time for that occurrence.
const DefaultTolerance = 30 * time.Minute

// IntakeEvent is a logged dose action within the matching window.
// Status is taken or skipped; the other statuses are derived.
type IntakeEvent struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	Status     Status
	TakenAt    time.Time
}

// StatusRecord is an occurrence with its resolved status.
type StatusRecord struct {
	Occurrence
	Status Status
}

type intakeSlot struct {
	IntakeEvent
	consumed bool
}

// Match classifies each occurrence, in input order, against the logged
// intakes. For every occurrence the earliest unconsumed intake of the
// same schedule with takenAt inside [scheduledAt, scheduledAt+tolerance]
// wins and contributes its status; an intake is never consumed twice.
// Unmatched occurrences are missed once now is past the window, pending
// before that.
//
// The window starts AT the scheduled instant: an earlier intake can only
// have matched an earlier occurrence.
func Match(occurrences []Occurrence, intakes []IntakeEvent, tolerance time.Duration, now time.Time) []StatusRecord {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	bySchedule := make(map[uuid.UUID][]*intakeSlot)
	for _, in := range intakes {
		bySchedule[in.ScheduleID] = append(bySchedule[in.ScheduleID], &intakeSlot{IntakeEvent: in})
	}
	for _, slots := range bySchedule {
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].TakenAt.Before(slots[j].TakenAt)
		})
	}

	out := make([]StatusRecord, 0, len(occurrences))
	for _, occ := range occurrences {
		windowEnd := occ.ScheduledAt.Add(tolerance)

		var matched *intakeSlot
		for _, slot := range bySchedule[occ.ScheduleID] {
			if slot.consumed {
				continue
			}
			if slot.TakenAt.Before(occ.ScheduledAt) {
				continue
			}
			if !slot.TakenAt.After(windowEnd) {
				slot.consumed = true
				matched = slot
				break
			}
		}

		status := StatusPending
		switch {
		case matched != nil:
			status = matched.Status
		case now.After(windowEnd):
			status = StatusMissed
		}
		out = append(out, StatusRecord{Occurrence: occ, Status: status})
	}
	return out
}
