package adherence

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CandidateSchedule is the overlap check's view of a schedule: raw field
// values as submitted or stored, before rule construction.
type CandidateSchedule struct {
	ID             uuid.UUID
	RecurrenceType string
	Times          []string
	Weekdays       []string
	IsActive       bool
}

// CheckOverlap rejects a candidate whose normalized time set collides
// with an existing active schedule of the same medication and
// recurrence type. For weekly schedules equal time sets conflict only
// when the weekday sets intersect; for daily, equal time sets alone
// conflict. Interval-type and inactive candidates are exempt.
// excludeID skips the schedule being updated. Returns nil when the
// candidate is acceptable, or the first conflict found.
func CheckOverlap(candidate CandidateSchedule, existing []CandidateSchedule, excludeID uuid.UUID) *FieldError {
	if candidate.RecurrenceType == TypeInterval || !candidate.IsActive {
		return nil
	}

	candTimes := normalizeTimes(candidate.Times)
	if len(candTimes) == 0 {
		return nil
	}
	candWeekdays := normalizeWeekdays(candidate.Weekdays)

	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if !other.IsActive || other.RecurrenceType != candidate.RecurrenceType {
			continue
		}
		if !equalStrings(normalizeTimes(other.Times), candTimes) {
			continue
		}
		if candidate.RecurrenceType == TypeWeekly {
			if intersects(candWeekdays, normalizeWeekdays(other.Weekdays)) {
				return fieldErr("weekdays", "overlapping weekly schedules are not allowed")
			}
			continue
		}
		return fieldErr("times", "overlapping schedules with identical times are not allowed")
	}
	return nil
}

func normalizeTimes(times []string) []string {
	return sortedUnique(times, func(s string) string { return s })
}

func normalizeWeekdays(weekdays []string) []string {
	return sortedUnique(weekdays, strings.ToLower)
}

func sortedUnique(values []string, canon func(string) string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		c := canon(v)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}
