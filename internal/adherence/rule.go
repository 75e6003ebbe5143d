package adherence

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Occurrence statuses produced by the matching pipeline. Taken and
// skipped also appear on intake events; missed and pending are derived.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSkipped Status = "skipped"
	StatusMissed  Status = "missed"
	StatusPending Status = "pending"
)

const (
	TypeDaily    = "daily"
	TypeWeekly   = "weekly"
	TypeInterval = "interval"
)

// FieldError is a field-attributed validation failure, returned by rule
// constructors and the overlap check. It maps 1:1 onto the write path's
// conflict response shape.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ClockTime is a wall-clock HH:MM within some local day.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) before(o ClockTime) bool {
	if c.Hour != o.Hour {
		return c.Hour < o.Hour
	}
	return c.Minute < o.Minute
}

// ParseClockTime accepts strict 24h "HH:MM" only.
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, minute := 0, 0
	for i, r := range s {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return ClockTime{}, fmt.Errorf("invalid time %q, want HH:MM", s)
		}
		d := int(r - '0')
		if i < 2 {
			hour = hour*10 + d
		} else {
			minute = minute*10 + d
		}
	}
	if hour > 23 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q, hour or minute out of range", s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

var weekdayIndex = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// Rule is the recurrence pattern of a schedule, one of DailyRule,
// WeeklyRule or IntervalRule. Construction validates the variant, so a
// Rule in hand is always expandable.
type Rule interface {
	Type() string
	instants(rangeStart, rangeEnd time.Time, loc *time.Location, emit func(time.Time) bool)
}

type DailyRule struct {
	times []ClockTime
}

type WeeklyRule struct {
	times    []ClockTime
	weekdays map[time.Weekday]bool
}

type IntervalRule struct {
	hours int
}

func (DailyRule) Type() string    { return TypeDaily }
func (WeeklyRule) Type() string   { return TypeWeekly }
func (IntervalRule) Type() string { return TypeInterval }

func (r IntervalRule) Hours() int { return r.hours }

// NewDailyRule requires a non-empty list of unique HH:MM strings.
// Times are normalized to ascending clock order.
func NewDailyRule(times []string) (DailyRule, *FieldError) {
	parsed, err := parseTimes(times)
	if err != nil {
		return DailyRule{}, err
	}
	return DailyRule{times: parsed}, nil
}

func NewWeeklyRule(times, weekdays []string) (WeeklyRule, *FieldError) {
	parsed, err := parseTimes(times)
	if err != nil {
		return WeeklyRule{}, err
	}
	if len(weekdays) == 0 {
		return WeeklyRule{}, fieldErr("weekdays", "weekdays must be a non-empty array")
	}
	set := make(map[time.Weekday]bool, len(weekdays))
	for _, raw := range weekdays {
		wd, ok := parseWeekday(raw)
		if !ok {
			return WeeklyRule{}, fieldErr("weekdays", "weekdays must be one of mon, tue, wed, thu, fri, sat, sun")
		}
		if set[wd] {
			return WeeklyRule{}, fieldErr("weekdays", "weekdays must be unique")
		}
		set[wd] = true
	}
	return WeeklyRule{times: parsed, weekdays: set}, nil
}

func NewIntervalRule(hours int) (IntervalRule, *FieldError) {
	if hours < 1 {
		return IntervalRule{}, fieldErr("interval_hours", "interval hours must be an integer of at least 1")
	}
	return IntervalRule{hours: hours}, nil
}

// NewRule validates the full variant shape: exactly the fields the
// recurrence type requires may be present.
func NewRule(recurrenceType string, times, weekdays []string, intervalHours *int) (Rule, *FieldError) {
	switch recurrenceType {
	case TypeDaily:
		if weekdays != nil {
			return nil, fieldErr("weekdays", "weekdays are only allowed for weekly schedules")
		}
		if intervalHours != nil {
			return nil, fieldErr("interval_hours", "interval hours are only allowed for interval schedules")
		}
		return NewDailyRule(times)
	case TypeWeekly:
		if intervalHours != nil {
			return nil, fieldErr("interval_hours", "interval hours are only allowed for interval schedules")
		}
		return NewWeeklyRule(times, weekdays)
	case TypeInterval:
		if times != nil {
			return nil, fieldErr("times", "times are not allowed for interval schedules")
		}
		if weekdays != nil {
			return nil, fieldErr("weekdays", "weekdays are only allowed for weekly schedules")
		}
		if intervalHours == nil {
			return nil, fieldErr("interval_hours", "interval hours is required")
		}
		return NewIntervalRule(*intervalHours)
	default:
		return nil, fieldErr("recurrence_type", "recurrence type must be one of daily, weekly, interval")
	}
}

// LenientRule builds a rule from a stored row, dropping malformed time
// and weekday entries instead of failing, so one corrupt row cannot
// blank a whole report. Returns nil when nothing expandable remains.
func LenientRule(recurrenceType string, times, weekdays []string, intervalHours *int) Rule {
	switch recurrenceType {
	case TypeDaily:
		parsed := lenientTimes(times)
		if len(parsed) == 0 {
			return nil
		}
		return DailyRule{times: parsed}
	case TypeWeekly:
		parsed := lenientTimes(times)
		if len(parsed) == 0 {
			return nil
		}
		set := make(map[time.Weekday]bool)
		for _, raw := range weekdays {
			if wd, ok := parseWeekday(raw); ok {
				set[wd] = true
			}
		}
		if len(set) == 0 {
			return nil
		}
		return WeeklyRule{times: parsed, weekdays: set}
	case TypeInterval:
		if intervalHours == nil || *intervalHours < 1 {
			return nil
		}
		return IntervalRule{hours: *intervalHours}
	default:
		return nil
	}
}

func parseTimes(times []string) ([]ClockTime, *FieldError) {
	if len(times) == 0 {
		return nil, fieldErr("times", "times must be a non-empty array")
	}
	parsed := make([]ClockTime, 0, len(times))
	seen := make(map[ClockTime]bool, len(times))
	for _, raw := range times {
		ct, err := ParseClockTime(raw)
		if err != nil {
			return nil, fieldErr("times", "each time must be in HH:MM format")
		}
		if seen[ct] {
			return nil, fieldErr("times", "times must be unique")
		}
		seen[ct] = true
		parsed = append(parsed, ct)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].before(parsed[j]) })
	return parsed, nil
}

func lenientTimes(times []string) []ClockTime {
	parsed := make([]ClockTime, 0, len(times))
	seen := make(map[ClockTime]bool, len(times))
	for _, raw := range times {
		ct, err := ParseClockTime(raw)
		if err != nil || seen[ct] {
			continue
		}
		seen[ct] = true
		parsed = append(parsed, ct)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].before(parsed[j]) })
	return parsed
}
