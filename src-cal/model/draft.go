package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with no date attached, used for the all-day
// window policy and for series time templates.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Parse a "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, NewValidationError("", "ParseTimeOfDay: %q is not HH:MM", s)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, NewValidationError("", "ParseTimeOfDay: %q is out of range", s)
	}
	return t, nil
}

// Pin the time of day onto a concrete date in the given location.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Policy is the engine's construction-time configuration: how a date-only
// draft becomes a concrete window, and which visibility new events get when
// the draft leaves it blank.
type Policy struct {
	AllDayStart   TimeOfDay
	AllDayEnd     TimeOfDay
	DefaultStatus Status
}

// DefaultPolicy matches the classic calendar defaults: 08:00-17:00, public.
func DefaultPolicy() Policy {
	return Policy{
		AllDayStart:   TimeOfDay{Hour: 8},
		AllDayEnd:     TimeOfDay{Hour: 17},
		DefaultStatus: StatusPublic,
	}
}

func (p Policy) Validate() error {
	if !p.AllDayStart.Before(p.AllDayEnd) {
		return NewValidationError("", "Policy: all-day window start %s is not before end %s", p.AllDayStart, p.AllDayEnd)
	}
	switch p.DefaultStatus {
	case StatusPublic, StatusPrivate:
		return nil
	default:
		return NewValidationError("", "Policy: unknown default status %q", p.DefaultStatus)
	}
}

// EventDraft is the input to a single-event create. Exactly one of Start or
// AllDayDate must be set; with End absent the draft collapses to the policy's
// all-day window on the start's date.
type EventDraft struct {
	Subject     string
	Start       time.Time
	End         time.Time
	AllDayDate  time.Time
	Description string
	Location    string
	Status      Status // zero value means "use the policy default"
}

// SeriesDraft is the input to a recurring-block create. StartTime/EndTime are
// required for timed series and ignored for all-day ones.
type SeriesDraft struct {
	Subject     string
	AllDay      bool
	StartDate   time.Time
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	Rule        RecurrenceRule
	Description string
	Location    string
	Status      Status
}
