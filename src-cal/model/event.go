package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	// EventID is the opaque identity of one stored event. Two Events are the
	// same event iff their IDs are equal, regardless of field values.
	EventID string

	// SeriesToken groups the events created from one recurrence expansion.
	SeriesToken string
)

func NewEventID() EventID {
	return EventID(uuid.NewString())
}

func NewSeriesToken() SeriesToken {
	return SeriesToken(uuid.NewString())
}

type Status string

const (
	StatusPublic  Status = "public"
	StatusPrivate Status = "private"
)

// Parse a visibility status from user input, case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return StatusPublic, nil
	case "private":
		return StatusPrivate, nil
	default:
		return "", NewValidationError(s, "ParseStatus: status must be public or private")
	}
}

// One calendar entry. Immutable; "edits" build a replacement value carrying
// the same EventID.
type Event struct {
	id          EventID
	subject     string
	start       time.Time
	end         time.Time
	description string
	location    string
	status      Status
}

// Build a validated Event. The id is kept as-is so that a patched rebuild can
// preserve identity across the swap.
func NewEvent(
	id EventID,
	subject string,
	start time.Time,
	end time.Time,
	description string,
	location string,
	status Status,
) (Event, error) {
	switch {
	case id == "":
		return Event{}, NewValidationError(subject, "NewEvent: id is blank")
	case strings.TrimSpace(subject) == "":
		return Event{}, NewValidationError(subject, "NewEvent: subject is blank")
	case start.IsZero():
		return Event{}, NewValidationError(subject, "NewEvent: start is zero")
	case !end.After(start):
		return Event{}, NewValidationError(subject, "NewEvent: end must be after start")
	}
	switch status {
	case StatusPublic, StatusPrivate:
	default:
		return Event{}, NewValidationError(subject, "NewEvent: unknown status %q", status)
	}
	return Event{
		id:          id,
		subject:     subject,
		start:       start,
		end:         end,
		description: description,
		location:    location,
		status:      status,
	}, nil
}

func (e Event) ID() EventID { return e.id }

func (e Event) Subject() string { return e.subject }

func (e Event) Start() time.Time { return e.start }

func (e Event) End() time.Time { return e.end }

func (e Event) Description() string { return e.description }

func (e Event) Location() string { return e.location }

func (e Event) Status() Status { return e.status }

func (e Event) Duration() time.Duration {
	return e.end.Sub(e.start)
}

// Whether the instant falls inside the event's half-open [start, end) window.
func (e Event) Covers(at time.Time) bool {
	return !at.Before(e.start) && at.Before(e.end)
}
