package model

import "time"

// EventSelector pinpoints an event by subject (case-insensitive) and start.
// With End set, matching is exact on all three; without it, matching is on
// (subject, start) and must resolve to exactly one event.
type EventSelector struct {
	Subject string
	Start   time.Time
	End     *time.Time
}

// EventPatch is a partial update. Nil fields keep the current value.
type EventPatch struct {
	Subject     *string
	Start       *time.Time
	End         *time.Time
	Description *string
	Location    *string
	Status      *Status
}

// Whether the patch carries a start that actually differs from cur. Only a
// real timing change detaches or splits a series.
func (p EventPatch) MovesStart(cur time.Time) bool {
	return p.Start != nil && !p.Start.Equal(cur)
}

func (p EventPatch) Empty() bool {
	return p.Subject == nil && p.Start == nil && p.End == nil &&
		p.Description == nil && p.Location == nil && p.Status == nil
}

// EditScope selects how far a selector-based edit reaches into a series.
type EditScope int

const (
	// Only the resolved event.
	ScopeSingle EditScope = iota
	// The resolved event and every series member starting at or after it.
	ScopeFollowing
	// Every member of the resolved event's series.
	ScopeEntireSeries
)

func (s EditScope) String() string {
	switch s {
	case ScopeSingle:
		return "single"
	case ScopeFollowing:
		return "following"
	case ScopeEntireSeries:
		return "entire series"
	default:
		return "unknown"
	}
}
