package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RecurrenceRule is a weekly repetition rule: a non-empty weekday set bounded
// by exactly one of a fixed occurrence count or an inclusive end date.
// Immutable; both constructors reject anything that breaks that shape.
type RecurrenceRule struct {
	weekdays []time.Weekday // sorted, deduplicated
	count    int            // > 0 iff count-bounded
	until    time.Time      // non-zero iff until-bounded
}

// Build a rule that stops after count occurrences.
func NewCountRule(weekdays []time.Weekday, count int) (RecurrenceRule, error) {
	days, err := normalizeWeekdays(weekdays)
	if err != nil {
		return RecurrenceRule{}, err
	}
	if count <= 0 {
		return RecurrenceRule{}, NewValidationError("", "NewCountRule: count must be positive, got %d", count)
	}
	return RecurrenceRule{weekdays: days, count: count}, nil
}

// Build a rule that stops at the inclusive end date. Only until's date part
// is significant.
func NewUntilRule(weekdays []time.Weekday, until time.Time) (RecurrenceRule, error) {
	days, err := normalizeWeekdays(weekdays)
	if err != nil {
		return RecurrenceRule{}, err
	}
	if until.IsZero() {
		return RecurrenceRule{}, NewValidationError("", "NewUntilRule: until date is zero")
	}
	return RecurrenceRule{weekdays: days, until: until}, nil
}

func normalizeWeekdays(weekdays []time.Weekday) ([]time.Weekday, error) {
	if len(weekdays) == 0 {
		return nil, NewValidationError("", "RecurrenceRule: weekday set is empty")
	}
	seen := make(map[time.Weekday]struct{}, len(weekdays))
	var days []time.Weekday
	for _, d := range weekdays {
		if d < time.Sunday || d > time.Saturday {
			return nil, NewValidationError("", "RecurrenceRule: invalid weekday %d", d)
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// The wanted weekdays, sorted Sunday-first. The returned slice is a copy.
func (r RecurrenceRule) Weekdays() []time.Weekday {
	out := make([]time.Weekday, len(r.weekdays))
	copy(out, r.weekdays)
	return out
}

func (r RecurrenceRule) OnWeekday(d time.Weekday) bool {
	for _, want := range r.weekdays {
		if want == d {
			return true
		}
	}
	return false
}

// Count returns the occurrence bound, or false for until-bounded rules.
func (r RecurrenceRule) Count() (int, bool) {
	return r.count, r.count > 0
}

// Until returns the inclusive end date, or false for count-bounded rules.
func (r RecurrenceRule) Until() (time.Time, bool) {
	return r.until, !r.until.IsZero()
}

func (r RecurrenceRule) String() string {
	var sb strings.Builder
	sb.WriteString("every ")
	for i, d := range r.weekdays {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(d.String()[:3])
	}
	if r.count > 0 {
		fmt.Fprintf(&sb, " for %d times", r.count)
		return sb.String()
	}
	fmt.Fprintf(&sb, " until %s", r.until.Format("2006-01-02"))
	return sb.String()
}
