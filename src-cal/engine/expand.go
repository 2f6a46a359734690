package engine

import (
	"fmt"
	"time"

	"skej/src-cal/model"
)

// Truncate an instant to midnight of its date in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// The first date on or after `from` that falls on the wanted weekday.
func firstOnOrAfter(from time.Time, weekday time.Weekday) time.Time {
	offset := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// expandRecurrence turns a start date plus rule into the ordered concrete
// dates of the series, all at midnight in loc.
//
// Count-bounded rules walk a multi-way merge: each wanted weekday contributes
// its next pending occurrence, the earliest across all weekdays is drawn and
// that weekday re-arms one week later, until count dates came out.
// Until-bounded rules scan day by day through the inclusive end date. Both
// walks emit identical dates for the same effective parameters.
func expandRecurrence(startDate time.Time, rule model.RecurrenceRule, loc *time.Location) ([]time.Time, error) {
	start := midnight(startDate, loc)

	if count, ok := rule.Count(); ok {
		next := make(map[time.Weekday]time.Time)
		for _, d := range rule.Weekdays() {
			next[d] = firstOnOrAfter(start, d)
		}
		if len(next) == 0 {
			// unreachable while RecurrenceRule rejects empty weekday sets
			return nil, fmt.Errorf("expandRecurrence: no candidate dates for rule %s", rule)
		}
		dates := make([]time.Time, 0, count)
		for len(dates) < count {
			var earliest time.Time
			var earliestDay time.Weekday
			for d, candidate := range next {
				if earliest.IsZero() || candidate.Before(earliest) {
					earliest = candidate
					earliestDay = d
				}
			}
			dates = append(dates, earliest)
			next[earliestDay] = earliest.AddDate(0, 0, 7)
		}
		return dates, nil
	}

	until, ok := rule.Until()
	if !ok {
		return nil, fmt.Errorf("expandRecurrence: rule %s has neither count nor until", rule)
	}
	last := midnight(until, loc)
	if last.Before(start) {
		return nil, model.NewValidationError("", "expandRecurrence: until date %s is before the start date", until.Format("2006-01-02"))
	}
	var dates []time.Time
	for day := start; !day.After(last); day = day.AddDate(0, 0, 1) {
		if rule.OnWeekday(day.Weekday()) {
			dates = append(dates, day)
		}
	}
	return dates, nil
}
