package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xyedo/rrule"

	"skej/src-cal/engine"
	"skej/src-cal/model"
)

// ICal writes the calendar as an iCalendar stream. Series whose members
// still share one time template collapse to a single master VEVENT carrying
// an RRULE; everything else (standalone events, series broken apart by
// per-member edits) is written as individual VEVENTs.
func ICal(w io.Writer, eng *engine.Engine) error {
	loc := eng.Location()

	var singles []model.Event
	groups := make(map[model.SeriesToken][]model.Event)
	var groupOrder []model.SeriesToken
	for _, ev := range eng.AllEvents() {
		token, ok := eng.SeriesOf(ev.ID())
		if !ok {
			singles = append(singles, ev)
			continue
		}
		if _, seen := groups[token]; !seen {
			groupOrder = append(groupOrder, token)
		}
		groups[token] = append(groups[token], ev)
	}

	var sb strings.Builder
	writeLine(&sb, "BEGIN:VCALENDAR")
	writeLine(&sb, "VERSION:2.0")
	writeLine(&sb, "PRODID:-//skej//calendar//EN")

	for _, ev := range singles {
		writeEvent(&sb, ev, "")
	}
	for _, token := range groupOrder {
		members := groups[token]
		if rule, ok := seriesRule(members, loc); ok {
			writeEvent(&sb, members[0], rule)
			continue
		}
		for _, ev := range members {
			writeEvent(&sb, ev, "")
		}
	}

	writeLine(&sb, "END:VCALENDAR")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("export.ICal: %w", err)
	}
	return nil
}

// seriesRule rebuilds the weekly RRULE for a series whose members all share
// the first member's time-of-day and duration. Members are in start order.
func seriesRule(members []model.Event, loc *time.Location) (string, bool) {
	if len(members) < 2 {
		return "", false
	}
	first := members[0].Start().In(loc)
	duration := members[0].Duration()
	var weekdays []rrule.Weekday
	seen := make(map[time.Weekday]struct{})
	for _, ev := range members {
		start := ev.Start().In(loc)
		if start.Hour() != first.Hour() || start.Minute() != first.Minute() || ev.Duration() != duration {
			return "", false
		}
		if ev.Subject() != members[0].Subject() {
			return "", false
		}
		if _, ok := seen[start.Weekday()]; !ok {
			seen[start.Weekday()] = struct{}{}
			weekdays = append(weekdays, rruleWeekday(start.Weekday()))
		}
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first,
		Count:     len(members),
		Byweekday: weekdays,
	})
	if err != nil {
		return "", false
	}
	return r.String(), true
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}

func writeEvent(sb *strings.Builder, ev model.Event, rule string) {
	writeLine(sb, "BEGIN:VEVENT")
	writeLine(sb, "UID:"+string(ev.ID()))
	writeLine(sb, "DTSTAMP:"+time.Now().UTC().Format("20060102T150405Z"))
	writeLine(sb, "DTSTART:"+ev.Start().UTC().Format("20060102T150405Z"))
	writeLine(sb, "DTEND:"+ev.End().UTC().Format("20060102T150405Z"))
	writeLine(sb, "SUMMARY:"+escapeText(ev.Subject()))
	if rule != "" {
		writeLine(sb, "RRULE:"+rule)
	}
	if ev.Description() != "" {
		writeLine(sb, "DESCRIPTION:"+escapeText(ev.Description()))
	}
	if ev.Location() != "" {
		writeLine(sb, "LOCATION:"+escapeText(ev.Location()))
	}
	switch ev.Status() {
	case model.StatusPrivate:
		writeLine(sb, "CLASS:PRIVATE")
	default:
		writeLine(sb, "CLASS:PUBLIC")
	}
	writeLine(sb, "END:VEVENT")
}

// Fold content lines at 75 octets with a space continuation, per RFC 5545.
func writeLine(sb *strings.Builder, line string) {
	for len(line) > 75 {
		sb.WriteString(line[:75])
		sb.WriteString("\r\n ")
		line = line[75:]
	}
	sb.WriteString(line)
	sb.WriteString("\r\n")
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
