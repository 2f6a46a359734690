package command

import (
	"strings"
	"time"

	"skej/src-cal/model"
)

// Split a command line into tokens, honoring double quotes so subjects can
// carry spaces: `create event "Team Sync" from ...`.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			if inQuotes {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// Parse a date-plus-time argument in the calendar's zone. Strict layouts are
// tried first; anything else goes through the natural-language parser
// ("next monday 10am").
func (s *Shell) parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	result, err := s.when.Parse(raw, time.Now().In(loc))
	if err == nil && result != nil {
		t := result.Time
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, model.NewValidationError("", "can't understand %q as a date and time", raw)
}

// Parse a date-only argument, normalized to midnight in the calendar's zone.
func (s *Shell) parseDate(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	result, err := s.when.Parse(raw, time.Now().In(loc))
	if err == nil && result != nil {
		t := result.Time
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, model.NewValidationError("", "can't understand %q as a date", raw)
}

// Weekday letters in the classic compact notation: M T W R F S U.
func parseWeekdays(raw string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, r := range strings.ToUpper(raw) {
		switch r {
		case 'M':
			days = append(days, time.Monday)
		case 'T':
			days = append(days, time.Tuesday)
		case 'W':
			days = append(days, time.Wednesday)
		case 'R':
			days = append(days, time.Thursday)
		case 'F':
			days = append(days, time.Friday)
		case 'S':
			days = append(days, time.Saturday)
		case 'U':
			days = append(days, time.Sunday)
		default:
			return nil, model.NewValidationError("", "unknown weekday letter %q (use MTWRFSU)", string(r))
		}
	}
	if len(days) == 0 {
		return nil, model.NewValidationError("", "weekday set is empty")
	}
	return days, nil
}

// The editable event properties, mapped onto a patch.
func (s *Shell) buildPatch(prop, value string, loc *time.Location) (model.EventPatch, error) {
	var patch model.EventPatch
	switch strings.ToLower(prop) {
	case "subject":
		patch.Subject = &value
	case "description":
		patch.Description = &value
	case "location":
		patch.Location = &value
	case "status":
		status, err := model.ParseStatus(value)
		if err != nil {
			return model.EventPatch{}, err
		}
		patch.Status = &status
	case "start":
		t, err := s.parseDateTime(value, loc)
		if err != nil {
			return model.EventPatch{}, err
		}
		patch.Start = &t
	case "end":
		t, err := s.parseDateTime(value, loc)
		if err != nil {
			return model.EventPatch{}, err
		}
		patch.End = &t
	default:
		return model.EventPatch{}, model.NewValidationError("", "unknown property %q (subject, start, end, description, location, status)", prop)
	}
	return patch, nil
}
