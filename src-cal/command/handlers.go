package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"skej/src-cal/engine"
	"skej/src-cal/export"
	"skej/src-cal/model"
)

// Collect `--flag value` pairs. Unknown flags are rejected against allowed.
func parseFlags(args []string, allowed ...string) (map[string]string, []string, error) {
	ok := func(name string) bool {
		for _, a := range allowed {
			if a == name {
				return true
			}
		}
		return false
	}
	flags := make(map[string]string)
	var rest []string
	for i := 0; i < len(args); i++ {
		if len(args[i]) > 2 && args[i][:2] == "--" {
			name := args[i][2:]
			if !ok(name) {
				return nil, nil, fmt.Errorf("unknown flag --%s", name)
			}
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("flag --%s needs a value", name)
			}
			flags[name] = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return flags, rest, nil
}

func (s *Shell) createCalendar(args []string) error {
	flags, _, err := parseFlags(args, "name", "timezone")
	if err != nil {
		return err
	}
	if flags["name"] == "" || flags["timezone"] == "" {
		return fmt.Errorf("usage: create calendar --name NAME --timezone ZONE")
	}
	if err := s.reg.Create(flags["name"], flags["timezone"]); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "created calendar %q (%s)\n", flags["name"], flags["timezone"])
	return nil
}

func (s *Shell) editCalendar(args []string) error {
	flags, rest, err := parseFlags(args, "name", "property")
	if err != nil {
		return err
	}
	if flags["name"] == "" || flags["property"] == "" || len(rest) != 1 {
		return fmt.Errorf("usage: edit calendar --name NAME --property name|timezone VALUE")
	}
	switch flags["property"] {
	case "name":
		return s.reg.Rename(flags["name"], rest[0])
	case "timezone":
		return s.reg.Retime(flags["name"], rest[0])
	default:
		return fmt.Errorf("unknown calendar property %q", flags["property"])
	}
}

func (s *Shell) useCalendar(args []string) error {
	if len(args) < 1 || args[0] != "calendar" {
		return fmt.Errorf("usage: use calendar --name NAME")
	}
	flags, _, err := parseFlags(args[1:], "name")
	if err != nil {
		return err
	}
	if flags["name"] == "" {
		return fmt.Errorf("usage: use calendar --name NAME")
	}
	return s.reg.Use(flags["name"])
}

func (s *Shell) listCalendars(args []string) error {
	if len(args) != 1 || args[0] != "calendars" {
		return fmt.Errorf("usage: list calendars")
	}
	for _, name := range s.reg.Names() {
		eng, err := s.reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s (%s)\n", name, eng.Location())
	}
	return nil
}

// create event SUBJECT from DT to DT [repeats DAYS for N times|until DATE]
// create event SUBJECT on DATE [repeats DAYS for N times|until DATE]
func (s *Shell) createEvent(args []string) error {
	eng, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	loc := eng.Location()
	if len(args) < 3 {
		return fmt.Errorf("usage: create event SUBJECT from DT to DT | on DATE [repeats ...]")
	}
	subject := args[0]
	rest := args[1:]

	var start, end, allDayDate time.Time
	var i int
	switch rest[0] {
	case "from":
		if len(rest) < 4 || rest[2] != "to" {
			return fmt.Errorf("usage: create event SUBJECT from DT to DT")
		}
		if start, err = s.parseDateTime(rest[1], loc); err != nil {
			return err
		}
		if end, err = s.parseDateTime(rest[3], loc); err != nil {
			return err
		}
		i = 4
	case "on":
		if len(rest) < 2 {
			return fmt.Errorf("usage: create event SUBJECT on DATE")
		}
		if allDayDate, err = s.parseDate(rest[1], loc); err != nil {
			return err
		}
		i = 2
	default:
		return fmt.Errorf("expected `from` or `on`, got %q", rest[0])
	}

	if i >= len(rest) {
		// plain single event
		id, err := eng.Create(model.EventDraft{
			Subject:    subject,
			Start:      start,
			End:        end,
			AllDayDate: allDayDate,
		})
		if err != nil {
			return err
		}
		s.counters.EventsCreated.Inc()
		fmt.Fprintf(s.out, "created event %q (%s)\n", subject, id)
		return nil
	}

	if rest[i] != "repeats" {
		return fmt.Errorf("expected `repeats`, got %q", rest[i])
	}
	rule, err := s.parseRepeats(rest[i+1:], loc)
	if err != nil {
		return err
	}

	draft := model.SeriesDraft{Subject: subject, Rule: rule}
	if !allDayDate.IsZero() {
		draft.AllDay = true
		draft.StartDate = allDayDate
	} else {
		sy, sm, sd := start.In(loc).Date()
		ey, em, ed := end.In(loc).Date()
		if sy != ey || sm != em || sd != ed {
			return model.NewValidationError(subject, "a repeating event must start and end on the same day")
		}
		draft.StartDate = start
		draft.StartTime = model.TimeOfDay{Hour: start.In(loc).Hour(), Minute: start.In(loc).Minute()}
		draft.EndTime = model.TimeOfDay{Hour: end.In(loc).Hour(), Minute: end.In(loc).Minute()}
	}

	token, err := eng.CreateSeries(draft)
	if err != nil {
		return err
	}
	s.counters.SeriesCreated.Inc()
	fmt.Fprintf(s.out, "created series %q (%s)\n", subject, token)
	return nil
}

// DAYS for N times | DAYS until DATE
func (s *Shell) parseRepeats(args []string, loc *time.Location) (model.RecurrenceRule, error) {
	if len(args) < 3 {
		return model.RecurrenceRule{}, fmt.Errorf("usage: repeats DAYS for N times | repeats DAYS until DATE")
	}
	days, err := parseWeekdays(args[0])
	if err != nil {
		return model.RecurrenceRule{}, err
	}
	switch args[1] {
	case "for":
		if len(args) < 4 || args[3] != "times" {
			return model.RecurrenceRule{}, fmt.Errorf("usage: repeats DAYS for N times")
		}
		count, err := strconv.Atoi(args[2])
		if err != nil {
			return model.RecurrenceRule{}, model.NewValidationError("", "%q is not a number of occurrences", args[2])
		}
		return model.NewCountRule(days, count)
	case "until":
		until, err := s.parseDate(args[2], loc)
		if err != nil {
			return model.RecurrenceRule{}, err
		}
		return model.NewUntilRule(days, until)
	default:
		return model.RecurrenceRule{}, fmt.Errorf("expected `for` or `until`, got %q", args[1])
	}
}

// edit event  PROP SUBJECT from DT to DT with VALUE   (single instance)
// edit events PROP SUBJECT from DT with VALUE         (this and following)
// edit series PROP SUBJECT from DT with VALUE         (entire series)
func (s *Shell) editEvents(kind string, args []string) error {
	eng, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	loc := eng.Location()
	if len(args) < 5 || args[2] != "from" {
		return fmt.Errorf("usage: edit %s PROP SUBJECT from DT [to DT] with VALUE", kind)
	}
	prop, subject := args[0], args[1]
	start, err := s.parseDateTime(args[3], loc)
	if err != nil {
		return err
	}

	i := 4
	var end *time.Time
	if i < len(args) && args[i] == "to" {
		if i+1 >= len(args) {
			return fmt.Errorf("`to` needs a date and time")
		}
		t, err := s.parseDateTime(args[i+1], loc)
		if err != nil {
			return err
		}
		end = &t
		i += 2
	}
	if i+1 >= len(args) || args[i] != "with" {
		return fmt.Errorf("usage: edit %s PROP SUBJECT from DT [to DT] with VALUE", kind)
	}
	value := args[i+1]

	patch, err := s.buildPatch(prop, value, loc)
	if err != nil {
		return err
	}
	scope := map[string]model.EditScope{
		"event":  model.ScopeSingle,
		"events": model.ScopeFollowing,
		"series": model.ScopeEntireSeries,
	}[kind]

	if err := eng.UpdateBySelector(model.EventSelector{Subject: subject, Start: start, End: end}, patch, scope); err != nil {
		return err
	}
	s.counters.Updates.Inc()
	fmt.Fprintf(s.out, "edited %s of %q\n", prop, subject)
	return nil
}

// print events on DATE | print events from DT to DT
func (s *Shell) printEvents(args []string) error {
	eng, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	loc := eng.Location()
	if len(args) < 3 || args[0] != "events" {
		return fmt.Errorf("usage: print events on DATE | print events from DT to DT")
	}

	var events []model.Event
	switch args[1] {
	case "on":
		date, err := s.parseDate(args[2], loc)
		if err != nil {
			return err
		}
		events = eng.EventsOn(date)
	case "from":
		if len(args) < 5 || args[3] != "to" {
			return fmt.Errorf("usage: print events from DT to DT")
		}
		from, err := s.parseDateTime(args[2], loc)
		if err != nil {
			return err
		}
		to, err := s.parseDateTime(args[4], loc)
		if err != nil {
			return err
		}
		if events, err = eng.EventsOverlapping(from, to); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected `on` or `from`, got %q", args[1])
	}

	if len(events) == 0 {
		fmt.Fprintln(s.out, "no events")
		return nil
	}
	for _, ev := range events {
		line := fmt.Sprintf("* %s: %s -> %s",
			ev.Subject(),
			ev.Start().In(loc).Format("2006-01-02 15:04"),
			ev.End().In(loc).Format("2006-01-02 15:04"))
		if ev.Location() != "" {
			line += " @ " + ev.Location()
		}
		fmt.Fprintln(s.out, line)
	}
	return nil
}

// show status on DT
func (s *Shell) showStatus(args []string) error {
	eng, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	if len(args) != 3 || args[0] != "status" || args[1] != "on" {
		return fmt.Errorf("usage: show status on DT")
	}
	at, err := s.parseDateTime(args[2], eng.Location())
	if err != nil {
		return err
	}
	if eng.StatusAt(at) {
		fmt.Fprintln(s.out, "busy")
	} else {
		fmt.Fprintln(s.out, "available")
	}
	return nil
}

// copy event SUBJECT on DT --target CAL to DT
func (s *Shell) copyEvent(args []string) error {
	src, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	flags, rest, err := parseFlags(args, "target")
	if err != nil {
		return err
	}
	if flags["target"] == "" || len(rest) != 5 || rest[1] != "on" || rest[3] != "to" {
		return fmt.Errorf("usage: copy event SUBJECT on DT --target CAL to DT")
	}
	dst, err := s.reg.Get(flags["target"])
	if err != nil {
		return err
	}
	start, err := s.parseDateTime(rest[2], src.Location())
	if err != nil {
		return err
	}
	targetStart, err := s.parseDateTime(rest[4], dst.Location())
	if err != nil {
		return err
	}
	copier, err := engine.NewCopier(src, dst)
	if err != nil {
		return err
	}
	if err := copier.CopyEvent(rest[0], start, targetStart); err != nil {
		return err
	}
	s.counters.Copies.Inc()
	fmt.Fprintf(s.out, "copied %q to %s\n", rest[0], flags["target"])
	return nil
}

// copy events on DATE --target CAL to DATE
// copy events between DATE and DATE --target CAL to DATE
func (s *Shell) copyEvents(args []string) error {
	src, _, err := s.reg.Active()
	if err != nil {
		return err
	}
	flags, rest, err := parseFlags(args, "target")
	if err != nil {
		return err
	}
	if flags["target"] == "" || len(rest) < 4 {
		return fmt.Errorf("usage: copy events on DATE --target CAL to DATE | copy events between DATE and DATE --target CAL to DATE")
	}
	dst, err := s.reg.Get(flags["target"])
	if err != nil {
		return err
	}
	copier, err := engine.NewCopier(src, dst)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "on":
		if rest[2] != "to" {
			return fmt.Errorf("usage: copy events on DATE --target CAL to DATE")
		}
		date, err := s.parseDate(rest[1], src.Location())
		if err != nil {
			return err
		}
		targetDate, err := s.parseDate(rest[3], dst.Location())
		if err != nil {
			return err
		}
		if err := copier.CopyEventsOn(date, targetDate); err != nil {
			return err
		}
	case "between":
		if len(rest) != 6 || rest[2] != "and" || rest[4] != "to" {
			return fmt.Errorf("usage: copy events between DATE and DATE --target CAL to DATE")
		}
		from, err := s.parseDate(rest[1], src.Location())
		if err != nil {
			return err
		}
		to, err := s.parseDate(rest[3], src.Location())
		if err != nil {
			return err
		}
		targetDate, err := s.parseDate(rest[5], dst.Location())
		if err != nil {
			return err
		}
		if err := copier.CopyEventsBetween(from, to, targetDate); err != nil {
			return err
		}
	default:
		return fmt.Errorf("expected `on` or `between`, got %q", rest[0])
	}
	s.counters.Copies.Inc()
	fmt.Fprintf(s.out, "copied events to %s\n", flags["target"])
	return nil
}

// export csv FILE | export ics FILE | export sqlite FILE
func (s *Shell) export(args []string) error {
	eng, name, err := s.reg.Active()
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: export csv|ics|sqlite FILE")
	}
	format, path := args[0], args[1]

	if format == "sqlite" {
		if err := export.SQLite(context.Background(), eng, path); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "exported %q to %s\n", name, path)
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create %q: %w", path, err)
	}
	defer file.Close()
	switch format {
	case "csv":
		err = export.CSV(file, eng)
	case "ics":
		err = export.ICal(file, eng)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "exported %q to %s\n", name, path)
	return nil
}
