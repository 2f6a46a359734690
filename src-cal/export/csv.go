// Package export writes one-shot snapshots of a calendar: CSV in the shape
// Google Calendar imports, iCalendar, and a SQLite file. Exporters only read
// engine snapshots; they never feed anything back into the engine.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"skej/src-cal/engine"
	"skej/src-cal/model"
)

var csvHeader = []string{
	"Subject", "Start Date", "Start Time", "End Date", "End Time",
	"All Day Event", "Description", "Location", "Private",
}

// CSV writes every event of the calendar, sorted by start, with dates and
// times read in the calendar's own zone.
func CSV(w io.Writer, eng *engine.Engine) error {
	loc := eng.Location()
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export.CSV: can't write header: %w", err)
	}
	for _, ev := range eng.AllEvents() {
		start := ev.Start().In(loc)
		end := ev.End().In(loc)
		if err := cw.Write([]string{
			ev.Subject(),
			start.Format("01/02/2006"),
			start.Format("03:04 PM"),
			end.Format("01/02/2006"),
			end.Format("03:04 PM"),
			"False",
			ev.Description(),
			ev.Location(),
			boolStr(ev.Status() == model.StatusPrivate),
		}); err != nil {
			return fmt.Errorf("export.CSV: can't write row for %q: %w", ev.Subject(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
