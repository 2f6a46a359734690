package engine

import (
	"errors"
	"fmt"
	"time"

	"skej/src-cal/model"
)

// Copier replays events from a source calendar into a target calendar,
// translating timestamps between the two zones. It holds no lock of its own:
// it reads through the source's public snapshot methods and issues ordinary
// creates against the target, so each individual create is atomic under the
// target's lock but a whole batch is not.
type Copier struct {
	src *Engine
	dst *Engine
}

func NewCopier(src, dst *Engine) (*Copier, error) {
	if src == nil || dst == nil {
		return nil, model.NewValidationError("", "NewCopier: source and target calendars are required")
	}
	return &Copier{src: src, dst: dst}, nil
}

// CopyEvent copies the single source event with the given subject and start
// to the caller-supplied target start. The target start is taken at face
// value in the target calendar; only the source duration carries over.
func (c *Copier) CopyEvent(subject string, start, targetStart time.Time) error {
	ev, err := c.src.Resolve(model.EventSelector{Subject: subject, Start: start})
	if err != nil {
		return err
	}
	if targetStart.IsZero() {
		return model.NewValidationError(subject, "Copier.CopyEvent: target start is zero")
	}
	_, err = c.dst.Create(model.EventDraft{
		Subject:     ev.Subject(),
		Start:       targetStart,
		End:         targetStart.Add(ev.Duration()),
		Description: ev.Description(),
		Location:    ev.Location(),
		Status:      ev.Status(),
	})
	if err != nil {
		return fmt.Errorf("Copier.CopyEvent: can't replay %q: %w", ev.Subject(), err)
	}
	return nil
}

// CopyEventsOn copies every source event on the given date to the target
// date. Start and end are re-read in the target zone (same instant, different
// wall clock), then shifted by whole days so that the source date's events
// land on the target date. A conflicting event skips only itself; the
// collected errors name each offending subject.
func (c *Copier) CopyEventsOn(date, targetDate time.Time) error {
	events := c.src.EventsOn(date)
	return c.replay(events, daysBetween(date, targetDate))
}

// CopyEventsBetween copies every source event overlapping the inclusive
// [from, to] date range, with the day shift anchored so that events on the
// `from` date land on the target date.
func (c *Copier) CopyEventsBetween(from, to, targetDate time.Time) error {
	srcLoc := c.src.Location()
	events, err := c.src.EventsOverlapping(
		midnight(from, srcLoc),
		midnight(to, srcLoc).AddDate(0, 0, 1),
	)
	if err != nil {
		return err
	}
	return c.replay(events, daysBetween(from, targetDate))
}

func (c *Copier) replay(events []model.Event, dayOffset int) error {
	dstLoc := c.dst.Location()
	var errs []error
	for _, ev := range events {
		start := ev.Start().In(dstLoc).AddDate(0, 0, dayOffset)
		end := ev.End().In(dstLoc).AddDate(0, 0, dayOffset)
		if _, err := c.dst.Create(model.EventDraft{
			Subject:     ev.Subject(),
			Start:       start,
			End:         end,
			Description: ev.Description(),
			Location:    ev.Location(),
			Status:      ev.Status(),
		}); err != nil {
			errs = append(errs, fmt.Errorf("can't copy %q: %w", ev.Subject(), err))
		}
	}
	return errors.Join(errs...)
}

// Whole calendar days from a's date to b's date, ignoring zones and clocks.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
