package engine

import (
	"skej/src-cal/model"
	"skej/src-cal/utils"
)

// resolve is the selector lookup. Callers hold the lock.
func (e *Engine) resolve(sel model.EventSelector) (model.Event, error) {
	subject := utils.NormalizeSubject(sel.Subject)
	if subject == "" {
		return model.Event{}, model.NewValidationError(sel.Subject, "Engine.resolve: selector subject is blank")
	}
	if sel.Start.IsZero() {
		return model.Event{}, model.NewValidationError(sel.Subject, "Engine.resolve: selector start is zero")
	}

	var matches []model.Event
	for _, ev := range e.events {
		if utils.NormalizeSubject(ev.Subject()) != subject {
			continue
		}
		if !ev.Start().Equal(sel.Start) {
			continue
		}
		if sel.End != nil && !ev.End().Equal(*sel.End) {
			continue
		}
		matches = append(matches, ev)
	}

	switch {
	case len(matches) == 0:
		return model.Event{}, model.NewNotFoundError(sel.Subject, "no event matches the selector")
	case len(matches) > 1 && sel.End == nil:
		return model.Event{}, model.NewAmbiguousError(sel.Subject, "%d events share this subject and start; supply an end time to disambiguate", len(matches))
	case len(matches) > 1:
		// unreachable: (subject, start, end) is unique by construction
		return model.Event{}, model.NewAmbiguousError(sel.Subject, "%d events share this subject, start and end", len(matches))
	}
	return matches[0], nil
}
