package engine

import (
	"sort"
	"sync"
	"time"

	"skej/src-cal/model"
)

// Engine is one calendar: the authoritative event table plus the uniqueness
// and series indexes, all mutated as a unit under a single coarse lock. Every
// public method runs to completion inside that critical section; nothing is
// asynchronous and nothing blocks on anything but the lock itself.
type Engine struct {
	mu     sync.Mutex
	loc    *time.Location
	policy model.Policy

	events map[model.EventID]model.Event
	unique *uniquenessIndex
	series *seriesIndex
}

// New builds an empty calendar in the given location. A nil loc falls back to
// time.Local. The policy is fixed for the engine's lifetime.
func New(loc *time.Location, policy model.Policy) (*Engine, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		loc:    loc,
		policy: policy,
		events: make(map[model.EventID]model.Event),
		unique: newUniquenessIndex(),
		series: newSeriesIndex(),
	}, nil
}

func (e *Engine) Location() *time.Location {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loc
}

// SetLocation re-homes the calendar to a new zone. Stored instants do not
// move; only day boundaries and copy conversions change their reading.
func (e *Engine) SetLocation(loc *time.Location) error {
	if loc == nil {
		return model.NewValidationError("", "Engine.SetLocation: location is nil")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loc = loc
	return nil
}

// Create normalizes the draft into a concrete validated event, claims its
// uniqueness key and stores it. Table and index move together: a Conflict
// leaves both untouched.
func (e *Engine) Create(draft model.EventDraft) (model.EventID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev, err := e.normalizeDraft(draft)
	if err != nil {
		return "", err
	}
	if err := e.insert(ev); err != nil {
		return "", err
	}
	return ev.ID(), nil
}

// Turn a draft into a validated Event carrying a fresh id. A draft with an
// all-day date, or with a start but no end, collapses to the policy's
// all-day window on that date.
func (e *Engine) normalizeDraft(draft model.EventDraft) (model.Event, error) {
	var start, end time.Time
	switch {
	case !draft.AllDayDate.IsZero() && !draft.Start.IsZero():
		return model.Event{}, model.NewValidationError(draft.Subject, "Engine.normalizeDraft: draft has both a start instant and an all-day date")
	case !draft.AllDayDate.IsZero():
		start = e.policy.AllDayStart.On(draft.AllDayDate, e.loc)
		end = e.policy.AllDayEnd.On(draft.AllDayDate, e.loc)
	case !draft.Start.IsZero() && draft.End.IsZero():
		start = e.policy.AllDayStart.On(draft.Start, e.loc)
		end = e.policy.AllDayEnd.On(draft.Start, e.loc)
	case !draft.Start.IsZero():
		start = draft.Start
		end = draft.End
	default:
		return model.Event{}, model.NewValidationError(draft.Subject, "Engine.normalizeDraft: draft needs a start instant or an all-day date")
	}

	status := draft.Status
	if status == "" {
		status = e.policy.DefaultStatus
	}
	return model.NewEvent(model.NewEventID(), draft.Subject, start, end, draft.Description, draft.Location, status)
}

// insert claims the event's uniqueness key and stores it. Callers hold the
// lock.
func (e *Engine) insert(ev model.Event) error {
	key := uniqueKey(ev.Subject(), ev.Start(), ev.End())
	if err := e.unique.add(key, ev.ID(), ev.Subject()); err != nil {
		return err
	}
	e.events[ev.ID()] = ev
	return nil
}

// CreateSeries expands the draft's recurrence and creates one event per date,
// sharing the draft's time-of-day template, then registers the whole batch
// under a fresh series token. Creation is atomic: every expanded date is
// checked against the uniqueness index before anything is inserted, so a
// single colliding date aborts the series with no state change.
func (e *Engine) CreateSeries(draft model.SeriesDraft) (model.SeriesToken, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case draft.StartDate.IsZero():
		return "", model.NewValidationError(draft.Subject, "Engine.CreateSeries: start date is missing")
	case !draft.AllDay && !draft.StartTime.Before(draft.EndTime):
		return "", model.NewValidationError(draft.Subject, "Engine.CreateSeries: end time %s must be after start time %s", draft.EndTime, draft.StartTime)
	}

	dates, err := expandRecurrence(draft.StartDate, draft.Rule, e.loc)
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", model.NewValidationError(draft.Subject, "Engine.CreateSeries: rule %s produces no occurrences from %s", draft.Rule, draft.StartDate.Format("2006-01-02"))
	}

	status := draft.Status
	if status == "" {
		status = e.policy.DefaultStatus
	}
	startTime, endTime := draft.StartTime, draft.EndTime
	if draft.AllDay {
		startTime, endTime = e.policy.AllDayStart, e.policy.AllDayEnd
	}

	batch := make([]model.Event, 0, len(dates))
	batchKeys := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		ev, err := model.NewEvent(
			model.NewEventID(),
			draft.Subject,
			startTime.On(date, e.loc),
			endTime.On(date, e.loc),
			draft.Description,
			draft.Location,
			status,
		)
		if err != nil {
			return "", err
		}
		key := uniqueKey(ev.Subject(), ev.Start(), ev.End())
		if _, dup := batchKeys[key]; dup || e.unique.has(key) {
			return "", model.NewConflictError(draft.Subject, "Engine.CreateSeries: occurrence on %s collides with an existing event", date.Format("2006-01-02"))
		}
		batchKeys[key] = struct{}{}
		batch = append(batch, ev)
	}

	ids := make([]model.EventID, 0, len(batch))
	for _, ev := range batch {
		if err := e.insert(ev); err != nil {
			// unreachable: the whole batch was pre-checked above
			return "", err
		}
		ids = append(ids, ev.ID())
	}
	return e.series.register(ids), nil
}

// UpdateBySelector resolves the selector to an anchor event, decides the
// effective scope and applies the patch. An anchor outside any series forces
// ScopeSingle. Every touched event is staged and conflict-checked before the
// first mutation, so a rejected edit leaves the table, the uniqueness index
// and the series index exactly as they were: a failed single edit does not
// detach its anchor and a failed following edit does not split the series.
func (e *Engine) UpdateBySelector(sel model.EventSelector, patch model.EventPatch, scope model.EditScope) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.Empty() {
		return model.NewValidationError(sel.Subject, "Engine.UpdateBySelector: patch changes nothing")
	}

	anchor, err := e.resolve(sel)
	if err != nil {
		return err
	}

	token, inSeries := e.series.seriesOf(anchor.ID())
	if !inSeries {
		scope = model.ScopeSingle
	}

	switch scope {
	case model.ScopeSingle:
		if err := e.applyPatch(anchor.ID(), patch); err != nil {
			return err
		}
		if inSeries && patch.MovesStart(anchor.Start()) {
			e.series.detach(anchor.ID())
		}
		return nil
	case model.ScopeFollowing:
		members := e.series.following(token, anchor.Start(), e.startOf)
		staged, err := e.stageMembers(members, patch)
		if err != nil {
			return err
		}
		if patch.MovesStart(anchor.Start()) {
			e.series.splitFollowing(token, anchor.Start(), e.startOf)
		}
		e.commitAll(staged)
		return nil
	case model.ScopeEntireSeries:
		staged, err := e.stageMembers(e.series.all(token), patch)
		if err != nil {
			return err
		}
		e.commitAll(staged)
		return nil
	default:
		return model.NewValidationError(sel.Subject, "Engine.UpdateBySelector: unknown edit scope %d", scope)
	}
}

// startOf feeds the series index event starts. Callers hold the lock.
func (e *Engine) startOf(id model.EventID) time.Time {
	return e.events[id].Start()
}

// Resolve finds the single event matching the selector. With an end instant
// the match is exact; without one, more than one candidate is an Ambiguous
// error and the caller must supply the end to disambiguate.
func (e *Engine) Resolve(sel model.EventSelector) (model.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolve(sel)
}

// EventsOn lists the events overlapping the date's [00:00, next 00:00)
// window in the calendar's zone, sorted by start.
func (e *Engine) EventsOn(date time.Time) []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	from := midnight(date, e.loc)
	return e.overlapping(from, from.AddDate(0, 0, 1))
}

// EventsOverlapping lists the events whose [start, end) intersects the
// half-open [from, to) query window, sorted by start.
func (e *Engine) EventsOverlapping(from, to time.Time) ([]model.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !to.After(from) {
		return nil, model.NewValidationError("", "Engine.EventsOverlapping: query end must be after query start")
	}
	return e.overlapping(from, to), nil
}

// StatusAt reports whether any event's [start, end) covers the instant.
func (e *Engine) StatusAt(at time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev.Covers(at) {
			return true
		}
	}
	return false
}

// AllEvents snapshots the full table sorted by start ascending.
func (e *Engine) AllEvents() []model.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Event, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev)
	}
	sortByStart(out)
	return out
}

// SeriesOf reports the series token owning the event, if any.
func (e *Engine) SeriesOf(id model.EventID) (model.SeriesToken, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.series.seriesOf(id)
}

func (e *Engine) overlapping(from, to time.Time) []model.Event {
	var out []model.Event
	for _, ev := range e.events {
		if ev.Start().Before(to) && from.Before(ev.End()) {
			out = append(out, ev)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(events []model.Event) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start().Equal(events[j].Start()) {
			return events[i].Start().Before(events[j].Start())
		}
		if !events[i].End().Equal(events[j].End()) {
			return events[i].End().Before(events[j].End())
		}
		return events[i].Subject() < events[j].Subject()
	})
}
