package engine

import (
	"time"

	"skej/src-cal/model"
)

// stagedPatch is one validated replacement event waiting to be committed,
// together with the uniqueness keys it releases and claims.
type stagedPatch struct {
	next   model.Event
	oldKey string
	newKey string
}

// stage merges the patch over the current event and rebuilds a validated
// replacement under the same id. Nothing is mutated; commit lands the result.
// Callers hold the lock.
func (e *Engine) stage(id model.EventID, patch model.EventPatch) (stagedPatch, error) {
	cur, ok := e.events[id]
	if !ok {
		return stagedPatch{}, model.NewNotFoundError("", "Engine.stage: event %s is gone", id)
	}

	subject := cur.Subject()
	if patch.Subject != nil {
		subject = *patch.Subject
	}
	start := cur.Start()
	if patch.Start != nil {
		start = *patch.Start
	}
	end := cur.End()
	if patch.End != nil {
		end = *patch.End
	} else if patch.Start != nil {
		// keep the original duration when only the start moves
		end = cur.End().Add(start.Sub(cur.Start()))
	}
	description := cur.Description()
	if patch.Description != nil {
		description = *patch.Description
	}
	location := cur.Location()
	if patch.Location != nil {
		location = *patch.Location
	}
	status := cur.Status()
	if patch.Status != nil {
		status = *patch.Status
	}

	next, err := model.NewEvent(id, subject, start, end, description, location, status)
	if err != nil {
		return stagedPatch{}, err
	}
	return stagedPatch{
		next:   next,
		oldKey: uniqueKey(cur.Subject(), cur.Start(), cur.End()),
		newKey: uniqueKey(next.Subject(), next.Start(), next.End()),
	}, nil
}

// applyPatch stages, conflict-checks and commits a patch on one event. A
// Conflict or Validation failure leaves table, uniqueness index and series
// index untouched. Callers hold the lock.
func (e *Engine) applyPatch(id model.EventID, patch model.EventPatch) error {
	sp, err := e.stage(id, patch)
	if err != nil {
		return err
	}
	if sp.newKey != sp.oldKey {
		if owner, taken := e.unique.owner(sp.newKey); taken && owner != id {
			return model.NewConflictError(sp.next.Subject(), "the edit would collide with an existing event")
		}
	}
	e.commit(sp)
	return nil
}

// stageMembers stages one retimed patch per listed series member. A timing
// patch is re-anchored per member: the new wall-clock reading lands on each
// member's own date and, with no explicit end, each member keeps its own
// duration. Every member is validated and conflict-checked before the caller
// commits anything, so one bad member aborts the whole batch with no state
// change. Members of one series live on distinct dates, so a member's new
// key can never equal another member's released key. Callers hold the lock.
func (e *Engine) stageMembers(ids []model.EventID, patch model.EventPatch) ([]stagedPatch, error) {
	staged := make([]stagedPatch, 0, len(ids))
	claimed := make(map[string]model.EventID, len(ids))
	for _, id := range ids {
		sp, err := e.stage(id, e.retime(patch, e.events[id]))
		if err != nil {
			return nil, err
		}
		if sp.newKey != sp.oldKey {
			if owner, taken := e.unique.owner(sp.newKey); taken && owner != id {
				return nil, model.NewConflictError(sp.next.Subject(), "the edit would collide with an existing event")
			}
			if _, dup := claimed[sp.newKey]; dup {
				return nil, model.NewConflictError(sp.next.Subject(), "the edit would collide with another member of the series")
			}
		}
		claimed[sp.newKey] = id
		staged = append(staged, sp)
	}
	return staged, nil
}

// commit swaps one staged replacement into the table and the uniqueness
// index. Callers hold the lock and have already conflict-checked.
func (e *Engine) commit(sp stagedPatch) {
	e.unique.swap(sp.oldKey, sp.newKey, sp.next.ID())
	e.events[sp.next.ID()] = sp.next
}

func (e *Engine) commitAll(staged []stagedPatch) {
	for _, sp := range staged {
		e.commit(sp)
	}
}

// retime rewrites a timing patch against one member's own dates. Non-timing
// patches pass through unchanged.
func (e *Engine) retime(patch model.EventPatch, member model.Event) model.EventPatch {
	if patch.Start == nil && patch.End == nil {
		return patch
	}
	out := patch
	if patch.Start != nil {
		start := e.onClock(*patch.Start, member.Start())
		out.Start = &start
	}
	if patch.End != nil {
		end := e.onClock(*patch.End, member.End())
		out.End = &end
	}
	return out
}

// onClock pins t's full wall-clock reading in the engine's zone, down to the
// nanosecond, onto anchor's date in that zone.
func (e *Engine) onClock(t, anchor time.Time) time.Time {
	y, m, d := anchor.In(e.loc).Date()
	clock := t.In(e.loc)
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), e.loc)
}
