package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skej/src-cal/model"
)

// Standup on Mon+Wed 10:00-10:15 starting Monday 2025-05-05, three
// occurrences: 05-05, 05-07, 05-12.
func standupSeries(t *testing.T, eng *Engine) model.SeriesToken {
	t.Helper()
	rule, err := model.NewCountRule([]time.Weekday{time.Monday, time.Wednesday}, 3)
	require.NoError(t, err)
	token, err := eng.CreateSeries(model.SeriesDraft{
		Subject:   "Standup",
		StartDate: date(2025, 5, 5),
		StartTime: model.TimeOfDay{Hour: 10},
		EndTime:   model.TimeOfDay{Hour: 10, Minute: 15},
		Rule:      rule,
	})
	require.NoError(t, err)
	return token
}

func ptr[T any](v T) *T { return &v }

func TestUpdateSingleNonTiming(t *testing.T) {
	eng := newTestEngine(t)
	token := standupSeries(t, eng)

	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Location: ptr("room 4")},
		model.ScopeSingle,
	)
	require.NoError(t, err)

	ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)})
	require.NoError(t, err)
	assert.Equal(t, "room 4", ev.Location())

	// a non-timing single edit keeps the event in its series
	got, ok := eng.SeriesOf(ev.ID())
	require.True(t, ok)
	assert.Equal(t, token, got)
}

func TestUpdateSingleTimingDetaches(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 7, 14, 0))},
		model.ScopeSingle,
	)
	require.NoError(t, err)

	ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 14, 0)})
	require.NoError(t, err)
	_, ok := eng.SeriesOf(ev.ID())
	assert.False(t, ok, "a timing single edit detaches the event")

	// duration preserved: no explicit end, so the end shifted along
	assert.Equal(t, 15*time.Minute, ev.Duration())
}

func TestUpdateIdentityIsPreserved(t *testing.T) {
	eng := newTestEngine(t)

	id, err := eng.Create(model.EventDraft{Subject: "A", Start: at(2025, 1, 1, 10, 0), End: at(2025, 1, 1, 11, 0)})
	require.NoError(t, err)

	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "A", Start: at(2025, 1, 1, 10, 0)},
		model.EventPatch{Subject: ptr("B"), Start: ptr(at(2025, 1, 2, 9, 0))},
		model.ScopeSingle,
	)
	require.NoError(t, err)

	ev, err := eng.Resolve(model.EventSelector{Subject: "B", Start: at(2025, 1, 2, 9, 0)})
	require.NoError(t, err)
	assert.Equal(t, id, ev.ID(), "edits replace the value but keep the identifier")
}

func TestUpdateScopeOnLoneEventActsAsSingle(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Create(model.EventDraft{Subject: "A", Start: at(2025, 1, 1, 10, 0), End: at(2025, 1, 1, 11, 0)})
	require.NoError(t, err)

	for _, scope := range []model.EditScope{model.ScopeSingle, model.ScopeFollowing, model.ScopeEntireSeries} {
		err := eng.UpdateBySelector(
			model.EventSelector{Subject: "A", Start: at(2025, 1, 1, 10, 0)},
			model.EventPatch{Description: ptr(scope.String())},
			scope,
		)
		require.NoError(t, err)
		ev, err := eng.Resolve(model.EventSelector{Subject: "A", Start: at(2025, 1, 1, 10, 0)})
		require.NoError(t, err)
		assert.Equal(t, scope.String(), ev.Description())
	}
}

func TestUpdateFollowingMovesStart(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	// move 05-12 and later to 09:30, no explicit end
	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 12, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 12, 9, 30))},
		model.ScopeFollowing,
	)
	require.NoError(t, err)

	moved, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 12, 9, 30)})
	require.NoError(t, err)
	assert.Equal(t, at(2025, 5, 12, 9, 45), moved.End(), "15-minute duration preserved")

	// earlier instances are untouched
	kept, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 5, 10, 0)})
	require.NoError(t, err)
	assert.Equal(t, at(2025, 5, 5, 10, 15), kept.End())
	_, err = eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)})
	assert.NoError(t, err)
}

func TestUpdateFollowingWithoutTimingDoesNotSplit(t *testing.T) {
	eng := newTestEngine(t)
	token := standupSeries(t, eng)

	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Location: ptr("room 9")},
		model.ScopeFollowing,
	)
	require.NoError(t, err)

	// 05-07 and 05-12 move, 05-05 does not
	first, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 5, 10, 0)})
	require.NoError(t, err)
	assert.Empty(t, first.Location())
	for _, start := range []time.Time{at(2025, 5, 7, 10, 0), at(2025, 5, 12, 10, 0)} {
		ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: start})
		require.NoError(t, err)
		assert.Equal(t, "room 9", ev.Location())
		got, ok := eng.SeriesOf(ev.ID())
		require.True(t, ok)
		assert.Equal(t, token, got, "no timing change, no split")
	}
}

func TestUpdateEntireSeriesDurationPreserved(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 7, 9, 30))},
		model.ScopeEntireSeries,
	)
	require.NoError(t, err)

	// every member moved to 09:30 on its own date, each keeping 15 minutes
	for _, day := range []int{5, 7, 12} {
		ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, day, 9, 30)})
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, ev.Duration())
	}
}

func TestSplitIsolation(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	// FOLLOWING timing edit at 05-12 splits the series
	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 12, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 12, 9, 30))},
		model.ScopeFollowing,
	)
	require.NoError(t, err)

	// an ENTIRE_SERIES edit through the post-split member...
	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 12, 9, 30)},
		model.EventPatch{Location: ptr("annex")},
		model.ScopeEntireSeries,
	)
	require.NoError(t, err)

	// ...does not reach the pre-split members
	for _, start := range []time.Time{at(2025, 5, 5, 10, 0), at(2025, 5, 7, 10, 0)} {
		ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: start})
		require.NoError(t, err)
		assert.Empty(t, ev.Location())
	}
	moved, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 12, 9, 30)})
	require.NoError(t, err)
	assert.Equal(t, "annex", moved.Location())
}

func TestUpdateConflictLeavesStateUntouched(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Create(model.EventDraft{Subject: "A", Start: at(2025, 1, 1, 10, 0), End: at(2025, 1, 1, 11, 0)})
	require.NoError(t, err)
	_, err = eng.Create(model.EventDraft{Subject: "B", Start: at(2025, 1, 1, 10, 0), End: at(2025, 1, 1, 11, 0)})
	require.NoError(t, err)

	// renaming B to A would collide with A's identity
	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "B", Start: at(2025, 1, 1, 10, 0)},
		model.EventPatch{Subject: ptr("A")},
		model.ScopeSingle,
	)
	assert.Equal(t, model.KindConflict, model.KindOf(err))

	// B is still there, unchanged
	ev, err := eng.Resolve(model.EventSelector{Subject: "B", Start: at(2025, 1, 1, 10, 0)})
	require.NoError(t, err)
	assert.Equal(t, "B", ev.Subject())
}

func TestUpdateSingleConflictKeepsSeriesMembership(t *testing.T) {
	eng := newTestEngine(t)
	token := standupSeries(t, eng)

	// a standalone event already sits where the edit wants to land
	_, err := eng.Create(model.EventDraft{Subject: "Standup", Start: at(2025, 5, 7, 14, 0), End: at(2025, 5, 7, 14, 15)})
	require.NoError(t, err)

	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 7, 14, 0))},
		model.ScopeSingle,
	)
	assert.Equal(t, model.KindConflict, model.KindOf(err))

	// the anchor is untouched: same start, same series
	ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)})
	require.NoError(t, err)
	got, ok := eng.SeriesOf(ev.ID())
	require.True(t, ok, "rejected edit must not detach the anchor from its series")
	assert.Equal(t, token, got)
}

func TestUpdateFollowingConflictDoesNotSplit(t *testing.T) {
	eng := newTestEngine(t)
	token := standupSeries(t, eng)

	// collides with where the 05-12 member would land
	_, err := eng.Create(model.EventDraft{Subject: "Standup", Start: at(2025, 5, 12, 14, 0), End: at(2025, 5, 12, 14, 15)})
	require.NoError(t, err)

	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 7, 14, 0))},
		model.ScopeFollowing,
	)
	assert.Equal(t, model.KindConflict, model.KindOf(err))

	// no member moved and no new token was minted
	for _, start := range []time.Time{at(2025, 5, 5, 10, 0), at(2025, 5, 7, 10, 0), at(2025, 5, 12, 10, 0)} {
		ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: start})
		require.NoError(t, err)
		got, ok := eng.SeriesOf(ev.ID())
		require.True(t, ok)
		assert.Equal(t, token, got, "rejected edit must not split the series")
	}
}

func TestUpdateEmptyPatchRejected(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Create(model.EventDraft{Subject: "A", Start: at(2025, 1, 1, 10, 0), End: at(2025, 1, 1, 11, 0)})
	require.NoError(t, err)

	err = eng.UpdateBySelector(
		model.EventSelector{Subject: "A", Start: at(2025, 1, 1, 10, 0)},
		model.EventPatch{},
		model.ScopeSingle,
	)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestUpdateSeriesKeepsSubMinuteClock(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	// a start with seconds lands on every member with the seconds intact
	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(time.Date(2025, 5, 7, 9, 30, 30, 0, time.UTC))},
		model.ScopeEntireSeries,
	)
	require.NoError(t, err)

	for _, day := range []int{5, 7, 12} {
		start := time.Date(2025, 5, day, 9, 30, 30, 0, time.UTC)
		ev, err := eng.Resolve(model.EventSelector{Subject: "Standup", Start: start})
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, ev.Duration())
	}
}

func TestUniquenessHoldsAcrossEdits(t *testing.T) {
	eng := newTestEngine(t)
	standupSeries(t, eng)

	err := eng.UpdateBySelector(
		model.EventSelector{Subject: "Standup", Start: at(2025, 5, 7, 10, 0)},
		model.EventPatch{Start: ptr(at(2025, 5, 7, 9, 30))},
		model.ScopeEntireSeries,
	)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, ev := range eng.AllEvents() {
		key := uniqueKey(ev.Subject(), ev.Start(), ev.End())
		_, dup := seen[key]
		require.False(t, dup, "duplicate identity for %q at %s", ev.Subject(), ev.Start())
		seen[key] = struct{}{}
	}
}
