package engine

import (
	"sort"
	"time"

	"skej/src-cal/model"
)

// seriesIndex tracks which events were born from the same recurrence
// expansion. Two maps, kept mirror-consistent: every id in eventSeries appears
// in its token's member list and vice versa. A token whose member list
// empties out is pruned on the spot. Owned by the Engine, touched only inside
// its critical section.
type seriesIndex struct {
	eventSeries map[model.EventID]model.SeriesToken
	members     map[model.SeriesToken][]model.EventID
}

func newSeriesIndex() *seriesIndex {
	return &seriesIndex{
		eventSeries: make(map[model.EventID]model.SeriesToken),
		members:     make(map[model.SeriesToken][]model.EventID),
	}
}

// Mint a fresh token owning the given events, in the given order.
func (x *seriesIndex) register(ids []model.EventID) model.SeriesToken {
	token := model.NewSeriesToken()
	x.members[token] = append([]model.EventID(nil), ids...)
	for _, id := range ids {
		x.eventSeries[id] = token
	}
	return token
}

func (x *seriesIndex) seriesOf(id model.EventID) (model.SeriesToken, bool) {
	token, ok := x.eventSeries[id]
	return token, ok
}

// Every member of the series, in storage order. The returned slice is a copy.
func (x *seriesIndex) all(token model.SeriesToken) []model.EventID {
	return append([]model.EventID(nil), x.members[token]...)
}

// Members starting at or after cutoff, ordered by start ascending. startOf
// maps an id to its event's current start.
func (x *seriesIndex) following(token model.SeriesToken, cutoff time.Time, startOf func(model.EventID) time.Time) []model.EventID {
	var ids []model.EventID
	for _, id := range x.members[token] {
		if !startOf(id).Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return startOf(ids[i]).Before(startOf(ids[j]))
	})
	return ids
}

// Remove one event from its series, pruning the token if it was the last
// member. Unknown ids are ignored.
func (x *seriesIndex) detach(id model.EventID) {
	token, ok := x.eventSeries[id]
	if !ok {
		return
	}
	delete(x.eventSeries, id)
	kept := x.members[token][:0]
	for _, member := range x.members[token] {
		if member != id {
			kept = append(kept, member)
		}
	}
	if len(kept) == 0 {
		delete(x.members, token)
		return
	}
	x.members[token] = kept
}

// Partition the series at cutoff: members starting before it stay under the
// original token, the rest move to a brand-new token which is returned. When
// nothing qualifies to move, no token is minted and the original is returned.
// When everything moves, the original token is pruned.
func (x *seriesIndex) splitFollowing(token model.SeriesToken, cutoff time.Time, startOf func(model.EventID) time.Time) model.SeriesToken {
	var kept, moved []model.EventID
	for _, id := range x.members[token] {
		if startOf(id).Before(cutoff) {
			kept = append(kept, id)
		} else {
			moved = append(moved, id)
		}
	}
	if len(moved) == 0 {
		return token
	}

	newToken := model.NewSeriesToken()
	x.members[newToken] = moved
	for _, id := range moved {
		x.eventSeries[id] = newToken
	}
	if len(kept) == 0 {
		delete(x.members, token)
	} else {
		x.members[token] = kept
	}
	return newToken
}
