package engine

import (
	"fmt"
	"time"

	"skej/src-cal/model"
	"skej/src-cal/utils"
)

// uniquenessIndex enforces that no two live events share the same
// (subject, start, end) identity. It is owned by the Engine and only touched
// inside the Engine's critical section, together with the event table.
type uniquenessIndex struct {
	keys map[string]model.EventID
}

func newUniquenessIndex() *uniquenessIndex {
	return &uniquenessIndex{keys: make(map[string]model.EventID)}
}

// The derived key: case-folded subject plus the canonical UTC instants. Equal
// instants expressed in different locations collapse to one key.
func uniqueKey(subject string, start, end time.Time) string {
	return fmt.Sprintf("%s|%d|%d", utils.NormalizeSubject(subject), start.UnixNano(), end.UnixNano())
}

func (x *uniquenessIndex) has(key string) bool {
	_, ok := x.keys[key]
	return ok
}

func (x *uniquenessIndex) add(key string, id model.EventID, subject string) error {
	if _, ok := x.keys[key]; ok {
		return model.NewConflictError(subject, "an event with the same subject, start and end already exists")
	}
	x.keys[key] = id
	return nil
}

// owner reports which event holds the key, if any.
func (x *uniquenessIndex) owner(key string) (model.EventID, bool) {
	id, ok := x.keys[key]
	return id, ok
}

// swap releases oldKey and claims newKey for id. A no-op when the keys are
// equal. Callers have already checked newKey is free.
func (x *uniquenessIndex) swap(oldKey, newKey string, id model.EventID) {
	if oldKey == newKey {
		return
	}
	delete(x.keys, oldKey)
	x.keys[newKey] = id
}
