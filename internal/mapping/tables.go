// Package mapping holds the reference tables and export-derived lookups
// used to resolve source ids into target-domain names.
package mapping

import (
	"fmt"

	"github.com/siftertools/sift2bb/internal/model"
)

// Tables are the static reference mappings for one run: member id to
// handle, priority code to label, status code to lifecycle name. They come
// from configuration, never from the export document.
type Tables struct {
	members    map[int]string
	priorities map[int]model.Priority
	statuses   map[int]model.Status
}

// NewTables builds reference tables from the given mappings. The maps are
// copied; the tables are immutable afterwards.
func NewTables(members map[int]string, priorities map[int]model.Priority, statuses map[int]model.Status) *Tables {
	t := &Tables{
		members:    make(map[int]string, len(members)),
		priorities: make(map[int]model.Priority, len(priorities)),
		statuses:   make(map[int]model.Status, len(statuses)),
	}
	for id, handle := range members {
		t.members[id] = handle
	}
	for code, p := range priorities {
		t.priorities[code] = p
	}
	for code, s := range statuses {
		t.statuses[code] = s
	}
	return t
}

// DefaultPriorities is the canonical priority code table of the source
// tracker.
func DefaultPriorities() map[int]model.Priority {
	return map[int]model.Priority{
		1: model.PriorityBlocker,
		2: model.PriorityCritical,
		3: model.PriorityMajor,
		4: model.PriorityMinor,
		5: model.PriorityTrivial,
	}
}

// DefaultStatuses is the canonical status code table of the source
// tracker. Codes 1 and 2 both map to "open": the source's two early-stage
// states are merged on import. This collapse is policy, not an accident.
func DefaultStatuses() map[int]model.Status {
	return map[int]model.Status{
		1: model.StatusOpen,
		2: model.StatusOpen,
		3: model.StatusResolved,
		4: model.StatusClosed,
	}
}

// Member resolves a member id to a handle. An id with no entry resolves to
// absent, never to an error: unresolvable people degrade to null fields.
func (t *Tables) Member(id int) (string, bool) {
	h, ok := t.members[id]
	return h, ok
}

// MemberCount returns the number of configured roster entries.
func (t *Tables) MemberCount() int {
	return len(t.members)
}

// Priority resolves a priority code. The table is total over valid input;
// an unknown code means corrupt data and is an error.
func (t *Tables) Priority(code int) (model.Priority, error) {
	p, ok := t.priorities[code]
	if !ok {
		return "", fmt.Errorf("unknown priority code %d", code)
	}
	return p, nil
}

// Status resolves a status code. Like Priority, the table is total over
// valid input and an unknown code is an error.
func (t *Tables) Status(code int) (model.Status, error) {
	s, ok := t.statuses[code]
	if !ok {
		return "", fmt.Errorf("unknown status code %d", code)
	}
	return s, nil
}
