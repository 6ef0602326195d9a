// Package commit applies staged entity changes and their audit trail as one
// atomic write.
package commit

import "github.com/courtsec/courtsec/internal/entity"

// Op is the operation staged for an entity.
type Op int

// Staged operations.
const (
	Unchanged Op = iota
	Added
	Modified
	Deleted
	Required
)

func (o Op) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Required:
		return "required"
	default:
		return "unknown"
	}
}

// Entry is one entity taking part in a commit. Before is the persisted state
// (nil when Added); After is the intended state (nil when Deleted).
type Entry struct {
	Before entity.Entity
	After  entity.Entity
	Op     Op
}

// ChangeSet collects the entries of one transaction in staging order.
// It is not safe for concurrent use.
type ChangeSet struct {
	entries []Entry
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet { return &ChangeSet{} }

// Add stages e for insertion.
func (cs *ChangeSet) Add(e entity.Entity) *ChangeSet {
	cs.entries = append(cs.entries, Entry{After: e, Op: Added})

	return cs
}

// Update stages a change from before to after. Both must share a primary key.
func (cs *ChangeSet) Update(before, after entity.Entity) *ChangeSet {
	cs.entries = append(cs.entries, Entry{Before: before, After: after, Op: Modified})

	return cs
}

// Delete stages removal of e, which must be the persisted state.
func (cs *ChangeSet) Delete(e entity.Entity) *ChangeSet {
	cs.entries = append(cs.entries, Entry{Before: e, Op: Deleted})

	return cs
}

// Require stages e as a row that must still be live when the transaction
// writes. It is locked for share before any write and cannot be changed or
// deleted by others until commit. Required entries are not audited.
func (cs *ChangeSet) Require(e entity.Entity) *ChangeSet {
	cs.entries = append(cs.entries, Entry{Before: e, Op: Required})

	return cs
}

// Track records e as read but unchanged. Tracked entries are ignored on commit.
func (cs *ChangeSet) Track(e entity.Entity) *ChangeSet {
	cs.entries = append(cs.entries, Entry{Before: e, After: e, Op: Unchanged})

	return cs
}

// Stage appends a raw entry.
func (cs *ChangeSet) Stage(e Entry) *ChangeSet {
	cs.entries = append(cs.entries, e)

	return cs
}

// Len returns the number of staged entries, tracked ones included.
func (cs *ChangeSet) Len() int { return len(cs.entries) }

// Entries returns a copy of the staged entries.
func (cs *ChangeSet) Entries() []Entry {
	out := make([]Entry, len(cs.entries))
	copy(out, cs.entries)

	return out
}

func (e Entry) subject() entity.Entity {
	if e.After != nil {
		return e.After
	}

	return e.Before
}
