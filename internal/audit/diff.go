// Package audit computes field-level diffs and turns them into audit records.
package audit

import (
	"github.com/courtsec/courtsec/internal/entity"
	"github.com/courtsec/courtsec/internal/models"
)

// Values maps a column name to its value on one side of a change.
type Values map[string]any

// Diff compares before and after according to action and returns the old and
// new value maps. Fields whose value storage has yet to generate are left out
// of both maps.
//
//   - Insert: every field of after goes into new.
//   - Delete: every field of before goes into old.
//   - SoftDelete: every field of before goes into old; new holds only the
//     fields that changed, normally the deleted flag and modification stamp.
//   - Update: both maps hold only the fields whose value changed. The
//     modification stamp is bookkeeping and is left out; the audit timestamp
//     carries the same instant.
func Diff(d *entity.Descriptor, action models.AuditAction, before, after entity.Entity) (oldValues, newValues Values) {
	oldValues, newValues = Values{}, Values{}

	switch action {
	case models.ActionInsert:
		snapshot(d, after, newValues)
	case models.ActionDelete:
		snapshot(d, before, oldValues)
	case models.ActionSoftDelete:
		snapshot(d, before, oldValues)
		changed(d, before, after, "", nil, newValues)
	default:
		changed(d, before, after, d.ModifiedColumn(), oldValues, newValues)
	}

	return oldValues, newValues
}

func snapshot(d *entity.Descriptor, e entity.Entity, into Values) {
	if e == nil {
		return
	}

	for _, f := range d.Fields {
		if f.Pending(e) {
			continue
		}

		into[f.Name] = f.Value(e)
	}
}

// changed records fields that differ between before and after, except skip.
// A nil oldInto skips the old side.
func changed(d *entity.Descriptor, before, after entity.Entity, skip string, oldInto, newInto Values) {
	if before == nil || after == nil {
		return
	}

	for _, f := range d.Fields {
		if f.Name == skip || f.Pending(before) || f.Pending(after) || f.Equal(before, after) {
			continue
		}

		if oldInto != nil {
			oldInto[f.Name] = f.Value(before)
		}

		newInto[f.Name] = f.Value(after)
	}
}
