// Package entity describes persisted record kinds through explicit field
// descriptor tables.
//
// Diffing, row writes, row scans and the soft-delete policy all iterate these
// tables. Nothing here inspects entity structs at runtime: every accessor is a
// typed closure registered once at startup.
package entity

import (
	"fmt"
	"time"
)

// Kind names a record kind. Its value is the backing table name.
type Kind string

// Entity is a persisted record of some kind.
type Entity interface {
	EntityKind() Kind
}

// Descriptor is the field table for one entity kind.
type Descriptor struct {
	Kind   Kind
	Fields []Field

	newFn   func() Entity
	cloneFn func(Entity) Entity

	deleted  *Field
	modified *Field
}

// Describe builds the descriptor for kind, backed by struct type T.
func Describe[T any, PT interface {
	*T
	Entity
}](kind Kind, fields ...Field) *Descriptor {
	return &Descriptor{
		Kind:   kind,
		Fields: fields,
		newFn:  func() Entity { return PT(new(T)) },
		cloneFn: func(e Entity) Entity {
			c := *e.(PT)

			return PT(&c)
		},
	}
}

// SoftDeletes names the boolean field that flags a row as logically deleted.
// It panics if the field is missing or not a bool column; descriptors are
// built at init time so a misconfiguration fails fast.
func (d *Descriptor) SoftDeletes(name string) *Descriptor {
	f := d.mustField(name)
	if _, ok := f.Dest(d.New()).(*bool); !ok {
		panic(fmt.Sprintf("entity: %s.%s is not a bool column", d.Kind, name))
	}

	d.deleted = f

	return d
}

// TracksModified names the timestamp field stamped on every update.
// It panics if the field is missing or not a timestamp column.
func (d *Descriptor) TracksModified(name string) *Descriptor {
	f := d.mustField(name)

	switch f.Dest(d.New()).(type) {
	case *time.Time, **time.Time:
	default:
		panic(fmt.Sprintf("entity: %s.%s is not a timestamp column", d.Kind, name))
	}

	d.modified = f

	return d
}

func (d *Descriptor) mustField(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}

	panic(fmt.Sprintf("entity: %s has no field %q", d.Kind, name))
}

// New returns a zero entity of the descriptor's kind.
func (d *Descriptor) New() Entity { return d.newFn() }

// Clone returns a shallow copy of e. Pointer members are shared, so callers
// replace them rather than writing through them.
func (d *Descriptor) Clone(e Entity) Entity { return d.cloneFn(e) }

// KeyField returns the primary key field, if one is declared.
func (d *Descriptor) KeyField() (Field, bool) {
	for _, f := range d.Fields {
		if f.IsKey() {
			return f, true
		}
	}

	return Field{}, false
}

// PrimaryKey renders e's primary key as text. It returns "" when no key is
// declared or the key is still pending.
func (d *Descriptor) PrimaryKey(e Entity) string {
	f, ok := d.KeyField()
	if !ok || e == nil || f.Pending(e) {
		return ""
	}

	v := f.Value(e)
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// DeletedColumn returns the soft-delete flag column, or "" if the kind has none.
func (d *Descriptor) DeletedColumn() string {
	if d.deleted == nil {
		return ""
	}

	return d.deleted.Name
}

// MarkDeleted sets the soft-delete flag on e. It reports false when the kind
// has no flag.
func (d *Descriptor) MarkDeleted(e Entity) bool {
	if d.deleted == nil {
		return false
	}

	*d.deleted.Dest(e).(*bool) = true

	return true
}

// ModifiedColumn returns the last-modified column, or "" if the kind has none.
func (d *Descriptor) ModifiedColumn() string {
	if d.modified == nil {
		return ""
	}

	return d.modified.Name
}

// TracksLastModified reports whether the kind carries a last-modified stamp.
func (d *Descriptor) TracksLastModified() bool { return d.modified != nil }

// Touch stamps e's last-modified field with now. It reports false when the
// kind does not track modification time.
func (d *Descriptor) Touch(e Entity, now time.Time) bool {
	if d.modified == nil {
		return false
	}

	switch dst := d.modified.Dest(e).(type) {
	case *time.Time:
		*dst = now
	case **time.Time:
		t := now
		*dst = &t
	}

	return true
}

// Columns returns every column name in table order.
func (d *Descriptor) Columns() []string {
	cols := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		cols[i] = f.Name
	}

	return cols
}

// Dests returns scan destinations for every column of e in table order.
func (d *Descriptor) Dests(e Entity) []any {
	dests := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		dests[i] = f.Dest(e)
	}

	return dests
}

// FieldNamed returns the field backing column name.
func (d *Descriptor) FieldNamed(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// Changed returns the non-key fields whose value differs between before and
// after, in table order.
func (d *Descriptor) Changed(before, after Entity) []Field {
	var out []Field

	for _, f := range d.Fields {
		if f.IsKey() || f.Equal(before, after) {
			continue
		}

		out = append(out, f)
	}

	return out
}
