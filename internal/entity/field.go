package entity

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field describes one persisted column of an entity kind: how to read its
// value, compare it across two states, and scan it back from storage.
//
// Fields are built with the typed constructors below so accessors are checked
// at compile time; the descriptor table is the only place that knows which
// struct member backs which column.
type Field struct {
	// Name is both the column name and the key used in audit value maps.
	Name string

	key       bool
	generated bool

	value func(Entity) any
	equal func(a, b Entity) bool
	zero  func(Entity) bool
	dest  func(Entity) any
	copy  func(dst, src Entity)
}

// Column describes a non-nullable column backed by a comparable struct member.
func Column[E Entity, V comparable](name string, ref func(E) *V) Field {
	var zero V

	return Field{
		Name:  name,
		value: func(e Entity) any { return *ref(e.(E)) },
		equal: func(a, b Entity) bool { return *ref(a.(E)) == *ref(b.(E)) },
		zero:  func(e Entity) bool { return *ref(e.(E)) == zero },
		dest:  func(e Entity) any { return ref(e.(E)) },
		copy:  func(dst, src Entity) { *ref(dst.(E)) = *ref(src.(E)) },
	}
}

// Nullable describes a nullable column backed by a pointer member. Two nil
// pointers are equal; a nil and a non-nil pointer never are.
func Nullable[E Entity, V comparable](name string, ref func(E) **V) Field {
	return Field{
		Name: name,
		value: func(e Entity) any {
			if p := *ref(e.(E)); p != nil {
				return *p
			}

			return nil
		},
		equal: func(a, b Entity) bool {
			pa, pb := *ref(a.(E)), *ref(b.(E))
			if pa == nil || pb == nil {
				return pa == nil && pb == nil
			}

			return *pa == *pb
		},
		zero: func(e Entity) bool { return *ref(e.(E)) == nil },
		dest: func(e Entity) any { return ref(e.(E)) },
		copy: func(dst, src Entity) { *ref(dst.(E)) = *ref(src.(E)) },
	}
}

// Timestamp describes a non-nullable timestamp column. Values compare with
// time.Time.Equal so location and monotonic readings are ignored.
func Timestamp[E Entity](name string, ref func(E) *time.Time) Field {
	return Field{
		Name:  name,
		value: func(e Entity) any { return ref(e.(E)).UTC() },
		equal: func(a, b Entity) bool { return ref(a.(E)).Equal(*ref(b.(E))) },
		zero:  func(e Entity) bool { return ref(e.(E)).IsZero() },
		dest:  func(e Entity) any { return ref(e.(E)) },
		copy:  func(dst, src Entity) { *ref(dst.(E)) = *ref(src.(E)) },
	}
}

// NullableTimestamp describes a nullable timestamp column.
func NullableTimestamp[E Entity](name string, ref func(E) **time.Time) Field {
	return Field{
		Name: name,
		value: func(e Entity) any {
			if p := *ref(e.(E)); p != nil {
				return p.UTC()
			}

			return nil
		},
		equal: func(a, b Entity) bool {
			pa, pb := *ref(a.(E)), *ref(b.(E))
			if pa == nil || pb == nil {
				return pa == nil && pb == nil
			}

			return pa.Equal(*pb)
		},
		zero: func(e Entity) bool { return *ref(e.(E)) == nil },
		dest: func(e Entity) any { return ref(e.(E)) },
		copy: func(dst, src Entity) { *ref(dst.(E)) = *ref(src.(E)) },
	}
}

// JSON describes a jsonb column holding pre-encoded bytes. A nil document
// is stored as SQL NULL.
func JSON[E Entity](name string, ref func(E) *json.RawMessage) Field {
	return Field{
		Name: name,
		value: func(e Entity) any {
			if raw := *ref(e.(E)); raw != nil {
				return raw
			}

			return nil
		},
		equal: func(a, b Entity) bool { return bytes.Equal(*ref(a.(E)), *ref(b.(E))) },
		zero:  func(e Entity) bool { return *ref(e.(E)) == nil },
		dest:  func(e Entity) any { return ref(e.(E)) },
		copy:  func(dst, src Entity) { *ref(dst.(E)) = *ref(src.(E)) },
	}
}

// Key marks the field as the kind's primary key.
func (f Field) Key() Field {
	f.key = true

	return f
}

// Generated marks the field as assigned by storage when it is left at its
// zero value. Such a field is pending until the row is written.
func (f Field) Generated() Field {
	f.generated = true

	return f
}

// IsKey reports whether the field is the primary key.
func (f Field) IsKey() bool { return f.key }

// Value returns the field's value on e.
func (f Field) Value(e Entity) any { return f.value(e) }

// Equal reports whether the field holds the same value on a and b.
func (f Field) Equal(a, b Entity) bool { return f.equal(a, b) }

// Pending reports whether storage has yet to assign the field's value on e.
func (f Field) Pending(e Entity) bool { return f.generated && f.zero(e) }

// Dest returns a scan destination pointing at the field's member on e.
func (f Field) Dest(e Entity) any { return f.dest(e) }

// Copy sets the field's member on dst to its value on src.
func (f Field) Copy(dst, src Entity) { f.copy(dst, src) }
