package entity

import "fmt"

// SoftDeletePolicy is the fixed allow-list of kinds whose deletes are
// rewritten into a flag update. The zero value soft-deletes nothing.
type SoftDeletePolicy struct {
	kinds map[Kind]struct{}
}

// NewSoftDeletePolicy returns a policy covering kinds.
func NewSoftDeletePolicy(kinds ...Kind) SoftDeletePolicy {
	p := SoftDeletePolicy{kinds: make(map[Kind]struct{}, len(kinds))}
	for _, k := range kinds {
		p.kinds[k] = struct{}{}
	}

	return p
}

// ShouldSoftDelete reports whether a delete of kind must become a flag update.
func (p SoftDeletePolicy) ShouldSoftDelete(kind Kind) bool {
	_, ok := p.kinds[kind]

	return ok
}

// Validate checks that every covered kind is registered with a deleted flag.
func (p SoftDeletePolicy) Validate(r *Registry) error {
	for k := range p.kinds {
		d, ok := r.Lookup(k)
		if !ok {
			return fmt.Errorf("soft-delete kind %q is not registered", k)
		}

		if d.DeletedColumn() == "" {
			return fmt.Errorf("soft-delete kind %q has no deleted flag", k)
		}
	}

	return nil
}

// Cascade soft-deletes the live Child rows whose Column holds the primary key
// of a Parent row when that row is soft-deleted.
type Cascade struct {
	Parent Kind
	Child  Kind
	Column string
}

// Validate checks that both kinds are registered, that Column exists on
// Child and that p soft-deletes both kinds.
func (c Cascade) Validate(r *Registry, p SoftDeletePolicy) error {
	if _, ok := r.Lookup(c.Parent); !ok {
		return fmt.Errorf("cascade parent %q is not registered", c.Parent)
	}

	child, ok := r.Lookup(c.Child)
	if !ok {
		return fmt.Errorf("cascade child %q is not registered", c.Child)
	}

	if _, ok := child.FieldNamed(c.Column); !ok {
		return fmt.Errorf("cascade child %q has no column %q", c.Child, c.Column)
	}

	if !p.ShouldSoftDelete(c.Parent) || !p.ShouldSoftDelete(c.Child) {
		return fmt.Errorf("cascade %s -> %s needs both kinds soft-deleted", c.Parent, c.Child)
	}

	return nil
}
