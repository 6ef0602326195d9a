package entity

import (
	"fmt"
	"sort"
)

// Registry maps kinds to their descriptors. It is read-only once built.
type Registry struct {
	byKind map[Kind]*Descriptor
}

// NewRegistry indexes the given descriptors. Every descriptor needs a primary
// key, and a kind may only be registered once.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{byKind: make(map[Kind]*Descriptor, len(descs))}

	for _, d := range descs {
		if _, dup := r.byKind[d.Kind]; dup {
			return nil, fmt.Errorf("entity kind %q registered twice", d.Kind)
		}

		if _, ok := d.KeyField(); !ok {
			return nil, fmt.Errorf("entity kind %q has no primary key field", d.Kind)
		}

		r.byKind[d.Kind] = d
	}

	return r, nil
}

// Lookup returns the descriptor for kind.
func (r *Registry) Lookup(kind Kind) (*Descriptor, bool) {
	d, ok := r.byKind[kind]

	return d, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}
