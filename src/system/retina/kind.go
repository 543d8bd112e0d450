package retina

import (
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Filter is the membership predicate of a kind. It is evaluated against
// every live entity once per tick and must only read from the world.
type Filter func(r world.Reader, e world.Entity) bool

// BuildFunc populates a freshly created view. It gets read access to the
// whole world, the model entity it represents, and a scope whose writes
// are limited to the new view subtree.
type BuildFunc func(r world.Reader, model world.Entity, s *Scope)

// Kind is one registered tag. Simple kinds carry a single anonymous entry,
// polymorphic kinds one entry per source capability.
type Kind struct {
	Name    string
	poly    bool
	entries []Entry
}

// Entry is a single (capability, filter, builder) triple of a kind. For
// simple kinds Capability is empty.
type Entry struct {
	Capability string
	Filter     Filter
	Build      BuildFunc
}

// Entries returns the entries in registration order.
func (k *Kind) Entries() []Entry {
	return k.entries
}

// Polymorphic reports whether the kind was registered capability-wise.
func (k *Kind) Polymorphic() bool {
	return k.poly
}

// HasComponent builds a filter matching entities carrying component T.
func HasComponent[T any]() Filter {
	return func(r world.Reader, e world.Entity) bool {
		return world.Has[T](r, e)
	}
}

// All combines filters conjunctively.
func All(filters ...Filter) Filter {
	return func(r world.Reader, e world.Entity) bool {
		for _, f := range filters {
			if !f(r, e) {
				return false
			}
		}
		return true
	}
}

// Any combines filters disjunctively.
func Any(filters ...Filter) Filter {
	return func(r world.Reader, e world.Entity) bool {
		for _, f := range filters {
			if f(r, e) {
				return true
			}
		}
		return false
	}
}
