package retina

import (
	"errors"
	"fmt"
)

var (
	// ErrKindRegistered is returned when a simple kind tag is registered twice.
	ErrKindRegistered = errors.New("kind tag already registered")
	// ErrKindShape is returned when simple and polymorphic registration are
	// mixed on the same kind tag.
	ErrKindShape = errors.New("kind tag registered with a different shape")
	// ErrCapabilityRegistered is returned when a (kind, capability) pair is
	// registered twice.
	ErrCapabilityRegistered = errors.New("capability already registered for kind")
	// ErrBadRegistration is returned on empty tags or nil filter/builder.
	ErrBadRegistration = errors.New("invalid registration")
)

// Registry holds all registered kinds. Registration has to happen before
// the first tick that could observe matching entities, late registrations
// are picked up by the next full rescan.
type Registry struct {
	order []string
	kinds map[string]*Kind
}

func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string]*Kind),
	}
}

// RegisterViewable registers a simple kind: one filter, one builder, at
// most one view per qualifying model.
func (r *Registry) RegisterViewable(kind string, filter Filter, build BuildFunc) error {
	if "" == kind || nil == filter || nil == build {
		return fmt.Errorf("%w: kind %q needs a tag, a filter and a builder", ErrBadRegistration, kind)
	}
	if existing, ok := r.kinds[kind]; ok {
		if existing.poly {
			return fmt.Errorf("%w: %q is polymorphic", ErrKindShape, kind)
		}
		return fmt.Errorf("%w: %q", ErrKindRegistered, kind)
	}
	r.kinds[kind] = &Kind{
		Name:    kind,
		entries: []Entry{{Filter: filter, Build: build}},
	}
	r.order = append(r.order, kind)
	return nil
}

// RegisterView adds a (capability, builder) pair to a polymorphic kind.
// Repeated calls with the same tag and different capabilities accumulate,
// each matched capability produces its own view on a qualifying model.
func (r *Registry) RegisterView(kind string, capability string, filter Filter, build BuildFunc) error {
	if "" == kind || "" == capability || nil == filter || nil == build {
		return fmt.Errorf("%w: kind %q capability %q needs a tag, a capability, a filter and a builder", ErrBadRegistration, kind, capability)
	}
	existing, ok := r.kinds[kind]
	if !ok {
		r.kinds[kind] = &Kind{
			Name:    kind,
			poly:    true,
			entries: []Entry{{Capability: capability, Filter: filter, Build: build}},
		}
		r.order = append(r.order, kind)
		return nil
	}
	if !existing.poly {
		return fmt.Errorf("%w: %q is simple", ErrKindShape, kind)
	}
	for _, entry := range existing.entries {
		if entry.Capability == capability {
			return fmt.Errorf("%w: %q on %q", ErrCapabilityRegistered, capability, kind)
		}
	}
	existing.entries = append(existing.entries, Entry{Capability: capability, Filter: filter, Build: build})
	return nil
}

// Kinds returns all kinds in first-registration order.
func (r *Registry) Kinds() []*Kind {
	out := make([]*Kind, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.kinds[name])
	}
	return out
}

func (r *Registry) Kind(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}
