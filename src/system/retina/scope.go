package retina

import (
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Scope is the single-use write context a builder gets for the view
// entity it populates. Writes only reach the bound entity, children are
// created under it and handed their own nested scope, so a builder can
// never touch the model or anything outside the subtree it is building.
// There is no delete and no query, views are build-once.
type Scope struct {
	w     *world.World
	bound world.Entity
}

func newScope(w *world.World, bound world.Entity) *Scope {
	return &Scope{w: w, bound: bound}
}

// Entity returns the entity this scope is bound to.
func (s *Scope) Entity() world.Entity {
	return s.bound
}

// Insert attaches the given components to the bound entity.
func (s *Scope) Insert(components ...interface{}) *Scope {
	for _, component := range components {
		world.SetValue(s.w, s.bound, component)
	}
	return s
}

// SpawnChild creates a new entity parented under the bound one and runs
// build with a scope bound to that child. Builders nest recursively this
// way. A nil build leaves the child empty.
func (s *Scope) SpawnChild(build func(*Scope)) world.Entity {
	child := s.w.NewEntity()
	s.w.SetParent(child, s.bound)
	if nil != build {
		build(newScope(s.w, child))
	}
	return child
}
